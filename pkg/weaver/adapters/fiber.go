package adapters

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/weaver"
)

const writtenKey = "weaver.written"

// FiberAdapter hosts weaver routes on a fiber.App
type FiberAdapter struct {
	app *fiber.App
	*dispatcher
}

// NewFiberAdapter creates a new Fiber adapter. cfg.ErrorHandler is replaced
// so unmatched routes reach the adapter's not found handler.
func NewFiberAdapter(cfg fiber.Config) *FiberAdapter {
	fa := &FiberAdapter{dispatcher: newDispatcher()}
	cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		ctx := &FiberRequestContext{ctx: c}
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			if fe.Code == fiber.StatusNotFound {
				fa.serveNotFound(ctx)
				return nil
			}
			fa.serveError(ctx, errors.NewHTTP(fe.Code, fe.Message).SetInner(err))
			return nil
		}
		fa.serveError(ctx, err)
		return nil
	}
	fa.app = fiber.New(cfg)
	return fa
}

// NewDefaultFiberAdapter creates a new Fiber adapter using go-json for
// encoding
func NewDefaultFiberAdapter() *FiberAdapter {
	return NewFiberAdapter(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
}

// RegisterRoute registers a route with the Fiber server
func (fa *FiberAdapter) RegisterRoute(method string, path weaver.Path, handler weaver.HandlerFunc, middlewares ...weaver.MiddlewareFunc) {
	h := routeHandler(handler, middlewares)
	fa.app.Add(method, path.ColonPath("*"), func(c *fiber.Ctx) error {
		fa.serve(&FiberRequestContext{ctx: c}, h)
		return nil
	})
}

func (fa *FiberAdapter) RegisterGroup(prefix string) weaver.RouteGroup {
	return newRouteGroup(fa, prefix)
}

func (fa *FiberAdapter) Use(middleware weaver.MiddlewareFunc) {
	fa.use(middleware)
}

func (fa *FiberAdapter) NotFound(handler weaver.HandlerFunc) {
	fa.setNotFound(handler)
}

func (fa *FiberAdapter) SetErrorHandler(handler weaver.ErrorHandlerFunc) {
	fa.setErrorHandler(handler)
}

// Handler returns the Fiber app as a net/http handler
func (fa *FiberAdapter) Handler() http.Handler {
	return adaptor.FiberApp(fa.app)
}

func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

func (fa *FiberAdapter) Name() string {
	return "fiber"
}

// GetEngine returns the underlying Fiber app
func (fa *FiberAdapter) GetEngine() *fiber.App {
	return fa.app
}

// FiberRequestContext wraps a fiber.Ctx
type FiberRequestContext struct {
	ctx *fiber.Ctx
}

func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

func (frc *FiberRequestContext) RealIP() string {
	return frc.ctx.IP()
}

func (frc *FiberRequestContext) Param(name string) string {
	return frc.ctx.Params(name)
}

// ParamNames returns parameter names. Fiber numbers its wildcards, the
// first one is reported as "*".
func (frc *FiberRequestContext) ParamNames() []string {
	route := frc.ctx.Route()
	if route == nil {
		return nil
	}
	names := make([]string, 0, len(route.Params))
	for _, name := range route.Params {
		if name == "*1" {
			name = "*"
		}
		names = append(names, name)
	}
	return names
}

func (frc *FiberRequestContext) ParamValues() []string {
	names := frc.ParamNames()
	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, frc.ctx.Params(name))
	}
	return values
}

func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.ctx.Query(key)
}

func (frc *FiberRequestContext) QueryParams() map[string][]string {
	result := make(map[string][]string)
	frc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		result[k] = append(result[k], string(value))
	})
	return result
}

func (frc *FiberRequestContext) Request() weaver.RequestInterface {
	return &FiberRequestInterface{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Response() weaver.ResponseInterface {
	return &FiberResponseInterface{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Get(key string) interface{} {
	return frc.ctx.Locals(key)
}

func (frc *FiberRequestContext) Set(key string, val interface{}) {
	frc.ctx.Locals(key, val)
}

func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

func (frc *FiberRequestContext) SetContext(ctx context.Context) {
	frc.ctx.SetUserContext(ctx)
}

// FiberRequestInterface reads from the fasthttp request
type FiberRequestInterface struct {
	ctx *fiber.Ctx
}

func (fri *FiberRequestInterface) Header(key string) string {
	return fri.ctx.Get(key)
}

func (fri *FiberRequestInterface) Headers() map[string][]string {
	return fri.ctx.GetReqHeaders()
}

func (fri *FiberRequestInterface) SetHeader(key, value string) {
	fri.ctx.Request().Header.Set(key, value)
}

func (fri *FiberRequestInterface) Body() ([]byte, error) {
	body := fri.ctx.Body()
	if len(body) == 0 {
		return nil, nil
	}
	return append([]byte(nil), body...), nil
}

func (fri *FiberRequestInterface) ContentLength() int64 {
	return int64(fri.ctx.Request().Header.ContentLength())
}

func (fri *FiberRequestInterface) ContentType() string {
	return fri.ctx.Get(fiber.HeaderContentType)
}

// FiberResponseInterface writes the fasthttp response
type FiberResponseInterface struct {
	ctx *fiber.Ctx
}

func (fri *FiberResponseInterface) markWritten() {
	fri.ctx.Locals(writtenKey, true)
}

func (fri *FiberResponseInterface) Status() int {
	return fri.ctx.Response().StatusCode()
}

func (fri *FiberResponseInterface) SetStatus(code int) {
	fri.ctx.Status(code)
}

func (fri *FiberResponseInterface) Header(key string) string {
	return string(fri.ctx.Response().Header.Peek(key))
}

func (fri *FiberResponseInterface) SetHeader(key, value string) {
	fri.ctx.Set(key, value)
}

func (fri *FiberResponseInterface) JSON(code int, i interface{}) error {
	fri.markWritten()
	return fri.ctx.Status(code).JSON(i)
}

func (fri *FiberResponseInterface) String(code int, s string) error {
	fri.markWritten()
	return fri.ctx.Status(code).SendString(s)
}

func (fri *FiberResponseInterface) HTML(code int, html string) error {
	fri.markWritten()
	fri.ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return fri.ctx.Status(code).SendString(html)
}

func (fri *FiberResponseInterface) Blob(code int, contentType string, b []byte) error {
	fri.markWritten()
	if contentType != "" {
		fri.ctx.Set(fiber.HeaderContentType, contentType)
	}
	return fri.ctx.Status(code).Send(b)
}

func (fri *FiberResponseInterface) Redirect(code int, location string) error {
	fri.markWritten()
	return fri.ctx.Redirect(location, code)
}

func (fri *FiberResponseInterface) Written() bool {
	written, _ := fri.ctx.Locals(writtenKey).(bool)
	return written
}
