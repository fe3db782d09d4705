package adapters

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/weaver"
)

// EchoAdapter hosts weaver routes on an echo.Echo
type EchoAdapter struct {
	echo *echo.Echo
	*dispatcher
}

// NewEchoAdapter creates a new Echo adapter. Router errors such as 404 and
// 405 go through the adapter's not found and error handlers.
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	ea := &EchoAdapter{echo: e, dispatcher: newDispatcher()}
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		ctx := &EchoRequestContext{context: c}
		var he *echo.HTTPError
		if stderrors.As(err, &he) {
			if he.Code == http.StatusNotFound {
				ea.serveNotFound(ctx)
				return
			}
			ea.serveError(ctx, errors.NewHTTP(he.Code, fmt.Sprint(he.Message)).SetInner(err))
			return
		}
		ea.serveError(ctx, err)
	}
	return ea
}

// NewDefaultEchoAdapter hides the echo banner and port line
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e)
}

// RegisterRoute mounts handler under echo path syntax
func (ea *EchoAdapter) RegisterRoute(method string, path weaver.Path, handler weaver.HandlerFunc, middlewares ...weaver.MiddlewareFunc) {
	h := routeHandler(handler, middlewares)
	ea.echo.Add(method, path.ColonPath("*"), func(c echo.Context) error {
		ea.serve(&EchoRequestContext{context: c}, h)
		return nil
	})
}

func (ea *EchoAdapter) RegisterGroup(prefix string) weaver.RouteGroup {
	return newRouteGroup(ea, prefix)
}

func (ea *EchoAdapter) Use(middleware weaver.MiddlewareFunc) {
	ea.use(middleware)
}

func (ea *EchoAdapter) NotFound(handler weaver.HandlerFunc) {
	ea.setNotFound(handler)
}

func (ea *EchoAdapter) SetErrorHandler(handler weaver.ErrorHandlerFunc) {
	ea.setErrorHandler(handler)
}

// Handler returns the Echo instance as a net/http handler
func (ea *EchoAdapter) Handler() http.Handler {
	return ea.echo
}

func (ea *EchoAdapter) Start(addr string) error {
	return ea.echo.Start(addr)
}

// Stop shuts the server down, waiting on ctx for open requests
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.echo.Shutdown(ctx)
}

func (ea *EchoAdapter) Name() string {
	return "echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.echo
}

// EchoRequestContext wraps an echo.Context
type EchoRequestContext struct {
	context echo.Context
}

func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

func (erc *EchoRequestContext) RealIP() string {
	return erc.context.RealIP()
}

func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

func (erc *EchoRequestContext) ParamNames() []string {
	return erc.context.ParamNames()
}

func (erc *EchoRequestContext) ParamValues() []string {
	return erc.context.ParamValues()
}

func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

func (erc *EchoRequestContext) Request() weaver.RequestInterface {
	return &EchoRequestInterface{context: erc.context}
}

func (erc *EchoRequestContext) Response() weaver.ResponseInterface {
	return &EchoResponseInterface{context: erc.context}
}

func (erc *EchoRequestContext) Get(key string) interface{} {
	return erc.context.Get(key)
}

func (erc *EchoRequestContext) Set(key string, val interface{}) {
	erc.context.Set(key, val)
}

func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

func (erc *EchoRequestContext) SetContext(ctx context.Context) {
	erc.context.SetRequest(erc.context.Request().WithContext(ctx))
}

// EchoRequestInterface reads from the echo request
type EchoRequestInterface struct {
	context echo.Context
}

func (eri *EchoRequestInterface) Header(key string) string {
	return eri.context.Request().Header.Get(key)
}

func (eri *EchoRequestInterface) Headers() map[string][]string {
	return eri.context.Request().Header
}

func (eri *EchoRequestInterface) SetHeader(key, value string) {
	eri.context.Request().Header.Set(key, value)
}

// Body returns the request body. It can be read any number of times.
func (eri *EchoRequestInterface) Body() ([]byte, error) {
	if raw, ok := eri.context.Get(rawBodyKey).([]byte); ok {
		return raw, nil
	}
	req := eri.context.Request()
	if req.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	eri.context.Set(rawBodyKey, body)
	return body, nil
}

func (eri *EchoRequestInterface) ContentLength() int64 {
	return eri.context.Request().ContentLength
}

func (eri *EchoRequestInterface) ContentType() string {
	return eri.context.Request().Header.Get(echo.HeaderContentType)
}

// EchoResponseInterface writes through echo.Response
type EchoResponseInterface struct {
	context echo.Context
}

func (eri *EchoResponseInterface) Status() int {
	return eri.context.Response().Status
}

func (eri *EchoResponseInterface) SetStatus(code int) {
	eri.context.Response().Status = code
}

func (eri *EchoResponseInterface) Header(key string) string {
	return eri.context.Response().Header().Get(key)
}

func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.context.Response().Header().Set(key, value)
}

func (eri *EchoResponseInterface) JSON(code int, i interface{}) error {
	return eri.context.JSON(code, i)
}

func (eri *EchoResponseInterface) String(code int, s string) error {
	return eri.context.String(code, s)
}

func (eri *EchoResponseInterface) HTML(code int, html string) error {
	return eri.context.HTML(code, html)
}

func (eri *EchoResponseInterface) Blob(code int, contentType string, b []byte) error {
	if len(b) == 0 && contentType == "" {
		return eri.context.NoContent(code)
	}
	return eri.context.Blob(code, contentType, b)
}

func (eri *EchoResponseInterface) Redirect(code int, location string) error {
	return eri.context.Redirect(code, location)
}

func (eri *EchoResponseInterface) Written() bool {
	return eri.context.Response().Committed
}
