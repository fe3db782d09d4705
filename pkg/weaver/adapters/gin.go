package adapters

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toyz/weaver/pkg/weaver"
)

const rawBodyKey = "weaver.raw-body"

// GinAdapter hosts weaver routes on a gin.Engine
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
	*dispatcher
}

// NewGinAdapter wraps g. Unmatched paths go to the weaver not found handler.
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	ga := &GinAdapter{engine: g, dispatcher: newDispatcher()}
	g.NoRoute(func(c *gin.Context) {
		ga.serveNotFound(&GinRequestContext{ctx: c})
	})
	return ga
}

// NewDefaultGinAdapter uses gin.New, so no gin logger or recovery is installed
func NewDefaultGinAdapter() *GinAdapter {
	return NewGinAdapter(gin.New())
}

// RegisterRoute mounts handler under gin path syntax, with catch-alls named "path"
func (ga *GinAdapter) RegisterRoute(method string, path weaver.Path, handler weaver.HandlerFunc, middlewares ...weaver.MiddlewareFunc) {
	h := routeHandler(handler, middlewares)
	ga.engine.Handle(method, path.ColonPath("*path"), func(c *gin.Context) {
		ga.serve(&GinRequestContext{ctx: c}, h)
	})
}

func (ga *GinAdapter) RegisterGroup(prefix string) weaver.RouteGroup {
	return newRouteGroup(ga, prefix)
}

func (ga *GinAdapter) Use(middleware weaver.MiddlewareFunc) {
	ga.use(middleware)
}

func (ga *GinAdapter) NotFound(handler weaver.HandlerFunc) {
	ga.setNotFound(handler)
}

func (ga *GinAdapter) SetErrorHandler(handler weaver.ErrorHandlerFunc) {
	ga.setErrorHandler(handler)
}

// Handler returns the engine as a net/http handler
func (ga *GinAdapter) Handler() http.Handler {
	return ga.engine
}

func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	return ga.server.ListenAndServe()
}

// Stop gracefully shuts down the server started by Start
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	err := ga.server.Shutdown(ctx)
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (ga *GinAdapter) Name() string {
	return "gin"
}

// GetEngine exposes the engine for gin specific setup
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// GinRequestContext wraps a gin.Context
type GinRequestContext struct {
	ctx *gin.Context
}

func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

func (grc *GinRequestContext) RealIP() string {
	return grc.ctx.ClientIP()
}

func (grc *GinRequestContext) Param(name string) string {
	if name == "*" {
		// Gin names the catch-all parameter "path"
		return grc.ctx.Param("path")
	}
	return grc.ctx.Param(name)
}

func (grc *GinRequestContext) ParamNames() []string {
	names := make([]string, 0, len(grc.ctx.Params))
	for _, param := range grc.ctx.Params {
		names = append(names, param.Key)
	}
	return names
}

func (grc *GinRequestContext) ParamValues() []string {
	values := make([]string, 0, len(grc.ctx.Params))
	for _, param := range grc.ctx.Params {
		values = append(values, param.Value)
	}
	return values
}

func (grc *GinRequestContext) QueryParam(name string) string {
	return grc.ctx.Query(name)
}

func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.ctx.Request.URL.Query()
}

func (grc *GinRequestContext) Request() weaver.RequestInterface {
	return &GinRequestInterface{ctx: grc.ctx}
}

func (grc *GinRequestContext) Response() weaver.ResponseInterface {
	return &GinResponseInterface{ctx: grc.ctx}
}

func (grc *GinRequestContext) Get(key string) interface{} {
	value, _ := grc.ctx.Get(key)
	return value
}

func (grc *GinRequestContext) Set(key string, val interface{}) {
	grc.ctx.Set(key, val)
}

func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

func (grc *GinRequestContext) SetContext(ctx context.Context) {
	grc.ctx.Request = grc.ctx.Request.WithContext(ctx)
}

// GinRequestInterface reads from the gin request
type GinRequestInterface struct {
	ctx *gin.Context
}

func (gri *GinRequestInterface) Header(key string) string {
	return gri.ctx.GetHeader(key)
}

func (gri *GinRequestInterface) Headers() map[string][]string {
	return gri.ctx.Request.Header
}

func (gri *GinRequestInterface) SetHeader(key, value string) {
	gri.ctx.Request.Header.Set(key, value)
}

// Body returns the request body. It can be read any number of times.
func (gri *GinRequestInterface) Body() ([]byte, error) {
	if raw, ok := gri.ctx.Get(rawBodyKey); ok {
		return raw.([]byte), nil
	}
	if gri.ctx.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(gri.ctx.Request.Body)
	if err != nil {
		return nil, err
	}
	gri.ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
	gri.ctx.Set(rawBodyKey, body)
	return body, nil
}

func (gri *GinRequestInterface) ContentLength() int64 {
	return gri.ctx.Request.ContentLength
}

func (gri *GinRequestInterface) ContentType() string {
	return gri.ctx.ContentType()
}

// GinResponseInterface writes through gin.ResponseWriter
type GinResponseInterface struct {
	ctx *gin.Context
}

func (gri *GinResponseInterface) Status() int {
	return gri.ctx.Writer.Status()
}

func (gri *GinResponseInterface) SetStatus(code int) {
	gri.ctx.Status(code)
}

func (gri *GinResponseInterface) Header(key string) string {
	return gri.ctx.Writer.Header().Get(key)
}

func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.ctx.Header(key, value)
}

func (gri *GinResponseInterface) JSON(code int, i interface{}) error {
	gri.ctx.JSON(code, i)
	return nil
}

func (gri *GinResponseInterface) String(code int, s string) error {
	gri.ctx.String(code, s)
	return nil
}

func (gri *GinResponseInterface) HTML(code int, html string) error {
	gri.ctx.Data(code, "text/html; charset=utf-8", []byte(html))
	return nil
}

func (gri *GinResponseInterface) Blob(code int, contentType string, b []byte) error {
	if len(b) == 0 && contentType == "" {
		gri.ctx.Status(code)
		gri.ctx.Writer.WriteHeaderNow()
		return nil
	}
	gri.ctx.Data(code, contentType, b)
	return nil
}

func (gri *GinResponseInterface) Redirect(code int, location string) error {
	gri.ctx.Redirect(code, location)
	return nil
}

func (gri *GinResponseInterface) Written() bool {
	return gri.ctx.Writer.Written()
}
