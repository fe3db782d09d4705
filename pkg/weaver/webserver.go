package weaver

import (
	"context"
	"net/http"
)

// WebServerInterface is what an adapter implements to host weaver routes.
// Paths arrive in weaver syntax and each adapter rewrites them for its
// router.
type WebServerInterface interface {
	RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc)
	RegisterGroup(prefix string) RouteGroup

	// Use adds middleware around every route, including routes
	// registered earlier
	Use(middleware MiddlewareFunc)

	NotFound(handler HandlerFunc)
	SetErrorHandler(handler ErrorHandlerFunc)

	// Handler is the server as a net/http handler, for httptest and for
	// embedding in another server
	Handler() http.Handler

	Start(addr string) error
	Stop(ctx context.Context) error

	// Name is gin, echo or fiber
	Name() string
}

// RouteGroup registers routes below a shared prefix and middleware
type RouteGroup interface {
	RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	Group(prefix string) RouteGroup
	Prefix() string
}

// RequestContext is one request as seen by handlers and middleware,
// whatever the underlying framework
type RequestContext interface {
	Method() string
	Path() string
	RealIP() string

	// path parameters in route order
	Param(key string) string
	ParamNames() []string
	ParamValues() []string

	QueryParam(key string) string
	QueryParams() map[string][]string

	Request() RequestInterface
	Response() ResponseInterface

	// request scoped values shared between middleware
	Get(key string) interface{}
	Set(key string, val interface{})

	Context() context.Context
	SetContext(ctx context.Context)
}

// RequestInterface reads the incoming request. Body can be read more than
// once.
type RequestInterface interface {
	Header(key string) string
	Headers() map[string][]string
	SetHeader(key, value string)
	Body() ([]byte, error)
	ContentLength() int64
	ContentType() string
}

// ResponseInterface writes the response
type ResponseInterface interface {
	Status() int
	SetStatus(code int)

	Header(key string) string
	SetHeader(key, value string)

	JSON(code int, i interface{}) error
	String(code int, s string) error
	HTML(code int, html string) error
	Blob(code int, contentType string, b []byte) error
	Redirect(code int, location string) error

	// Written is true once the status line has been sent
	Written() bool
}

// HandlerFunc handles a request
type HandlerFunc func(RequestContext) error

// MiddlewareFunc wraps a handler
type MiddlewareFunc func(HandlerFunc) HandlerFunc

// ErrorHandlerFunc receives every error returned by a handler chain
type ErrorHandlerFunc func(ctx RequestContext, err error)

// NextFunc continues to the after-middleware of a route. Handlers that take
// the response or next function as an argument call it themselves.
type NextFunc func(err ...error) error

// Chain composes middlewares so the first one is the outermost
func Chain(h HandlerFunc, middlewares ...MiddlewareFunc) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
