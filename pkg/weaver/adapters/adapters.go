// Package adapters implements weaver.WebServerInterface for gin, echo and
// fiber.
package adapters

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/weaver"
)

// New creates the adapter registered under name with a default engine
func New(name string) (weaver.WebServerInterface, error) {
	switch strings.ToLower(name) {
	case "", "gin":
		return NewDefaultGinAdapter(), nil
	case "echo":
		return NewDefaultEchoAdapter(), nil
	case "fiber":
		return NewDefaultFiberAdapter(), nil
	}
	return nil, fmt.Errorf("unknown web server adapter %q", name)
}

// DefaultErrorHandler writes {"error": message} with the status of the
// error, 500 unless it is an application error
func DefaultErrorHandler(ctx weaver.RequestContext, err error) {
	if ctx.Response().Written() {
		return
	}
	status := http.StatusInternalServerError
	var appErr errors.AppError
	if stderrors.As(err, &appErr) {
		status = appErr.StatusCode()
	}
	_ = ctx.Response().JSON(status, map[string]interface{}{"error": err.Error()})
}

// dispatcher holds what every adapter shares: global middleware, the not
// found handler and the error handler. Middleware is composed per request
// so Use applies to routes registered before it.
type dispatcher struct {
	mu          sync.RWMutex
	middlewares []weaver.MiddlewareFunc
	notFound    weaver.HandlerFunc
	onError     weaver.ErrorHandlerFunc
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		notFound: func(ctx weaver.RequestContext) error {
			return errors.NewNotFound()
		},
		onError: DefaultErrorHandler,
	}
}

func (d *dispatcher) use(mw weaver.MiddlewareFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, mw)
}

func (d *dispatcher) setNotFound(h weaver.HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notFound = h
}

func (d *dispatcher) setErrorHandler(h weaver.ErrorHandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == nil {
		h = DefaultErrorHandler
	}
	d.onError = h
}

// serve runs h behind the global middleware and reports its error
func (d *dispatcher) serve(ctx weaver.RequestContext, h weaver.HandlerFunc) {
	d.mu.RLock()
	mws := append([]weaver.MiddlewareFunc(nil), d.middlewares...)
	onError := d.onError
	d.mu.RUnlock()

	if err := weaver.Chain(h, mws...)(ctx); err != nil {
		onError(ctx, err)
	}
}

func (d *dispatcher) serveNotFound(ctx weaver.RequestContext) {
	d.mu.RLock()
	h := d.notFound
	d.mu.RUnlock()
	d.serve(ctx, h)
}

// serveError reports err through the global middleware, used for errors
// the framework raises before a route runs
func (d *dispatcher) serveError(ctx weaver.RequestContext, err error) {
	d.serve(ctx, func(weaver.RequestContext) error { return err })
}

// routeHandler composes route middleware around handler
func routeHandler(handler weaver.HandlerFunc, middlewares []weaver.MiddlewareFunc) weaver.HandlerFunc {
	return weaver.Chain(handler, middlewares...)
}

// routeGroup implements weaver.RouteGroup on top of any server by joining
// the prefix into the registered paths
type routeGroup struct {
	server weaver.WebServerInterface
	parent *routeGroup
	prefix string

	mu          sync.RWMutex
	middlewares []weaver.MiddlewareFunc
}

func newRouteGroup(server weaver.WebServerInterface, prefix string) *routeGroup {
	return &routeGroup{server: server, prefix: weaver.JoinPaths(prefix)}
}

// RegisterRoute registers a route within the group
func (g *routeGroup) RegisterRoute(method string, path weaver.Path, handler weaver.HandlerFunc, middlewares ...weaver.MiddlewareFunc) {
	inner := routeHandler(handler, middlewares)
	full := weaver.Path(weaver.JoinPaths(g.prefix, path.Raw()))
	g.server.RegisterRoute(method, full, func(ctx weaver.RequestContext) error {
		return weaver.Chain(inner, g.chain()...)(ctx)
	})
}

// chain returns the middleware of the group and its parents, outermost first
func (g *routeGroup) chain() []weaver.MiddlewareFunc {
	var out []weaver.MiddlewareFunc
	if g.parent != nil {
		out = g.parent.chain()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append(out, g.middlewares...)
}

// Use registers middleware with the group
func (g *routeGroup) Use(middleware weaver.MiddlewareFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.middlewares = append(g.middlewares, middleware)
}

// Group creates a sub-group
func (g *routeGroup) Group(prefix string) weaver.RouteGroup {
	return &routeGroup{server: g.server, parent: g, prefix: weaver.JoinPaths(g.prefix, prefix)}
}

// Prefix returns the full prefix of the group
func (g *routeGroup) Prefix() string {
	return g.prefix
}
