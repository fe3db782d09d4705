package weaver

import (
	"net/http"
)

// RouteHandler handles a route. next runs the after-middleware of the
// route and of every enclosing router.
type RouteHandler func(ctx RequestContext, next HandlerFunc) error

// Route is a single route of a Router
type Route struct {
	Method  string
	Path    Path
	Name    string
	Handler RouteHandler
	Before  []MiddlewareFunc
	After   []MiddlewareFunc
}

type mount struct {
	prefix string
	router *Router
}

// Router collects routes, middleware and sub routers before they are
// registered on a web server
type Router struct {
	name   string
	before []MiddlewareFunc
	after  []MiddlewareFunc
	routes []*Route
	mounts []mount
}

// NewRouter creates an empty Router
func NewRouter(opts ...RouterOptions) *Router {
	r := &Router{}
	if len(opts) > 0 {
		r.name = opts[0].Name
	}
	return r
}

// Name returns the router name
func (r *Router) Name() string {
	return r.name
}

// Use adds middleware that runs before every route of the router
func (r *Router) Use(middlewares ...MiddlewareFunc) *Router {
	r.before = append(r.before, middlewares...)
	return r
}

// UseAfter adds middleware that runs after every route of the router
func (r *Router) UseAfter(middlewares ...MiddlewareFunc) *Router {
	r.after = append(r.after, middlewares...)
	return r
}

// AddRoute appends a fully described route
func (r *Router) AddRoute(route *Route) *Router {
	r.routes = append(r.routes, route)
	return r
}

// Handle adds a plain handler. The after-middleware runs when h succeeds.
func (r *Router) Handle(method, path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.AddRoute(&Route{
		Method: method,
		Path:   NewPath(path),
		Handler: func(ctx RequestContext, next HandlerFunc) error {
			if err := h(ctx); err != nil {
				return err
			}
			return next(ctx)
		},
		Before: middlewares,
	})
}

// Get adds a GET handler
func (r *Router) Get(path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.Handle(http.MethodGet, path, h, middlewares...)
}

// Post adds a POST handler
func (r *Router) Post(path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.Handle(http.MethodPost, path, h, middlewares...)
}

// Put adds a PUT handler
func (r *Router) Put(path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.Handle(http.MethodPut, path, h, middlewares...)
}

// Patch adds a PATCH handler
func (r *Router) Patch(path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.Handle(http.MethodPatch, path, h, middlewares...)
}

// Delete adds a DELETE handler
func (r *Router) Delete(path string, h HandlerFunc, middlewares ...MiddlewareFunc) *Router {
	return r.Handle(http.MethodDelete, path, h, middlewares...)
}

// Mount attaches child below prefix
func (r *Router) Mount(prefix string, child *Router) *Router {
	r.mounts = append(r.mounts, mount{prefix: prefix, router: child})
	return r
}

// Routes returns the routes of the router, sub routers excluded
func (r *Router) Routes() []*Route {
	return append([]*Route(nil), r.routes...)
}

// MountedRoute is a route with its full path and composed handler
type MountedRoute struct {
	Method  string
	Path    Path
	Name    string
	Handler HandlerFunc
	// Middleware counts the before and after middleware wrapped into Handler
	Middleware int
}

// Flatten resolves the full path and handler chain of every route below
// prefix, sub routers included
func (r *Router) Flatten(prefix string) []MountedRoute {
	var out []MountedRoute
	r.flatten(prefix, nil, nil, &out)
	return out
}

func (r *Router) flatten(prefix string, before, after []MiddlewareFunc, out *[]MountedRoute) {
	before = append(append([]MiddlewareFunc(nil), before...), r.before...)
	// inner after-middleware runs first
	after = append(append([]MiddlewareFunc(nil), r.after...), after...)

	for _, route := range r.routes {
		route := route
		chainBefore := append(append([]MiddlewareFunc(nil), before...), route.Before...)
		chainAfter := append(append([]MiddlewareFunc(nil), route.After...), after...)
		fullPath := Path(JoinPaths(prefix, route.Path.Raw()))
		types := fullPath.ParamTypes()
		next := Chain(func(RequestContext) error { return nil }, chainAfter...)
		chained := Chain(func(ctx RequestContext) error {
			return route.Handler(ctx, next)
		}, chainBefore...)
		handler := func(ctx RequestContext) error {
			if len(types) > 0 {
				if err := RequestFrom(ctx).bindParams(types); err != nil {
					return err
				}
			}
			return chained(ctx)
		}

		*out = append(*out, MountedRoute{
			Method:     route.Method,
			Path:       fullPath,
			Name:       route.Name,
			Handler:    handler,
			Middleware: len(chainBefore) + len(chainAfter),
		})
	}
	for _, m := range r.mounts {
		m.router.flatten(JoinPaths(prefix, m.prefix), before, after, out)
	}
}

// RouteRegistrar is satisfied by WebServerInterface and RouteGroup
type RouteRegistrar interface {
	RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc)
}

// Apply registers every route below prefix on server and returns them
func (r *Router) Apply(server RouteRegistrar, prefix string) []MountedRoute {
	routes := r.Flatten(prefix)
	for _, route := range routes {
		server.RegisterRoute(route.Method, route.Path, route.Handler)
	}
	return routes
}
