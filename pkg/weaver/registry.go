package weaver

import (
	"sort"
	"strings"
	"sync"
)

// MiddlewareInstance is a named middleware. Instance holds whatever built
// Handler, or nil.
type MiddlewareInstance struct {
	Name     string
	Handler  MiddlewareFunc
	Instance interface{}
}

// MiddlewareRegistry maps names to middleware. Registering a name twice
// replaces the earlier entry.
type MiddlewareRegistry interface {
	RegisterMiddleware(name string, handler MiddlewareFunc, instance interface{})
	GetMiddleware(name string) (MiddlewareInstance, bool)
	// GetAllMiddlewares is ordered by name
	GetAllMiddlewares() []MiddlewareInstance
}

type inMemoryMiddlewareRegistry struct {
	mu          sync.RWMutex
	middlewares map[string]MiddlewareInstance
}

// NewInMemoryMiddlewareRegistry is safe for concurrent use
func NewInMemoryMiddlewareRegistry() MiddlewareRegistry {
	return &inMemoryMiddlewareRegistry{
		middlewares: make(map[string]MiddlewareInstance),
	}
}

func (r *inMemoryMiddlewareRegistry) RegisterMiddleware(name string, handler MiddlewareFunc, instance interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares[name] = MiddlewareInstance{
		Name:     name,
		Handler:  handler,
		Instance: instance,
	}
}

func (r *inMemoryMiddlewareRegistry) GetMiddleware(name string) (MiddlewareInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	middleware, exists := r.middlewares[name]
	return middleware, exists
}

func (r *inMemoryMiddlewareRegistry) GetAllMiddlewares() []MiddlewareInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]MiddlewareInstance, 0, len(r.middlewares))
	for _, middleware := range r.middlewares {
		result = append(result, middleware)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// DefaultMiddlewareRegistry backs RegisterMiddleware, GetMiddleware and Named
var DefaultMiddlewareRegistry MiddlewareRegistry = NewInMemoryMiddlewareRegistry()

func RegisterMiddleware(name string, handler MiddlewareFunc, instance interface{}) {
	DefaultMiddlewareRegistry.RegisterMiddleware(name, handler, instance)
}

func GetMiddleware(name string) (MiddlewareInstance, bool) {
	return DefaultMiddlewareRegistry.GetMiddleware(name)
}

// Named resolves name on each request, so a controller can name middleware
// that is registered after the controller is declared. An unknown name
// passes straight through.
func Named(name string) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			mw, ok := GetMiddleware(name)
			if !ok || mw.Handler == nil {
				return next(ctx)
			}
			return mw.Handler(next)(ctx)
		}
	}
}

// RouteInfo describes one route as mounted by App.Init
type RouteInfo struct {
	Method string
	Path   string // weaver syntax, /users/{id:int}
	// ServerPath uses colon params, /users/:id
	ServerPath string

	// empty for routes added with Router.Handle
	ControllerName string
	HandlerName    string

	MountPath      string
	Middlewares    int
	ParameterTypes map[string]string
}

// RouteRegistry records what an App mounted, in mount order
type RouteRegistry interface {
	GetAllRoutes() []RouteInfo
	GetRoutesByController(controllerName string) []RouteInfo
	GetRoutesByMethod(method string) []RouteInfo
	RegisterRoute(route RouteInfo)
}

// InMemoryRouteRegistry is the RouteRegistry every App starts with
type InMemoryRouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteInfo
}

func NewInMemoryRouteRegistry() *InMemoryRouteRegistry {
	return &InMemoryRouteRegistry{
		routes: make([]RouteInfo, 0),
	}
}

// GetAllRoutes returns a copy
func (r *InMemoryRouteRegistry) GetAllRoutes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...)
}

func (r *InMemoryRouteRegistry) filter(keep func(RouteInfo) bool) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []RouteInfo
	for _, route := range r.routes {
		if keep(route) {
			filtered = append(filtered, route)
		}
	}
	return filtered
}

func (r *InMemoryRouteRegistry) GetRoutesByController(controllerName string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.ControllerName == controllerName })
}

func (r *InMemoryRouteRegistry) GetRoutesByMethod(method string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.Method == method })
}

func (r *InMemoryRouteRegistry) RegisterRoute(route RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// routeInfo splits a "Controller.Method" route name
func routeInfo(mountPath string, route MountedRoute) RouteInfo {
	info := RouteInfo{
		Method:         route.Method,
		Path:           route.Path.Raw(),
		ServerPath:     route.Path.ColonPath("*"),
		HandlerName:    route.Name,
		MountPath:      mountPath,
		Middlewares:    route.Middleware,
		ParameterTypes: route.Path.ParamTypes(),
	}
	if dot := strings.LastIndex(route.Name, "."); dot != -1 {
		info.ControllerName = route.Name[:dot]
		info.HandlerName = route.Name[dot+1:]
	}
	return info
}
