package weaver

// RouteDef is a single route of a RouterDefinition
type RouteDef struct {
	Method      string
	Path        string
	Handler     HandlerFunc
	Middlewares []MiddlewareFunc
}

// SubRouter mounts a router below a path
type SubRouter struct {
	Path   string
	Router *Router
}

// RouterDefinition describes a router as plain data
type RouterDefinition struct {
	Routes []RouteDef
	Use    []SubRouter
}

// FromDefinition builds a router from def, adding to router when given
func FromDefinition(def RouterDefinition, router ...*Router) *Router {
	r := NewRouter()
	if len(router) > 0 && router[0] != nil {
		r = router[0]
	}
	for _, route := range def.Routes {
		r.Handle(route.Method, route.Path, route.Handler, route.Middlewares...)
	}
	for _, sub := range def.Use {
		r.Mount(sub.Path, sub.Router)
	}
	return r
}

// ControllerSpec pairs a controller with its router config
type ControllerSpec struct {
	Controller interface{}
	Config     RouterConfig
}

// FromControllers builds a collection keyed by controller base path.
// Controllers sharing a base path are merged into one router, in order.
// Each item is a controller class, an instance or a ControllerSpec.
func FromControllers(controllers ...interface{}) (RouteCollection, error) {
	collection := make(RouteCollection)
	for _, item := range controllers {
		spec, ok := item.(ControllerSpec)
		if !ok {
			spec = ControllerSpec{Controller: item}
		}
		path, router, err := BuildRouter(spec.Controller, spec.Config)
		if err != nil {
			return nil, err
		}
		if existing, ok := collection[path]; ok {
			existing.Mount("", router)
			continue
		}
		collection[path] = router
	}
	return collection, nil
}
