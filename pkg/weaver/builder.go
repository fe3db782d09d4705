package weaver

import (
	"fmt"
	"reflect"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/metadata"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Container resolves controller instances
type Container interface {
	Get(class *metadata.Class) (interface{}, error)
}

// ContainerFunc adapts a function to Container
type ContainerFunc func(class *metadata.Class) (interface{}, error)

// Get implements Container
func (f ContainerFunc) Get(class *metadata.Class) (interface{}, error) {
	return f(class)
}

// DefaultContainer creates a zero value instance of the class
var DefaultContainer Container = ContainerFunc(func(class *metadata.Class) (interface{}, error) {
	return reflect.New(class.Type()).Interface(), nil
})

// RouterConfig configures BuildRouter
type RouterConfig struct {
	Container Container
	// Router receives the routes instead of a new router when set
	Router *Router
}

// BuildRouter builds the router of a controller. controller is either the
// controller class or an instance of it. It returns the controller base
// path with the router.
func BuildRouter(controller interface{}, config ...RouterConfig) (basePath string, router *Router, err error) {
	var cfg RouterConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Container == nil {
		cfg.Container = DefaultContainer
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build router: %v", r)
		}
	}()

	var (
		class    *metadata.Class
		instance interface{}
	)
	if c, ok := controller.(*metadata.Class); ok {
		class = c
	} else {
		class = metadata.ClassOfValue(controller)
		instance = controller
	}

	meta, ok := GetControllerMetadata(class)
	if !ok {
		return "", nil, fmt.Errorf("constructor for %s is not declared as a controller", class.Name())
	}
	if instance == nil {
		instance, err = cfg.Container.Get(class)
		if err != nil {
			return "", nil, fmt.Errorf("resolve %s: %w", class.Name(), err)
		}
	}

	router = cfg.Router
	if router == nil {
		router = NewRouter(meta.Options)
	}

	use := ControllerMiddleware(metadata.Static(class))
	router.Use(use.Before...)

	static := GetRoutes(metadata.Static(class))
	for _, name := range static.Names() {
		entry, _ := static.Get(name)
		fn, found := staticFunc(class, name)
		if !found {
			return "", nil, fmt.Errorf("%s has no static function %q", class.Name(), name)
		}
		route, err := buildRoute(class, name, entry, reflect.ValueOf(fn))
		if err != nil {
			return "", nil, err
		}
		router.AddRoute(route)
	}

	instanceRoutes := GetRoutes(metadata.Instance(class))
	value := reflect.ValueOf(instance)
	for _, name := range instanceRoutes.Names() {
		entry, _ := instanceRoutes.Get(name)
		method := value.MethodByName(name)
		if !method.IsValid() {
			return "", nil, fmt.Errorf("%s has no method %q", class.Name(), name)
		}
		route, err := buildRoute(class, name, entry, method)
		if err != nil {
			return "", nil, err
		}
		router.AddRoute(route)
	}

	for _, child := range meta.Children {
		childPath, childRouter, err := BuildRouter(child, RouterConfig{Container: cfg.Container})
		if err != nil {
			return "", nil, fmt.Errorf("child of %s: %w", class.Name(), err)
		}
		router.Mount(childPath, childRouter)
	}

	router.UseAfter(use.After...)
	return meta.BasePath, router, nil
}

func buildRoute(class *metadata.Class, name string, entry *RouteEntry, fn reflect.Value) (*Route, error) {
	label := class.Name() + "." + name
	if entry.Verb == nil {
		return nil, fmt.Errorf("%s has arguments or middleware but no HTTP verb", label)
	}
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", label)
	}
	fnType := fn.Type()
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%s: variadic handlers are not supported", label)
	}
	if len(entry.Args) > fnType.NumIn() {
		return nil, fmt.Errorf("%s takes %d arguments, %d registered", label, fnType.NumIn(), len(entry.Args))
	}
	if err := checkResults(fnType); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	return &Route{
		Method:  entry.Verb.Method,
		Path:    entry.Verb.Path,
		Name:    label,
		Handler: invoker(entry, fn),
		Before:  entry.Middlewares.Before,
		After:   entry.Middlewares.After,
	}, nil
}

// checkResults accepts (), (T), (error) and (T, error)
func checkResults(fnType reflect.Type) error {
	switch fnType.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if fnType.Out(1).Implements(errorType) {
			return nil
		}
	}
	return fmt.Errorf("handlers return (), (T), (error) or (T, error)")
}

// invoker resolves the arguments of a route, calls it and sends the result
func invoker(entry *RouteEntry, fn reflect.Value) RouteHandler {
	fnType := fn.Type()
	return func(ctx RequestContext, next HandlerFunc) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.NewServer().SetInner(fmt.Errorf("panic: %v", r))
			}
		}()

		req := RequestFrom(ctx)
		var (
			nextCalled bool
			nextErr    error
		)
		nextFn := NextFunc(func(errs ...error) error {
			for _, e := range errs {
				if e != nil {
					nextErr = e
					return e
				}
			}
			nextCalled = true
			nextErr = next(ctx)
			return nextErr
		})

		values, err := ResolveArgs(entry.Args, req, nextFn)
		if err != nil {
			return err
		}
		in := make([]reflect.Value, fnType.NumIn())
		for i := range in {
			var v interface{}
			if i < len(values) {
				v = values[i]
			}
			if in[i], err = convertArg(v, fnType.In(i)); err != nil {
				return err
			}
		}

		result, err := splitResults(fn.Call(in))
		if err != nil {
			return err
		}
		if nextErr != nil {
			return nextErr
		}
		if !entry.ResponseHandled {
			if err := SendResponse(ctx, result); err != nil {
				return err
			}
		}
		if nextCalled {
			return nil
		}
		return next(ctx)
	}
}

func splitResults(out []reflect.Value) (interface{}, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errorType) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	}
	if errVal := out[1]; !errVal.IsNil() {
		return nil, errVal.Interface().(error)
	}
	return out[0].Interface(), nil
}
