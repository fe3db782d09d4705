package weaver

import (
	"fmt"
	"net/http"

	"github.com/toyz/weaver/pkg/metadata"
)

// RouterOptions configures the router built for a controller
type RouterOptions struct {
	// Name prefixes the route names recorded in the route registry
	Name string
}

// ControllerMetadata is stored once per controller class
type ControllerMetadata struct {
	BasePath string
	Options  RouterOptions
	Children []*metadata.Class
	Parent   *metadata.Class
}

// ControllerOption customizes a controller declaration
type ControllerOption func(*ControllerMetadata)

// Extends inherits the routes of parent. The child's methods shadow the
// parent's methods of the same name.
func Extends(parent *metadata.Class) ControllerOption {
	return func(m *ControllerMetadata) {
		m.Parent = parent
	}
}

// WithChildren mounts child controllers below the controller's base path
func WithChildren(children ...*metadata.Class) ControllerOption {
	return func(m *ControllerMetadata) {
		m.Children = append(m.Children, children...)
	}
}

// WithRouterOptions sets the router options
func WithRouterOptions(opts RouterOptions) ControllerOption {
	return func(m *ControllerMetadata) {
		m.Options = opts
	}
}

// GetControllerMetadata returns the controller declaration of class
func GetControllerMetadata(class *metadata.Class) (*ControllerMetadata, bool) {
	return metadata.Lookup[*ControllerMetadata](metadata.Default(), metadata.KeyRouter, metadata.Static(class))
}

// ControllerBuilder registers the routes of T. Registrations target
// instance methods unless Static was called.
type ControllerBuilder[T any] struct {
	class *metadata.Class
	scope metadata.Scope
	errs  []error
}

// NewController starts the declaration of controller T
func NewController[T any]() *ControllerBuilder[T] {
	return &ControllerBuilder[T]{class: metadata.ClassOf[T](), scope: metadata.ScopeInstance}
}

// Class returns the class being declared
func (b *ControllerBuilder[T]) Class() *metadata.Class {
	return b.class
}

func (b *ControllerBuilder[T]) target() metadata.Target {
	return metadata.Target{Class: b.class, Scope: b.scope}
}

// Static directs the following registrations to static functions
func (b *ControllerBuilder[T]) Static() *ControllerBuilder[T] {
	b.scope = metadata.ScopeStatic
	return b
}

// Instance directs the following registrations to methods of T
func (b *ControllerBuilder[T]) Instance() *ControllerBuilder[T] {
	b.scope = metadata.ScopeInstance
	return b
}

// Func registers a static function under name
func (b *ControllerBuilder[T]) Func(name string, fn interface{}) *ControllerBuilder[T] {
	target := metadata.Static(b.class)
	funcs, _ := metadata.Lookup[map[string]interface{}](metadata.Default(), metadata.KeyStaticMethods, target)
	if funcs == nil {
		funcs = make(map[string]interface{})
	}
	funcs[name] = fn
	metadata.Default().Set(metadata.KeyStaticMethods, target, funcs)
	return b
}

// Route binds method to verb and path and registers its arguments in order
func (b *ControllerBuilder[T]) Route(verb, method, path string, args ...ArgSource) *ControllerBuilder[T] {
	RegisterVerb(b.target(), method, verb, NewPath(path))
	for i, arg := range args {
		RegisterArg(b.target(), method, i, arg)
	}
	return b
}

// Get binds method to a GET route
func (b *ControllerBuilder[T]) Get(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodGet, method, path, args...)
}

// Post binds method to a POST route
func (b *ControllerBuilder[T]) Post(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodPost, method, path, args...)
}

// Put binds method to a PUT route
func (b *ControllerBuilder[T]) Put(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodPut, method, path, args...)
}

// Patch binds method to a PATCH route
func (b *ControllerBuilder[T]) Patch(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodPatch, method, path, args...)
}

// Delete binds method to a DELETE route
func (b *ControllerBuilder[T]) Delete(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodDelete, method, path, args...)
}

// Head binds method to a HEAD route
func (b *ControllerBuilder[T]) Head(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodHead, method, path, args...)
}

// Options binds method to an OPTIONS route
func (b *ControllerBuilder[T]) Options(method, path string, args ...ArgSource) *ControllerBuilder[T] {
	return b.Route(http.MethodOptions, method, path, args...)
}

// Arg registers the source of a single argument position
func (b *ControllerBuilder[T]) Arg(method string, index int, source ArgSource) *ControllerBuilder[T] {
	RegisterArg(b.target(), method, index, source)
	return b
}

// Before prepends middleware that runs before method
func (b *ControllerBuilder[T]) Before(method string, middlewares ...MiddlewareFunc) *ControllerBuilder[T] {
	Use(b.target(), method, middlewares, nil)
	return b
}

// After prepends middleware that runs after method
func (b *ControllerBuilder[T]) After(method string, middlewares ...MiddlewareFunc) *ControllerBuilder[T] {
	Use(b.target(), method, nil, middlewares)
	return b
}

// UseBefore prepends middleware that runs before every route of the controller
func (b *ControllerBuilder[T]) UseBefore(middlewares ...MiddlewareFunc) *ControllerBuilder[T] {
	Use(metadata.Static(b.class), "", middlewares, nil)
	return b
}

// UseAfter prepends middleware that runs after every route of the controller
func (b *ControllerBuilder[T]) UseAfter(middlewares ...MiddlewareFunc) *ControllerBuilder[T] {
	Use(metadata.Static(b.class), "", nil, middlewares)
	return b
}

// Validate runs the validation objects before method
func (b *ControllerBuilder[T]) Validate(method string, objects ...*metadata.Class) *ControllerBuilder[T] {
	mw, err := UseValidator(objects...)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("validate %s.%s: %w", b.class.Name(), method, err))
		return b
	}
	return b.Before(method, mw)
}

// Controller finishes the declaration, mounting the controller at path
func (b *ControllerBuilder[T]) Controller(path string, opts ...ControllerOption) (*metadata.Class, error) {
	if len(b.errs) > 0 {
		return b.class, b.errs[0]
	}
	return b.class, DeclareController(b.class, path, opts...)
}

// MustController is like Controller but panics on error
func (b *ControllerBuilder[T]) MustController(path string, opts ...ControllerOption) *metadata.Class {
	class, err := b.Controller(path, opts...)
	if err != nil {
		panic(err)
	}
	return class
}

// DeclareController stores the router metadata of class
func DeclareController(class *metadata.Class, path string, opts ...ControllerOption) error {
	meta := &ControllerMetadata{BasePath: path}
	for _, opt := range opts {
		opt(meta)
	}
	if meta.Parent != nil {
		if !class.SetParent(meta.Parent) {
			return fmt.Errorf("controller %s cannot extend %s: inheritance cycle", class.Name(), meta.Parent.Name())
		}
		MergeRoutes(meta.Parent, class)
	}
	metadata.Default().Set(metadata.KeyRouter, metadata.Static(class), meta)
	return nil
}

// staticFunc finds a static function of class or one of its ancestors
func staticFunc(class *metadata.Class, name string) (interface{}, bool) {
	for _, c := range append([]*metadata.Class{class}, class.Ancestors()...) {
		funcs, _ := metadata.Lookup[map[string]interface{}](metadata.Default(), metadata.KeyStaticMethods, metadata.Static(c))
		if fn, ok := funcs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}
