package weaver

import (
	"github.com/toyz/weaver/pkg/metadata"
)

// VerbPath is the HTTP method and path a controller method is bound to
type VerbPath struct {
	Method string
	Path   Path
}

// MiddlewareStorage holds the middleware that runs before and after a
// route or a whole controller
type MiddlewareStorage struct {
	Before []MiddlewareFunc
	After  []MiddlewareFunc
}

func (m MiddlewareStorage) clone() MiddlewareStorage {
	return MiddlewareStorage{
		Before: append([]MiddlewareFunc(nil), m.Before...),
		After:  append([]MiddlewareFunc(nil), m.After...),
	}
}

// RouteEntry is everything registered for one controller method
type RouteEntry struct {
	Args            []ArgSource
	Verb            *VerbPath
	Middlewares     MiddlewareStorage
	ResponseHandled bool
}

// Clone returns a copy that shares no slices with e
func (e *RouteEntry) Clone() *RouteEntry {
	out := &RouteEntry{
		Args:            append([]ArgSource(nil), e.Args...),
		Middlewares:     e.Middlewares.clone(),
		ResponseHandled: e.ResponseHandled,
	}
	if e.Verb != nil {
		verb := *e.Verb
		out.Verb = &verb
	}
	return out
}

// RouteMap maps method names to their entries in first registration order
type RouteMap struct {
	names   []string
	entries map[string]*RouteEntry
}

// NewRouteMap creates an empty RouteMap
func NewRouteMap() *RouteMap {
	return &RouteMap{entries: make(map[string]*RouteEntry)}
}

// Get returns the entry of method
func (m *RouteMap) Get(method string) (*RouteEntry, bool) {
	e, ok := m.entries[method]
	return e, ok
}

// Names returns the method names in order
func (m *RouteMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Len returns the number of entries
func (m *RouteMap) Len() int {
	return len(m.names)
}

// Set stores e under method, keeping the position of an existing entry
func (m *RouteMap) Set(method string, e *RouteEntry) {
	if _, ok := m.entries[method]; !ok {
		m.names = append(m.names, method)
	}
	m.entries[method] = e
}

func (m *RouteMap) ensure(method string) *RouteEntry {
	if e, ok := m.entries[method]; ok {
		return e
	}
	e := &RouteEntry{}
	m.Set(method, e)
	return e
}

// GetRoutes returns the routes of target, initializing an empty entry for
// each of initMethods that is not yet present. The map is not stored until
// SetRoutes is called.
func GetRoutes(target metadata.Target, initMethods ...string) *RouteMap {
	routes, ok := metadata.Lookup[*RouteMap](metadata.Default(), metadata.KeyRoutes, target)
	if !ok || routes == nil {
		routes = NewRouteMap()
	}
	for _, name := range initMethods {
		routes.ensure(name)
	}
	return routes
}

// SetRoutes stores the routes of target
func SetRoutes(target metadata.Target, routes *RouteMap) {
	metadata.Default().Set(metadata.KeyRoutes, target, routes)
}

// MergeRoutes overlays the child's routes on the parent's, for both the
// static and the instance scope. A method redeclared by the child replaces
// the parent's entry as a whole.
func MergeRoutes(parent, child *metadata.Class) {
	for _, scope := range []metadata.Scope{metadata.ScopeStatic, metadata.ScopeInstance} {
		parentRoutes := GetRoutes(metadata.Target{Class: parent, Scope: scope})
		childRoutes := GetRoutes(metadata.Target{Class: child, Scope: scope})

		merged := NewRouteMap()
		for _, name := range parentRoutes.names {
			merged.Set(name, parentRoutes.entries[name].Clone())
		}
		for _, name := range childRoutes.names {
			merged.Set(name, childRoutes.entries[name])
		}
		SetRoutes(metadata.Target{Class: child, Scope: scope}, merged)
	}
}

// RegisterArg places source at index of method's argument list. Response
// and Next sources mark the response as handled by the method.
func RegisterArg(target metadata.Target, method string, index int, source ArgSource) {
	routes := GetRoutes(target, method)
	entry := routes.entries[method]
	for len(entry.Args) <= index {
		entry.Args = append(entry.Args, ArgSource{})
	}
	entry.Args[index] = source
	if source.Kind == ArgResponse || source.Kind == ArgNext {
		entry.ResponseHandled = true
	}
	SetRoutes(target, routes)
}

// RegisterVerb binds method to an HTTP verb and path. The last
// registration wins.
func RegisterVerb(target metadata.Target, method, verb string, path Path) {
	routes := GetRoutes(target, method)
	routes.entries[method].Verb = &VerbPath{Method: verb, Path: path}
	SetRoutes(target, routes)
}

// Use prepends middleware to a method, or to the controller when method
// is empty
func Use(target metadata.Target, method string, before, after []MiddlewareFunc) {
	prepend := func(m *MiddlewareStorage) {
		m.Before = append(append([]MiddlewareFunc(nil), before...), m.Before...)
		m.After = append(append([]MiddlewareFunc(nil), after...), m.After...)
	}

	if method == "" {
		stored, _ := metadata.Lookup[MiddlewareStorage](metadata.Default(), metadata.KeyMiddlewares, target)
		prepend(&stored)
		metadata.Default().Set(metadata.KeyMiddlewares, target, stored)
		return
	}

	routes := GetRoutes(target, method)
	prepend(&routes.entries[method].Middlewares)
	SetRoutes(target, routes)
}

// ControllerMiddleware returns the controller level middleware of target
func ControllerMiddleware(target metadata.Target) MiddlewareStorage {
	stored, _ := metadata.Lookup[MiddlewareStorage](metadata.Default(), metadata.KeyMiddlewares, target)
	return stored
}
