package weaver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRegistry(t *testing.T) {
	registry := NewInMemoryMiddlewareRegistry()
	noop := func(next HandlerFunc) HandlerFunc { return next }

	registry.RegisterMiddleware("logging", noop, "instance")
	registry.RegisterMiddleware("auth", noop, nil)

	mw, ok := registry.GetMiddleware("logging")
	require.True(t, ok)
	assert.Equal(t, "logging", mw.Name)
	assert.Equal(t, "instance", mw.Instance)

	_, ok = registry.GetMiddleware("missing")
	assert.False(t, ok)

	all := registry.GetAllMiddlewares()
	require.Len(t, all, 2)
	assert.Equal(t, "auth", all[0].Name)
	assert.Equal(t, "logging", all[1].Name)
}

func TestNamed_ResolvesLate(t *testing.T) {
	prev := DefaultMiddlewareRegistry
	DefaultMiddlewareRegistry = NewInMemoryMiddlewareRegistry()
	t.Cleanup(func() { DefaultMiddlewareRegistry = prev })

	var order []string
	handler := Chain(func(ctx RequestContext) error {
		order = append(order, "handler")
		return nil
	}, Named("audit"))

	// unknown names pass through
	require.NoError(t, handler(newFakeContext(http.MethodGet, "/")))
	assert.Equal(t, []string{"handler"}, order)

	order = nil
	RegisterMiddleware("audit", tagger(&order, "audit"), nil)
	require.NoError(t, handler(newFakeContext(http.MethodGet, "/")))
	assert.Equal(t, []string{"audit", "handler"}, order)
}

func TestInMemoryRouteRegistry(t *testing.T) {
	registry := NewInMemoryRouteRegistry()
	registry.RegisterRoute(RouteInfo{Method: http.MethodGet, Path: "/users", ControllerName: "users"})
	registry.RegisterRoute(RouteInfo{Method: http.MethodPost, Path: "/users", ControllerName: "users"})
	registry.RegisterRoute(RouteInfo{Method: http.MethodGet, Path: "/health", ControllerName: "health"})

	assert.Len(t, registry.GetAllRoutes(), 3)
	assert.Len(t, registry.GetRoutesByController("users"), 2)
	assert.Len(t, registry.GetRoutesByMethod(http.MethodGet), 2)
	assert.Empty(t, registry.GetRoutesByController("missing"))

	// the returned slice is a copy
	all := registry.GetAllRoutes()
	all[0].Path = "/changed"
	assert.Equal(t, "/users", registry.GetAllRoutes()[0].Path)
}

func TestRouteInfo(t *testing.T) {
	info := routeInfo("/api", MountedRoute{
		Method:     http.MethodGet,
		Path:       NewPath("/api/users/{id:int}"),
		Name:       "UserController.Show",
		Middleware: 2,
	})

	assert.Equal(t, "/api/users/{id:int}", info.Path)
	assert.Equal(t, "/api/users/:id", info.ServerPath)
	assert.Equal(t, "UserController", info.ControllerName)
	assert.Equal(t, "Show", info.HandlerName)
	assert.Equal(t, "/api", info.MountPath)
	assert.Equal(t, 2, info.Middlewares)
	assert.Equal(t, map[string]string{"id": "int"}, info.ParameterTypes)

	anonymous := routeInfo("/", MountedRoute{Method: http.MethodGet, Path: NewPath("/"), Name: "handler"})
	assert.Empty(t, anonymous.ControllerName)
	assert.Equal(t, "handler", anonymous.HandlerName)
}
