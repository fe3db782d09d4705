package adapters

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/weaver"
)

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

func allAdapters() map[string]func() weaver.WebServerInterface {
	return map[string]func() weaver.WebServerInterface{
		"gin":   func() weaver.WebServerInterface { return NewDefaultGinAdapter() },
		"echo":  func() weaver.WebServerInterface { return NewDefaultEchoAdapter() },
		"fiber": func() weaver.WebServerInterface { return NewDefaultFiberAdapter() },
	}
}

func serve(server weaver.WebServerInterface, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "gin", "echo", "fiber", "GIN"} {
		server, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, server)
	}
	_, err := New("martini")
	assert.Error(t, err)
}

func TestAdapters_Name(t *testing.T) {
	for name, create := range allAdapters() {
		assert.Equal(t, name, create().Name())
	}
}

func TestAdapters_RouteAndParams(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.RegisterRoute(http.MethodGet, weaver.NewPath("/users/{id:int}/posts/{slug}"), func(ctx weaver.RequestContext) error {
				return ctx.Response().JSON(http.StatusOK, map[string]interface{}{
					"id":    ctx.Param("id"),
					"slug":  ctx.Param("slug"),
					"q":     ctx.QueryParam("q"),
					"names": len(ctx.ParamNames()),
				})
			})

			rec := serve(server, http.MethodGet, "/users/42/posts/hello?q=yes", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":"42","slug":"hello","q":"yes","names":2}`, rec.Body.String())
		})
	}
}

func TestAdapters_Wildcard(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.RegisterRoute(http.MethodGet, weaver.NewPath("/files/{*}"), func(ctx weaver.RequestContext) error {
				return ctx.Response().String(http.StatusOK, strings.TrimPrefix(ctx.Param("*"), "/"))
			})

			rec := serve(server, http.MethodGet, "/files/a/b.txt", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "a/b.txt", rec.Body.String())
		})
	}
}

func TestAdapters_BodyIsRereadable(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.RegisterRoute(http.MethodPost, weaver.NewPath("/echo"), func(ctx weaver.RequestContext) error {
				first, err := ctx.Request().Body()
				if err != nil {
					return err
				}
				second, err := ctx.Request().Body()
				if err != nil {
					return err
				}
				if string(first) != string(second) {
					return errors.NewServer("body changed between reads")
				}
				return ctx.Response().Blob(http.StatusOK, ctx.Request().ContentType(), second)
			})

			rec := serve(server, http.MethodPost, "/echo", `{"id":1}`)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"id":1}`, rec.Body.String())
		})
	}
}

func TestAdapters_MiddlewareOrder(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			var order []string
			tag := func(label string) weaver.MiddlewareFunc {
				return func(next weaver.HandlerFunc) weaver.HandlerFunc {
					return func(ctx weaver.RequestContext) error {
						order = append(order, label)
						return next(ctx)
					}
				}
			}

			server.RegisterRoute(http.MethodGet, weaver.NewPath("/mw"), func(ctx weaver.RequestContext) error {
				order = append(order, "handler")
				return ctx.Response().Blob(http.StatusNoContent, "", nil)
			}, tag("route"))
			// registered after the route and still applied to it
			server.Use(tag("global"))

			rec := serve(server, http.MethodGet, "/mw", "")
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, []string{"global", "route", "handler"}, order)
		})
	}
}

func TestAdapters_Group(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			api := server.RegisterGroup("/api")
			v1 := api.Group("v1")
			assert.Equal(t, "/api/v1", v1.Prefix())

			var groupRan bool
			api.Use(func(next weaver.HandlerFunc) weaver.HandlerFunc {
				return func(ctx weaver.RequestContext) error {
					groupRan = true
					return next(ctx)
				}
			})
			v1.RegisterRoute(http.MethodGet, weaver.NewPath("/ping"), func(ctx weaver.RequestContext) error {
				return ctx.Response().String(http.StatusOK, "pong")
			})

			rec := serve(server, http.MethodGet, "/api/v1/ping", "")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "pong", rec.Body.String())
			assert.True(t, groupRan)
		})
	}
}

func TestAdapters_ErrorHandler(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.RegisterRoute(http.MethodGet, weaver.NewPath("/fail"), func(ctx weaver.RequestContext) error {
				return errors.NewForbidden("no entry")
			})

			rec := serve(server, http.MethodGet, "/fail", "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.JSONEq(t, `{"error":"no entry"}`, rec.Body.String())

			var caught error
			server.SetErrorHandler(func(ctx weaver.RequestContext, err error) {
				caught = err
				_ = ctx.Response().String(http.StatusTeapot, "custom")
			})
			rec = serve(server, http.MethodGet, "/fail", "")
			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, "custom", rec.Body.String())
			assert.EqualError(t, caught, "no entry")
		})
	}
}

func TestAdapters_NotFound(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			rec := serve(server, http.MethodGet, "/missing", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)

			server.NotFound(func(ctx weaver.RequestContext) error {
				return errors.NewNotFound("nothing at " + ctx.Path())
			})
			rec = serve(server, http.MethodGet, "/missing", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"nothing at /missing"}`, rec.Body.String())
		})
	}
}

func TestAdapters_Redirect(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.RegisterRoute(http.MethodGet, weaver.NewPath("/old"), func(ctx weaver.RequestContext) error {
				if ctx.Response().Written() {
					return errors.NewServer("written too early")
				}
				return ctx.Response().Redirect(http.StatusFound, "/new")
			})

			rec := serve(server, http.MethodGet, "/old", "")
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/new", rec.Header().Get("Location"))
		})
	}
}

func TestAdapters_ContextValues(t *testing.T) {
	for name, create := range allAdapters() {
		t.Run(name, func(t *testing.T) {
			server := create()
			server.Use(func(next weaver.HandlerFunc) weaver.HandlerFunc {
				return func(ctx weaver.RequestContext) error {
					ctx.Set("user", "ada")
					ctx.Response().SetHeader("X-Test", "1")
					return next(ctx)
				}
			})
			server.RegisterRoute(http.MethodGet, weaver.NewPath("/me"), func(ctx weaver.RequestContext) error {
				return ctx.Response().String(http.StatusOK, ctx.Get("user").(string))
			})

			rec := serve(server, http.MethodGet, "/me", "")
			assert.Equal(t, "ada", rec.Body.String())
			assert.Equal(t, "1", rec.Header().Get("X-Test"))
		})
	}
}
