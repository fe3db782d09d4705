// Package demo is the sample application served by the weaver command: a
// notes API backed by the SQL store with an optional redis read-through
// cache.
package demo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/toyz/weaver/pkg/data"
	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/metadata"
	"github.com/toyz/weaver/pkg/storage/redis"
	"github.com/toyz/weaver/pkg/validation"
	"github.com/toyz/weaver/pkg/weaver"
)

// AuthMiddleware is the registry name of the middleware guarding writes
const AuthMiddleware = "demo.auth"

// Deps are the services the demo controllers use
type Deps struct {
	Notes NoteStore
	// Cache caches single notes, disabled when nil
	Cache *redis.KeyVal
	// APIKey is required in X-Api-Key for writes when set
	APIKey string
}

// PageQuery is the validated paging query
type PageQuery struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (q PageQuery) bounds() (limit, offset int) {
	limit = q.Limit
	if limit == 0 {
		limit = 20
	}
	page := max(q.Page, 1)
	return limit, (page - 1) * limit
}

// NotesController serves /notes
type NotesController struct {
	store NoteStore
	cache *redis.KeyVal
}

func (c *NotesController) List(q PageQuery, req *weaver.Request) (*data.Artifact, error) {
	limit, offset := q.bounds()
	notes, err := c.store.List(req.Context(), limit, offset)
	if err != nil {
		return nil, err
	}
	return data.NewArtifact(notes, fmt.Sprintf("%d notes", len(notes))), nil
}

func (c *NotesController) Show(id int64, req *weaver.Request) (*data.Artifact, error) {
	ctx := req.Context()
	key := strconv.FormatInt(id, 10)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			return data.NewArtifact(cached, "cached"), nil
		}
	}

	note, ok, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("Note %d not found.", id))
	}
	if c.cache != nil {
		_, _ = c.cache.Set(ctx, key, note, redis.SetOptions{TTL: &redis.TTL{Mode: redis.TTLSeconds, Value: 60}})
	}
	return data.NewArtifact(note), nil
}

func (c *NotesController) Create(in NoteInput, req *weaver.Request) (*data.Artifact, error) {
	note, err := c.store.Create(req.Context(), in)
	if err != nil {
		return nil, err
	}
	return data.NewArtifact(note, "Note created.").WithCode(http.StatusCreated), nil
}

func (c *NotesController) Delete(id int64, req *weaver.Request) (*data.Response, error) {
	ok, err := c.store.Delete(req.Context(), id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("Note %d not found.", id))
	}
	if c.cache != nil {
		_, _ = c.cache.Delete(req.Context(), strconv.FormatInt(id, 10))
	}
	return data.NoContent(), nil
}

// HomeController serves the landing page
type HomeController struct{}

func (c *HomeController) Index() *data.Content {
	return data.NewContent("<h1>{{ name }}</h1><p>See <a href=\"/notes\">/notes</a>.</p>", map[string]interface{}{
		"name": "weaver",
	})
}

func (c *HomeController) Docs() *data.Redirection {
	return data.Redirect("/")
}

// ContactController accepts contact requests
type ContactController struct{}

func (c *ContactController) Send(body map[string]interface{}) *data.Artifact {
	return data.NewArtifact(body, "Thanks, we will get back to you.").WithCode(http.StatusAccepted)
}

type (
	pageObject    struct{}
	noteObject    struct{}
	contactObject struct{}
)

var (
	declareOnce sync.Once
	declareErr  error
)

// declare registers the controller and validation metadata once per process
func declare() error {
	declareOnce.Do(func() {
		declareErr = declareAll()
	})
	return declareErr
}

func declareAll() error {
	page, err := weaver.NewValidationObject[pageObject]().
		Constraint("page", validation.Optional(), validation.IsInt(validation.Min(1)), validation.ToInt()).
		Constraint("limit", validation.Optional(), validation.IsInt(validation.Min(1), validation.Max(100)), validation.ToInt()).
		ValidationObject(validation.Query)
	if err != nil {
		return err
	}
	note, err := weaver.NewValidationObject[noteObject]().
		Constraint("title", validation.Required(), validation.Trim(), validation.IsLength(validation.Min(1), validation.Max(120))).
		Rules("body", "optional|isString|trim|isLength(max=2000)").
		ValidationObject(validation.Body)
	if err != nil {
		return err
	}
	contact, err := weaver.NewValidationObject[contactObject]().
		Constraint("message", validation.Required(), validation.Trim(), validation.IsLength(validation.Min(1), validation.Max(500)), validation.Escape()).
		OneOf("Provide an email or a phone number",
			validation.Alt(validation.Field("email", validation.IsEmail())),
			validation.Alt(validation.Field("phone", validation.IsNumeric(), validation.IsLength(validation.Min(7)))),
		).
		ValidationObject(validation.Body)
	if err != nil {
		return err
	}

	declared := []func() (*metadata.Class, error){
		func() (*metadata.Class, error) {
			return weaver.NewController[NotesController]().
				Get("List", "/", weaver.Query(), weaver.Req()).
				Get("Show", "/{id:int}", weaver.Param("id"), weaver.Req()).
				Post("Create", "/", weaver.Body(), weaver.Req()).
				Delete("Delete", "/{id:int}", weaver.Param("id"), weaver.Req()).
				Validate("List", page).
				Validate("Create", note).
				Before("Create", weaver.Named(AuthMiddleware)).
				Before("Delete", weaver.Named(AuthMiddleware)).
				Controller("/notes")
		},
		func() (*metadata.Class, error) {
			return weaver.NewController[HomeController]().
				Get("Index", "/").
				Get("Docs", "/docs").
				Controller("/")
		},
		func() (*metadata.Class, error) {
			return weaver.NewController[ContactController]().
				Post("Send", "/", weaver.Body()).
				Validate("Send", contact).
				Controller("/contact")
		},
	}
	for _, fn := range declared {
		if _, err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// requireAPIKey rejects requests without the configured key
func requireAPIKey(key string) weaver.MiddlewareFunc {
	return func(next weaver.HandlerFunc) weaver.HandlerFunc {
		return func(ctx weaver.RequestContext) error {
			if key != "" && ctx.Request().Header("X-Api-Key") != key {
				return errors.NewUnauthorized()
			}
			return next(ctx)
		}
	}
}

// Routes builds the route collection of the demo app
func Routes(deps Deps) (weaver.RouteCollection, error) {
	if deps.Notes == nil {
		return nil, fmt.Errorf("demo: a note store is required")
	}
	if err := declare(); err != nil {
		return nil, fmt.Errorf("demo: declare controllers: %w", err)
	}
	weaver.RegisterMiddleware(AuthMiddleware, requireAPIKey(deps.APIKey), deps.APIKey != "")

	routes, err := weaver.FromControllers(
		weaver.ControllerSpec{Controller: &NotesController{store: deps.Notes, cache: deps.Cache}},
		&HomeController{},
		&ContactController{},
	)
	if err != nil {
		return nil, err
	}

	routes["/health"] = weaver.FromDefinition(weaver.RouterDefinition{
		Routes: []weaver.RouteDef{{
			Method: http.MethodGet,
			Path:   "/",
			Handler: func(ctx weaver.RequestContext) error {
				status := map[string]interface{}{"status": "ok"}
				if _, err := deps.Notes.List(ctx.Context(), 1, 0); err != nil {
					status["status"] = "degraded"
				}
				return ctx.Response().JSON(http.StatusOK, status)
			},
		}},
	})
	return routes, nil
}

// Ready runs the store migration when the store needs one
func Ready(ctx context.Context, store NoteStore) error {
	if m, ok := store.(interface{ Migrate(context.Context) error }); ok {
		return m.Migrate(ctx)
	}
	return nil
}
