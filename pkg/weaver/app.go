package weaver

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/logger"
)

// Hook names the points of the application lifecycle listeners attach to
type Hook string

const (
	HookPreInit        Hook = "preinit"
	HookInit           Hook = "init"
	HookRoutesWillBind Hook = "routes:willbind"
	HookRoutesDidBind  Hook = "routes:didbind"
)

// HookFunc listens to a lifecycle hook. An error aborts the lifecycle step.
type HookFunc func(app *App) error

// RouteCollection maps mount paths to routers
type RouteCollection map[string]*Router

// RenderErrorInterceptor may write the error response itself. It returns
// true when it did.
type RenderErrorInterceptor func(ctx RequestContext, err errors.AppError, body map[string]interface{}) bool

// AppConfig configures an App
type AppConfig struct {
	// Server is the web server the app binds to
	Server WebServerInterface
	// Config holds the server settings, DefaultServerConfig when nil
	Config *ServerConfig
	// Routes are mounted in sorted key order
	Routes RouteCollection
	// Errors converts and formats handler errors, errors.DefaultHandler when nil
	Errors *errors.Handler
	// Logger defaults to logger.Default()
	Logger *zap.Logger
	// Registry records the mounted routes, a new registry when nil
	Registry RouteRegistry
	// Middlewares are added after the built-in global middleware
	Middlewares []MiddlewareFunc
	// DisableNotFound skips the not found handler
	DisableNotFound bool
	// DisableErrorHandler skips the error handler
	DisableErrorHandler bool
	RenderError         RenderErrorInterceptor
}

// App assembles routers, middleware and error handling on a web server
type App struct {
	cfg      AppConfig
	server   WebServerInterface
	config   *ServerConfig
	log      *zap.Logger
	errors   *errors.Handler
	registry RouteRegistry

	mu          sync.Mutex
	hooks       map[Hook][]HookFunc
	preinit     bool
	initialized bool
}

// NewApp creates an App. Nothing is bound to the server until Init.
func NewApp(cfg AppConfig) (*App, error) {
	if cfg.Server == nil {
		return nil, fmt.Errorf("app needs a web server")
	}
	a := &App{
		cfg:      cfg,
		server:   cfg.Server,
		config:   cfg.Config,
		log:      cfg.Logger,
		errors:   cfg.Errors,
		registry: cfg.Registry,
		hooks:    make(map[Hook][]HookFunc),
	}
	if a.config == nil {
		a.config = DefaultServerConfig()
	}
	if a.log == nil {
		a.log = logger.Default()
	}
	if a.errors == nil {
		a.errors = errors.DefaultHandler
	}
	if a.registry == nil {
		a.registry = NewInMemoryRouteRegistry()
	}
	return a, nil
}

// On registers fn for hook
func (a *App) On(hook Hook, fn HookFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks[hook] = append(a.hooks[hook], fn)
}

func (a *App) emit(hook Hook) error {
	a.mu.Lock()
	fns := append([]HookFunc(nil), a.hooks[hook]...)
	a.mu.Unlock()
	for _, fn := range fns {
		if err := fn(a); err != nil {
			return fmt.Errorf("%s hook: %w", hook, err)
		}
	}
	return nil
}

// Config returns the server settings
func (a *App) Config() *ServerConfig {
	return a.config
}

// Logger returns the app logger
func (a *App) Logger() *zap.Logger {
	return a.log
}

// Registry returns the routes mounted by Init
func (a *App) Registry() RouteRegistry {
	return a.registry
}

func (a *App) preInit() error {
	if a.preinit {
		return nil
	}
	a.preinit = true

	if a.config.EnableRecover {
		a.server.Use(Recover())
	}
	if a.config.EnableTracer {
		a.server.Use(RequestTracer(a.log))
	}
	if a.config.EnableSecureHeaders {
		a.server.Use(SecureHeaders())
	}
	if a.config.EnableCORS {
		a.server.Use(CORS(a.config.CORS))
	}
	if a.config.BodyLimit > 0 {
		a.server.Use(BodyLimit(a.config.BodyLimit))
	}
	for _, mw := range a.cfg.Middlewares {
		a.server.Use(mw)
	}
	return a.emit(HookPreInit)
}

// Init binds middleware, routes and the error handling to the server. It
// runs once; later calls return nil.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.preInit(); err != nil {
		return err
	}
	if err := a.bindRoutes(); err != nil {
		return err
	}
	a.initialized = true
	if err := a.emit(HookInit); err != nil {
		return err
	}
	if !a.cfg.DisableNotFound {
		a.server.NotFound(func(ctx RequestContext) error {
			return errors.NewNotFound(fmt.Sprintf("Cannot %s to requested resource %s", ctx.Method(), ctx.Path()))
		})
	}
	if !a.cfg.DisableErrorHandler {
		a.server.SetErrorHandler(a.handleError)
	}
	return nil
}

func (a *App) bindRoutes() error {
	if err := a.emit(HookRoutesWillBind); err != nil {
		return err
	}
	keys := make([]string, 0, len(a.cfg.Routes))
	for key := range a.cfg.Routes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		router := a.cfg.Routes[key]
		if router == nil {
			continue
		}
		mountPath := NormalizeMountPath(key)
		for _, route := range router.Apply(a.server, mountPath) {
			a.registry.RegisterRoute(routeInfo(mountPath, route))
			a.log.Debug("route bound",
				zap.String("method", route.Method),
				zap.String("path", route.Path.Raw()),
				zap.String("handler", route.Name))
		}
	}
	a.log.Info("routes bound", zap.Int("routes", len(a.registry.GetAllRoutes())), zap.String("server", a.server.Name()))
	return a.emit(HookRoutesDidBind)
}

func (a *App) handleError(ctx RequestContext, caught error) {
	appErr := a.errors.Handle(caught)
	log := logger.FromContext(ctx.Context())
	if appErr.StatusCode() >= http.StatusInternalServerError {
		log.Error("request error", zap.Error(caught), zap.String("path", ctx.Path()))
	}
	if ctx.Response().Written() {
		log.Warn("error after response was sent", zap.Error(caught))
		return
	}
	body := a.errors.Format(appErr, a.config.Verbose)
	if a.cfg.RenderError != nil && a.cfg.RenderError(ctx, appErr, body) {
		return
	}
	if err := ctx.Response().JSON(appErr.StatusCode(), body); err != nil {
		log.Error("write error response", zap.Error(err))
	}
}

// ErrNotInitialized is returned by Server before Init
var ErrNotInitialized = stderrors.New("app is not initialized, call Init first")

// Server returns the web server once the app is initialized
func (a *App) Server() (WebServerInterface, error) {
	if !a.initialized {
		return nil, ErrNotInitialized
	}
	return a.server, nil
}

// Handler returns the initialized server as a net/http handler
func (a *App) Handler() (http.Handler, error) {
	server, err := a.Server()
	if err != nil {
		return nil, err
	}
	return server.Handler(), nil
}

// Start initializes the app when needed and serves on the configured
// address until the server stops
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.log.Info("starting server", zap.String("addr", a.config.Addr()), zap.String("server", a.server.Name()))
	if err := a.server.Start(a.config.Addr()); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run starts the app and shuts it down gracefully when ctx is done
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- a.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

// Shutdown stops the server
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down server")
	return a.server.Stop(ctx)
}
