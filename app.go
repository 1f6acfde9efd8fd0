package wayfind

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
	"github.com/wayfind-dev/wayfind/pkg/host"
	"github.com/wayfind-dev/wayfind/pkg/host/webhost"
	"github.com/wayfind-dev/wayfind/pkg/host/wshost"
)

// =============================================================================
// Config
// =============================================================================

// Config configures an App. The zero value is usable: routes are
// case-insensitive, dispatching runs against an in-memory host
// starting at "/", and diagnostics go to slog.Default().
type Config struct {
	// Host is the location/history provider. Default: a MemoryHost at "/".
	Host host.Host

	// Logger receives diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// CaseSensitive makes route patterns match case-sensitively.
	CaseSensitive bool

	// NotFound runs when no route matches the current location.
	NotFound dispatch.HandlerFunc

	// ErrorHandler receives every error surfaced by the dispatch error
	// path, after it has been logged, along with the navigation context
	// it happened in.
	ErrorHandler func(error, *dispatch.Context)

	// Observers receive a DispatchResult after every dispatch.
	Observers []dispatch.Observer

	// OnSession, when set, enables the /wayfind/ws endpoint: each
	// websocket connection becomes a wshost.Host and is handed to this
	// callback before its read loop starts. The callback typically
	// builds a per-connection Router on the host and starts it.
	OnSession func(*wshost.Host)

	// Shell serves the single-page application shell for paths the
	// router resolves. Default: a minimal placeholder page.
	Shell http.Handler
}

// =============================================================================
// App Type
// =============================================================================

// App bundles a Router, its Host, and the HTTP front door into a
// single entry point.
//
// Create an App with wayfind.New():
//
//	app := wayfind.New(wayfind.Config{})
//	app.On("/", wayfind.HandlerFunc(home))
//	app.On("/users/{id}", wayfind.HandlerFunc(showUser), wayfind.WithName("user"))
//	app.Start()
type App struct {
	router *dispatch.Router
	logger *slog.Logger

	config   Config
	web      http.Handler
	upgrader websocket.Upgrader
}

// New creates an App with the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
	}
	if cfg.CaseSensitive {
		opts = append(opts, dispatch.WithCaseSensitive())
	}
	if cfg.Host != nil {
		opts = append(opts, dispatch.WithHost(cfg.Host))
	}
	if cfg.NotFound != nil {
		opts = append(opts, dispatch.WithNotFound(cfg.NotFound))
	}
	if cfg.ErrorHandler != nil {
		opts = append(opts, dispatch.WithErrorHandler(cfg.ErrorHandler))
	}
	for _, obs := range cfg.Observers {
		opts = append(opts, dispatch.WithObserver(obs))
	}

	router := dispatch.New(opts...)

	webOpts := []webhost.Option{webhost.WithLogger(logger)}
	if cfg.Shell != nil {
		webOpts = append(webOpts, webhost.WithShell(cfg.Shell))
	}

	return &App{
		router: router,
		logger: logger,
		config: cfg,
		web:    webhost.New(router, webOpts...),
	}
}

// Router returns the underlying Router for direct use.
func (a *App) Router() *dispatch.Router {
	return a.router
}

// =============================================================================
// Registration passthroughs
// =============================================================================

// Use appends middleware that runs before every dispatch.
func (a *App) Use(middleware ...dispatch.HandlerFunc) *App {
	a.router.Use(middleware...)
	return a
}

// On registers a route.
func (a *App) On(pattern string, handlers dispatch.HandlerInput, opts ...dispatch.RouteOption) *App {
	a.router.On(pattern, handlers, opts...)
	return a
}

// Group registers routes under a shared prefix with shared handlers.
func (a *App) Group(prefix string, handlers dispatch.HandlerInput) *dispatch.Group {
	return a.router.Group(prefix, handlers)
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start dispatches the host's current location and begins listening
// for host traversal.
func (a *App) Start() {
	a.router.Dispatch()
	a.router.Listen()
}

// Navigate programmatically moves the host to path and dispatches it.
func (a *App) Navigate(path string, opts ...dispatch.NavigateOption) error {
	return a.router.Navigate(path, opts...)
}

// Close stops listening and releases the router's resources. The App
// must not be used afterwards.
func (a *App) Close() {
	a.router.Destroy()
}

// =============================================================================
// http.Handler Implementation
// =============================================================================

// ServeHTTP implements http.Handler. Websocket sessions connect at
// /wayfind/ws when Config.OnSession is set; every other request goes
// to the web host (shell fallback, route table, metrics).
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/wayfind/ws" && a.config.OnSession != nil {
		a.serveSession(w, r)
		return
	}
	a.web.ServeHTTP(w, r)
}

func (a *App) serveSession(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		a.logger.Error("wayfind: websocket upgrade failed", "error", err)
		return
	}

	h := wshost.New(conn, wshost.WithLogger(a.logger))
	go func() {
		defer conn.Close()
		a.config.OnSession(h)
		if err := h.ReadLoop(); err != nil {
			a.logger.Error("wayfind: session ended", "error", err)
		}
	}()
}
