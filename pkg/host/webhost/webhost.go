// Package webhost is the HTTP front door for a single-page host: it
// serves the application shell for any path the router resolves
// (history-API fallback), exposes the route table for tooling, and
// serves Prometheus metrics. It reads the router's table only; the
// dispatching itself happens in the page, typically over wshost.
package webhost

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

// defaultShell is served when no shell handler is configured, so a
// freshly wired server shows something instead of an empty 200.
const defaultShell = `<!doctype html>
<html><head><title>wayfind</title></head>
<body><div id="app"></div></body></html>
`

// Config configures the HTTP host.
type Config struct {
	// Shell serves the single-page application shell for matched paths.
	// Default: a minimal placeholder page.
	Shell http.Handler

	// Metrics serves the metrics endpoint. Default: promhttp.Handler().
	Metrics http.Handler

	// Logger is the diagnostic logger. Default: slog.Default().
	Logger *slog.Logger
}

// Option configures the HTTP host.
type Option func(*Config)

// WithShell sets the handler serving the application shell.
func WithShell(shell http.Handler) Option {
	return func(c *Config) { c.Shell = shell }
}

// WithMetricsHandler sets the metrics endpoint handler.
func WithMetricsHandler(metrics http.Handler) Option {
	return func(c *Config) { c.Metrics = metrics }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// New builds the http.Handler for a router.
//
// Endpoints:
//
//	GET /wayfind/routes  route table as JSON, in scan order
//	GET /metrics         Prometheus metrics
//	GET /*               shell if the router resolves the path, else 404
func New(router *dispatch.Router, opts ...Option) http.Handler {
	config := Config{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Shell == nil {
		config.Shell = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(defaultShell))
		})
	}
	if config.Metrics == nil {
		config.Metrics = promhttp.Handler()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)

	mux.Get("/wayfind/routes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(router.Routes()); err != nil {
			config.Logger.Error("webhost: encoding route table", "error", err)
		}
	})

	mux.Handle("/metrics", config.Metrics)

	mux.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := router.Resolve(r.URL.Path); !ok {
			http.NotFound(w, r)
			return
		}
		config.Shell.ServeHTTP(w, r)
	})

	return mux
}
