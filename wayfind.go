// Package wayfind provides the public API for the wayfind navigation
// framework.
//
// This is the recommended import for most applications:
//
//	import "github.com/wayfind-dev/wayfind"
//
// Usage:
//
//	app := wayfind.New(wayfind.Config{})
//	app.On("/users/{id}", wayfind.HandlerFunc(showUser))
//	app.Start()
package wayfind

import (
	"github.com/wayfind-dev/wayfind/pkg/dispatch"
	"github.com/wayfind-dev/wayfind/pkg/host"
)

// =============================================================================
// Dispatch types (re-export from pkg/dispatch)
// =============================================================================

// Context carries the resolved location through a handler chain.
type Context = dispatch.Context

// Decision is a handler's verdict on how the chain should proceed.
type Decision = dispatch.Decision

// HandlerFunc is a single route handler.
type HandlerFunc = dispatch.HandlerFunc

// HandlerSet groups before/on/after handlers for one route.
type HandlerSet = dispatch.HandlerSet

// HandlerInput is anything registrable as a route handler:
// a HandlerFunc or a HandlerSet.
type HandlerInput = dispatch.HandlerInput

// Router is the dispatching route table. Most applications use it
// through App, but it can be embedded directly.
type Router = dispatch.Router

// Group registers routes under a shared prefix with shared handlers.
type Group = dispatch.Group

// Match pairs a resolved route with its extracted parameters.
type Match = dispatch.Match

// RouteInfo describes one registered route.
type RouteInfo = dispatch.RouteInfo

// DispatchResult summarizes one dispatch for observers.
type DispatchResult = dispatch.DispatchResult

// Observer receives a DispatchResult after every dispatch.
type Observer = dispatch.Observer

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc = dispatch.ObserverFunc

// Continue lets the chain proceed to the next handler.
var Continue = dispatch.Continue

// Stop halts the chain without an error.
var Stop = dispatch.Stop

// Fail halts the chain and reports err through the error path.
var Fail = dispatch.Fail

// Detach lets the chain proceed while a background task reports its
// eventual error through the error path.
var Detach = dispatch.Detach

// =============================================================================
// Registration and navigation options
// =============================================================================

// RouteOption configures one route registration.
type RouteOption = dispatch.RouteOption

// WithName names a route for URL generation.
var WithName = dispatch.WithName

// WithPriority sets a route's scan priority. Higher values are tried first.
var WithPriority = dispatch.WithPriority

// NavigateOption configures programmatic navigation.
type NavigateOption = dispatch.NavigateOption

// WithReplace replaces the current history entry instead of pushing.
var WithReplace = dispatch.WithReplace

// WithParams adds query parameters to the navigation URL.
var WithParams = dispatch.WithParams

// =============================================================================
// Host types (re-export from pkg/host)
// =============================================================================

// Location is one point in the host's history.
type Location = host.Location

// Host abstracts the location/history provider the router dispatches
// against.
type Host = host.Host

// MemoryHost is an in-process Host, useful for tests and CLIs.
type MemoryHost = host.MemoryHost

// NewMemoryHost creates a MemoryHost starting at the given URL.
var NewMemoryHost = host.NewMemoryHost

// =============================================================================
// Errors (re-export from pkg/dispatch)
// =============================================================================

// ValidationError reports an invalid route registration.
type ValidationError = dispatch.ValidationError

// RouteNotFoundError reports URL generation against an unknown route name.
type RouteNotFoundError = dispatch.RouteNotFoundError

// HandlerExecutionError wraps an error returned by a handler, with the
// phase and pattern it happened in.
type HandlerExecutionError = dispatch.HandlerExecutionError
