package dispatch

import "time"

// DispatchResult summarizes one completed dispatch for observers.
type DispatchResult struct {
	// Path is the canonical location path that was dispatched.
	Path string

	// Pattern is the matched route pattern, empty when unmatched.
	Pattern string

	// Matched reports whether any route accepted the path.
	Matched bool

	// CacheHit reports whether the resolution was served from the
	// result cache instead of a table scan.
	CacheHit bool

	// Duration is the wall time of the full dispatch, chain included.
	Duration time.Duration

	// Err is the first handler failure routed to the error path during
	// this dispatch, nil if none. Handler failures never propagate to
	// the navigation caller; this is the observer's view of them.
	Err error
}

// Observer receives a DispatchResult after every dispatch. Telemetry
// integrations implement this; the core stays dependency-free.
type Observer interface {
	ObserveDispatch(DispatchResult)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(DispatchResult)

// ObserveDispatch implements Observer.
func (f ObserverFunc) ObserveDispatch(result DispatchResult) { f(result) }
