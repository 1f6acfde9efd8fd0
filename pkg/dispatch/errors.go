package dispatch

import "fmt"

// ValidationError reports bad registration input: an empty pattern, a
// missing handler set, a nil middleware, or a pattern that fails to
// compile. Registration mistakes are programmer errors, so the router
// panics with a *ValidationError instead of returning it.
type ValidationError struct {
	Pattern string // offending pattern, empty if not pattern-specific
	Reason  string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("dispatch: invalid registration: %s", e.Reason)
	}
	return fmt.Sprintf("dispatch: invalid registration for %q: %s", e.Pattern, e.Reason)
}

// RouteNotFoundError is returned by URL generation against a name that
// was never registered.
type RouteNotFoundError struct {
	Name string
}

// Error returns the error message.
func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("dispatch: no route named %q", e.Name)
}

// HandlerExecutionError wraps a failure raised by a chain entry, the
// not-found handler, or a detached handler observation. It is recovered
// locally: the error is reported through the router's error path and
// never propagates out of a dispatch.
type HandlerExecutionError struct {
	Phase   string // "middleware", "before", "on", "after", "not-found"
	Pattern string // matched pattern, empty when unmatched
	Err     error
}

// Error returns the error message.
func (e *HandlerExecutionError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("dispatch: %s handler: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("dispatch: %s handler for %q: %v", e.Phase, e.Pattern, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}
