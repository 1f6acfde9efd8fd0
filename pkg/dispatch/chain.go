package dispatch

import "fmt"

// Chain execution phases, used for error context.
const (
	phaseMiddleware = "middleware"
	phaseBefore     = "before"
	phaseOn         = "on"
	phaseAfter      = "after"
	phaseNotFound   = "not-found"
)

// chainEntry is one callback in a built chain, tagged with its phase.
type chainEntry struct {
	fn    HandlerFunc
	phase string
}

// buildChain composes the full execution chain for one navigation:
// global middleware, then the route's before-handlers, the on-handler,
// and the after-handlers.
func buildChain(middleware []HandlerFunc, set HandlerSet) []chainEntry {
	chain := make([]chainEntry, 0, len(middleware)+len(set.Before)+1+len(set.After))
	for _, fn := range middleware {
		chain = append(chain, chainEntry{fn, phaseMiddleware})
	}
	for _, fn := range set.Before {
		chain = append(chain, chainEntry{fn, phaseBefore})
	}
	if set.On != nil {
		chain = append(chain, chainEntry{set.On, phaseOn})
	}
	for _, fn := range set.After {
		chain = append(chain, chainEntry{fn, phaseAfter})
	}
	return chain
}

// runChain runs a route's chain through the global middleware.
// It returns the first error that was routed to the error path, for
// observers only; errors never propagate to the navigation caller.
func (r *Router) runChain(set HandlerSet, ctx *Context) error {
	return r.exec(buildChain(r.middleware, set), ctx)
}

// runNotFound invokes the configured not-found handler directly, outside
// the middleware chain, with the same isolation rules.
func (r *Router) runNotFound(ctx *Context) error {
	return r.exec([]chainEntry{{r.notFound, phaseNotFound}}, ctx)
}

// exec invokes entries left to right. A Stop decision halts the chain; a
// failure halts it and is routed to the error path; a detached decision
// hands its channel to a background observer and the chain proceeds
// immediately. Nil entries are skipped.
func (r *Router) exec(entries []chainEntry, ctx *Context) error {
	for _, entry := range entries {
		if entry.fn == nil {
			continue
		}

		decision := safeInvoke(entry.fn, ctx)

		if decision.deferred != nil {
			r.observeDeferred(decision.deferred, entry.phase, ctx)
		}
		if decision.err != nil {
			err := &HandlerExecutionError{Phase: entry.phase, Pattern: ctx.Pattern, Err: decision.err}
			r.reportError(err, ctx)
			return err
		}
		if decision.signal == SignalStop {
			return nil
		}
	}
	return nil
}

// safeInvoke calls fn, converting a panic into a failing decision.
func safeInvoke(fn HandlerFunc, ctx *Context) (decision Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			if err, ok := rec.(error); ok {
				decision = Fail(fmt.Errorf("panic: %w", err))
			} else {
				decision = Fail(fmt.Errorf("panic: %v", rec))
			}
		}
	}()
	return fn(ctx)
}

// observeDeferred watches a detached completion channel. Only the
// failure outcome is observed; it is forwarded to the error path without
// affecting chain ordering or the completion of the dispatch that
// spawned it.
func (r *Router) observeDeferred(errc <-chan error, phase string, ctx *Context) {
	go func() {
		if err := <-errc; err != nil {
			r.reportError(&HandlerExecutionError{Phase: phase, Pattern: ctx.Pattern, Err: err}, ctx)
		}
	}()
}
