package dispatch

// Signal tells the executor whether the chain proceeds past a handler.
// The zero value continues, so plain handlers can `return dispatch.Continue()`
// and short-circuiting ones `return dispatch.Stop()` — there is no magic
// boolean.
type Signal uint8

const (
	// SignalContinue lets the chain proceed to the next entry.
	SignalContinue Signal = iota

	// SignalStop halts the chain immediately without an error.
	SignalStop
)

// Decision is the result of one handler invocation. Build it with
// Continue, Stop, Fail, or Detach.
type Decision struct {
	signal   Signal
	err      error
	deferred <-chan error
}

// Continue lets the chain proceed.
func Continue() Decision {
	return Decision{signal: SignalContinue}
}

// Stop short-circuits the chain: no further entries run and no error is
// reported.
func Stop() Decision {
	return Decision{signal: SignalStop}
}

// Fail stops the chain and routes err to the error path. A nil err
// behaves like Stop.
func Fail(err error) Decision {
	return Decision{signal: SignalStop, err: err}
}

// Detach lets the chain proceed immediately while a background
// observation watches errc: a non-nil error received later is routed to
// the error path. The chain never waits for, and is never reordered by,
// the deferred outcome. Closing errc without a value means success.
func Detach(errc <-chan error) Decision {
	return Decision{signal: SignalContinue, deferred: errc}
}

// HandlerFunc is one navigation callback. It receives the immutable
// navigation context and decides whether the chain continues.
type HandlerFunc func(*Context) Decision

// handlerSet implements HandlerInput, normalizing a bare callback into a
// set with only the on-handler populated.
func (f HandlerFunc) handlerSet() HandlerSet {
	return HandlerSet{On: f}
}

// HandlerSet groups the callbacks bound to one route: before-handlers,
// the main on-handler, and after-handlers.
type HandlerSet struct {
	Before []HandlerFunc
	On     HandlerFunc
	After  []HandlerFunc
}

// handlerSet implements HandlerInput. Nil entries in the lists are
// dropped during normalization.
func (s HandlerSet) handlerSet() HandlerSet {
	return HandlerSet{
		Before: compactHandlers(s.Before),
		On:     s.On,
		After:  compactHandlers(s.After),
	}
}

// isZero reports whether the set carries no callbacks at all.
func (s HandlerSet) isZero() bool {
	return len(s.Before) == 0 && s.On == nil && len(s.After) == 0
}

// HandlerInput is what registration accepts: either a bare HandlerFunc
// or a full HandlerSet. It is normalized into a canonical HandlerSet
// once, at registration time.
type HandlerInput interface {
	handlerSet() HandlerSet
}

// mergeHandlerSets combines a group's handler set with a route's.
// Group before-handlers run first; group after-handlers run last, so
// outer-group cleanup wraps the route's own. The route's on-handler wins
// when both are present. The result shares no slices with its inputs.
func mergeHandlerSets(group, route HandlerSet) HandlerSet {
	merged := HandlerSet{
		Before: compactHandlers(append(append([]HandlerFunc{}, group.Before...), route.Before...)),
		After:  compactHandlers(append(append([]HandlerFunc{}, route.After...), group.After...)),
		On:     route.On,
	}
	if merged.On == nil {
		merged.On = group.On
	}
	return merged
}

// compactHandlers copies fns without its nil entries.
func compactHandlers(fns []HandlerFunc) []HandlerFunc {
	if len(fns) == 0 {
		return nil
	}
	out := make([]HandlerFunc, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
