package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/wayfind-dev/wayfind/pkg/host"
)

// trace builds handlers that record their label in order.
type trace struct {
	order []string
}

func (tr *trace) step(label string) HandlerFunc {
	return func(*Context) Decision {
		tr.order = append(tr.order, label)
		return Continue()
	}
}

func (tr *trace) stopAt(label string) HandlerFunc {
	return func(*Context) Decision {
		tr.order = append(tr.order, label)
		return Stop()
	}
}

func (tr *trace) failAt(label string, err error) HandlerFunc {
	return func(*Context) Decision {
		tr.order = append(tr.order, label)
		return Fail(err)
	}
}

func (tr *trace) expect(t *testing.T, want ...string) {
	t.Helper()
	if len(tr.order) != len(want) {
		t.Fatalf("order = %v, want %v", tr.order, want)
	}
	for i := range want {
		if tr.order[i] != want[i] {
			t.Fatalf("order = %v, want %v", tr.order, want)
		}
	}
}

func dispatchTo(r *Router, h *host.MemoryHost, path string) {
	h.Push(path)
	r.Dispatch()
}

func TestChainOrder(t *testing.T) {
	tr := &trace{}
	h := host.NewMemoryHost("/")
	r := New(WithHost(h))
	r.Use(tr.step("mw1"), tr.step("mw2"))
	r.On("/a", HandlerSet{
		Before: []HandlerFunc{tr.step("before1"), tr.step("before2")},
		On:     tr.step("on"),
		After:  []HandlerFunc{tr.step("after1"), tr.step("after2")},
	})

	dispatchTo(r, h, "/a")

	tr.expect(t, "mw1", "mw2", "before1", "before2", "on", "after1", "after2")
}

func TestStopShortCircuits(t *testing.T) {
	t.Run("in middleware", func(t *testing.T) {
		tr := &trace{}
		h := host.NewMemoryHost("/")
		r := New(WithHost(h))
		r.Use(tr.stopAt("mw"))
		r.On("/a", HandlerSet{
			Before: []HandlerFunc{tr.step("before")},
			On:     tr.step("on"),
			After:  []HandlerFunc{tr.step("after")},
		})

		dispatchTo(r, h, "/a")
		tr.expect(t, "mw")
	})

	t.Run("in before", func(t *testing.T) {
		tr := &trace{}
		h := host.NewMemoryHost("/")
		r := New(WithHost(h))
		r.On("/a", HandlerSet{
			Before: []HandlerFunc{tr.stopAt("before1"), tr.step("before2")},
			On:     tr.step("on"),
			After:  []HandlerFunc{tr.step("after")},
		})

		dispatchTo(r, h, "/a")
		tr.expect(t, "before1")
	})

	t.Run("in on", func(t *testing.T) {
		tr := &trace{}
		h := host.NewMemoryHost("/")
		r := New(WithHost(h))
		r.On("/a", HandlerSet{
			On:    tr.stopAt("on"),
			After: []HandlerFunc{tr.step("after")},
		})

		dispatchTo(r, h, "/a")
		tr.expect(t, "on")
	})
}

func TestFailStopsAndReports(t *testing.T) {
	boom := errors.New("boom")
	tr := &trace{}
	h := host.NewMemoryHost("/")

	var reported error
	var reportedCtx *Context
	reports := 0
	r := New(WithHost(h), WithErrorHandler(func(err error, ctx *Context) {
		reported = err
		reportedCtx = ctx
		reports++
	}))
	r.On("/a", HandlerSet{
		Before: []HandlerFunc{tr.failAt("before", boom)},
		On:     tr.step("on"),
		After:  []HandlerFunc{tr.step("after")},
	})

	dispatchTo(r, h, "/a")

	tr.expect(t, "before")
	if reports != 1 {
		t.Fatalf("error callback fired %d times, want exactly 1", reports)
	}
	var execErr *HandlerExecutionError
	if !errors.As(reported, &execErr) {
		t.Fatalf("reported = %v, want *HandlerExecutionError", reported)
	}
	if execErr.Phase != "before" || execErr.Pattern != "/a" {
		t.Errorf("Phase = %q, Pattern = %q", execErr.Phase, execErr.Pattern)
	}
	if !errors.Is(reported, boom) {
		t.Error("wrapped error lost the cause")
	}
	if reportedCtx == nil || reportedCtx.Path != "/a" {
		t.Errorf("error context = %+v", reportedCtx)
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	h := host.NewMemoryHost("/")
	var reported error
	r := New(WithHost(h), WithErrorHandler(func(err error, _ *Context) {
		reported = err
	}))
	r.On("/a", HandlerFunc(func(*Context) Decision {
		panic("kaboom")
	}))

	dispatchTo(r, h, "/a") // must not panic through

	if reported == nil {
		t.Fatal("panic was not routed to the error path")
	}
}

func TestPanicWithErrorKeepsChain(t *testing.T) {
	sentinel := errors.New("sentinel")
	h := host.NewMemoryHost("/")
	var reported error
	r := New(WithHost(h), WithErrorHandler(func(err error, _ *Context) {
		reported = err
	}))
	r.On("/a", HandlerFunc(func(*Context) Decision {
		panic(sentinel)
	}))

	dispatchTo(r, h, "/a")

	if !errors.Is(reported, sentinel) {
		t.Fatalf("reported = %v, want a chain containing the panicked error", reported)
	}
}

func TestErrorHandlerPanicIsContained(t *testing.T) {
	h := host.NewMemoryHost("/")
	r := New(WithHost(h), WithErrorHandler(func(error, *Context) {
		panic("error handler fault")
	}))
	r.On("/a", HandlerFunc(func(*Context) Decision {
		return Fail(errors.New("boom"))
	}))

	dispatchTo(r, h, "/a") // must not panic through
}

func TestDetachDoesNotBlockChain(t *testing.T) {
	tr := &trace{}
	h := host.NewMemoryHost("/")

	reported := make(chan error, 1)
	r := New(WithHost(h), WithErrorHandler(func(err error, _ *Context) {
		reported <- err
	}))

	errc := make(chan error, 1)
	r.On("/a", HandlerSet{
		Before: []HandlerFunc{func(ctx *Context) Decision {
			tr.order = append(tr.order, "detach")
			return Detach(errc)
		}},
		On: tr.step("on"),
	})

	dispatchTo(r, h, "/a")
	tr.expect(t, "detach", "on")

	// The deferred failure surfaces later, through the error path.
	errc <- errors.New("background boom")
	select {
	case err := <-reported:
		var execErr *HandlerExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("reported = %v, want *HandlerExecutionError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("deferred error never reached the error path")
	}
}

func TestDetachSuccessIsSilent(t *testing.T) {
	h := host.NewMemoryHost("/")
	reported := make(chan error, 1)
	r := New(WithHost(h), WithErrorHandler(func(err error, _ *Context) {
		reported <- err
	}))

	errc := make(chan error)
	r.On("/a", HandlerFunc(func(*Context) Decision {
		return Detach(errc)
	}))

	dispatchTo(r, h, "/a")
	close(errc) // completion without error

	select {
	case err := <-reported:
		t.Fatalf("successful detachment reported %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestGroupMergesHandlers(t *testing.T) {
	tr := &trace{}
	h := host.NewMemoryHost("/")
	r := New(WithHost(h))

	admin := r.Group("/admin", HandlerSet{
		Before: []HandlerFunc{tr.step("group-before")},
		After:  []HandlerFunc{tr.step("group-after")},
	})
	admin.On("/users", HandlerSet{
		Before: []HandlerFunc{tr.step("route-before")},
		On:     tr.step("on"),
		After:  []HandlerFunc{tr.step("route-after")},
	})

	dispatchTo(r, h, "/admin/users")

	// Group before-handlers wrap the route's own; group cleanup runs last.
	tr.expect(t, "group-before", "route-before", "on", "route-after", "group-after")
}

func TestNestedGroups(t *testing.T) {
	tr := &trace{}
	h := host.NewMemoryHost("/")
	r := New(WithHost(h))

	api := r.Group("/api", HandlerSet{Before: []HandlerFunc{tr.step("api")}})
	v2 := api.Group("/v2", HandlerSet{Before: []HandlerFunc{tr.step("v2")}})
	v2.On("/users/{id}", HandlerFunc(func(ctx *Context) Decision {
		tr.order = append(tr.order, "on:"+ctx.Param("id"))
		return Continue()
	}))

	dispatchTo(r, h, "/api/v2/users/7")

	tr.expect(t, "api", "v2", "on:7")
}

func TestGroupOnUsesGroupHandlerWhenRouteHasNone(t *testing.T) {
	tr := &trace{}
	h := host.NewMemoryHost("/")
	r := New(WithHost(h))

	pages := r.Group("/pages", HandlerFunc(tr.step("group-on")))
	pages.On("/about", HandlerSet{Before: []HandlerFunc{tr.step("before")}})

	dispatchTo(r, h, "/pages/about")

	tr.expect(t, "before", "group-on")
}
