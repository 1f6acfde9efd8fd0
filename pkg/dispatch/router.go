// Package dispatch implements the client-side route dispatcher: an
// ordered route table compiled from path patterns, a per-location result
// cache, and a layered handler chain (middleware, before, on, after)
// with short-circuit and error-isolation semantics.
//
// A Router owns all mutable state explicitly; there are no package-level
// registries, so independent routers coexist and tear down cleanly.
// Router state is owned by a single goroutine: registration happens
// during setup, dispatches run synchronously to completion on the
// host's callback goroutine. The only goroutines the dispatcher spawns
// are detached error observations, which touch nothing but the error
// path.
package dispatch

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/wayfind-dev/wayfind/pkg/host"
	"github.com/wayfind-dev/wayfind/pkg/pattern"
	"github.com/wayfind-dev/wayfind/pkg/routepath"
)

// Router resolves locations against its route table and runs the
// matching handler chain. Create one with New.
type Router struct {
	table      *routeTable
	cache      *resultCache
	middleware []HandlerFunc

	host     host.Host
	logger   *slog.Logger
	errFn    func(error, *Context)
	notFound HandlerFunc

	observers     []Observer
	caseSensitive bool

	// resolvedOnce arms the stale-cache guard: once any resolution has
	// happened, later registrations clear the cache.
	resolvedOnce bool

	stopListen func()
}

// Option configures a Router.
type Option func(*Router)

// WithHost sets the location host. Defaults to an in-memory host rooted
// at "/".
func WithHost(h host.Host) Option {
	return func(r *Router) { r.host = h }
}

// WithLogger sets the diagnostic logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithCaseSensitive makes pattern matching case-sensitive.
// Matching is case-insensitive by default.
func WithCaseSensitive() Option {
	return func(r *Router) { r.caseSensitive = true }
}

// WithErrorHandler sets a callback invoked with every handler failure
// and its navigation context. A panic inside the callback is contained
// and logged; it never reaches the navigation caller.
func WithErrorHandler(fn func(error, *Context)) Option {
	return func(r *Router) { r.errFn = fn }
}

// WithNotFound sets the handler invoked when no route matches. It runs
// directly, outside the middleware chain.
func WithNotFound(fn HandlerFunc) Option {
	return func(r *Router) { r.notFound = fn }
}

// WithObserver attaches dispatch observers (telemetry, tests).
func WithObserver(observers ...Observer) Option {
	return func(r *Router) { r.observers = append(r.observers, observers...) }
}

// New creates a Router.
func New(opts ...Option) *Router {
	r := &Router{
		table:  newRouteTable(),
		cache:  newResultCache(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.host == nil {
		r.host = host.NewMemoryHost("/")
	}
	return r
}

// RouteOption configures one registration.
type RouteOption func(*routeOptions)

type routeOptions struct {
	name     string
	priority int
}

// WithName names the route for URL generation. Re-registering a name
// repoints it; the previously named route stays in the scan list.
func WithName(name string) RouteOption {
	return func(o *routeOptions) { o.name = name }
}

// WithPriority sets the scan priority (default 0). Higher priorities are
// scanned first; ties keep registration order.
func WithPriority(priority int) RouteOption {
	return func(o *routeOptions) { o.priority = priority }
}

// Use appends global middleware, run before every route's handlers.
// Panics with *ValidationError on a nil middleware.
func (r *Router) Use(middleware ...HandlerFunc) *Router {
	for _, fn := range middleware {
		if fn == nil {
			panic(&ValidationError{Reason: "nil middleware"})
		}
	}
	r.middleware = append(r.middleware, middleware...)
	return r
}

// On registers a route. handlers may be a bare HandlerFunc or a full
// HandlerSet. Panics with *ValidationError on an empty pattern, a
// missing handler set, or a pattern that does not compile.
func (r *Router) On(pat string, handlers HandlerInput, opts ...RouteOption) *Router {
	var set HandlerSet
	if handlers != nil {
		set = handlers.handlerSet()
	}
	r.register(pat, set, opts)
	return r
}

// register is the single registration path for On and groups.
func (r *Router) register(pat string, set HandlerSet, opts []RouteOption) *Route {
	if pat == "" {
		panic(&ValidationError{Reason: "empty pattern"})
	}
	if set.isZero() {
		panic(&ValidationError{Pattern: pat, Reason: "missing handlers"})
	}

	var options routeOptions
	for _, opt := range opts {
		opt(&options)
	}

	route, err := r.table.add(pat, set, options.name, options.priority, r.caseSensitive)
	if err != nil {
		panic(&ValidationError{Pattern: pat, Reason: err.Error()})
	}

	// Registering after resolutions have happened would leave stale
	// entries behind; drop them all.
	if r.resolvedOnce {
		r.cache.clear()
	}
	return route
}

// Group returns a scoped registrar: routes registered through it get the
// prefix prepended and the group's handlers merged in. Group
// before-handlers run before the route's own; group after-handlers run
// after, so outer cleanup runs last.
func (r *Router) Group(prefix string, handlers HandlerInput) *Group {
	var set HandlerSet
	if handlers != nil {
		set = handlers.handlerSet()
	}
	return &Group{router: r, prefix: prefix, handlers: set}
}

// Group is a scoped registrar produced by Router.Group.
type Group struct {
	router   *Router
	prefix   string
	handlers HandlerSet
}

// On registers prefix+pat with the group's handlers merged around the
// route's own.
func (g *Group) On(pat string, handlers HandlerInput, opts ...RouteOption) *Group {
	var set HandlerSet
	if handlers != nil {
		set = handlers.handlerSet()
	}
	g.router.register(g.prefix+pat, mergeHandlerSets(g.handlers, set), opts)
	return g
}

// Group nests a sub-group, concatenating prefixes and merging handler
// sets outer-first.
func (g *Group) Group(prefix string, handlers HandlerInput) *Group {
	var set HandlerSet
	if handlers != nil {
		set = handlers.handlerSet()
	}
	return &Group{
		router:   g.router,
		prefix:   g.prefix + prefix,
		handlers: mergeHandlerSets(g.handlers, set),
	}
}

// Match is the result of resolving a path against the table.
type Match struct {
	Route  *Route
	Params map[string]string
}

// Resolve canonicalizes path, scans the table, and returns the first
// matching route with its extracted parameters. It does not run
// handlers and does not consult or populate the cache; with
// registration finished it is a pure read, safe to call from HTTP
// front-ends while the dispatch goroutine runs.
func (r *Router) Resolve(path string) (*Match, bool) {
	res, err := routepath.Canonicalize(path)
	if err != nil {
		return nil, false
	}
	route, params, ok := r.table.resolve(res.Path)
	if !ok {
		return nil, false
	}
	return &Match{Route: route, Params: params}, true
}

// Dispatch resolves the host's current location and runs the matching
// chain. Handler failures are contained; Dispatch never panics or
// returns them.
func (r *Router) Dispatch() {
	r.dispatchLocation(r.host.Location())
}

// Listen subscribes the router to the host's location-change signal so
// external traversal (back/forward, intercepted links) dispatches
// automatically. The returned function unsubscribes; Destroy also does.
func (r *Router) Listen() (stop func()) {
	if r.stopListen == nil {
		r.stopListen = r.host.Listen(func(loc host.Location) {
			r.dispatchLocation(loc)
		})
	}
	return r.stopListen
}

// NavigateOptions configures programmatic navigation.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Params are query parameters merged into the target URL.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) { o.Replace = true }
}

// WithParams merges query parameters into the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) { o.Params = params }
}

// Navigate validates and canonicalizes the target, records it on the
// host (push, or replace with WithReplace), and dispatches it.
//
// The returned error covers invalid targets only — absolute URLs,
// malformed escapes, paths escaping root. Handler failures during the
// dispatch are contained and reported through the error path.
func (r *Router) Navigate(path string, opts ...NavigateOption) error {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.Params != nil {
		u, err := url.Parse(path)
		if err != nil {
			return fmt.Errorf("dispatch: invalid navigation target %q: %w", path, err)
		}
		q := u.Query()
		for k, v := range options.Params {
			q.Set(k, fmt.Sprintf("%v", v))
		}
		u.RawQuery = q.Encode()
		path = u.String()
	}

	target, err := routepath.ValidateNavPath(path)
	if err != nil {
		return err
	}

	if options.Replace {
		r.host.Replace(target)
	} else {
		r.host.Push(target)
	}
	r.dispatchLocation(r.host.Location())
	return nil
}

// URLFor generates a URL for a named route. Placeholders present in
// params are substituted with their percent-encoded values; unresolved
// optional placeholders are stripped. Returns *RouteNotFoundError for an
// unknown name.
func (r *Router) URLFor(name string, params map[string]string, query url.Values, fragment string) (string, error) {
	route, ok := r.table.byName(name)
	if !ok {
		return "", &RouteNotFoundError{Name: name}
	}

	expanded := pattern.Expand(route.pattern, params)
	res, err := routepath.Canonicalize(expanded)
	if err != nil {
		return "", fmt.Errorf("dispatch: url for %q: %w", name, err)
	}

	out := res.Path
	if len(query) > 0 {
		out += "?" + query.Encode()
	}
	if fragment != "" {
		out += "#" + fragment
	}
	return out, nil
}

// Routes returns the registered routes in scan order.
func (r *Router) Routes() []RouteInfo {
	return r.table.infos()
}

// ClearCache drops every memoized resolution. Call it after mutating
// route state through any path the router cannot see itself.
func (r *Router) ClearCache() {
	r.cache.clear()
}

// Destroy stops listening and drops all routes, names, middleware, and
// cached resolutions. The router is reusable afterwards but empty.
func (r *Router) Destroy() {
	if r.stopListen != nil {
		r.stopListen()
		r.stopListen = nil
	}
	r.table.reset()
	r.cache.clear()
	r.middleware = nil
	r.resolvedOnce = false
}

// dispatchLocation is the single dispatch path: canonicalize, consult
// the cache, otherwise scan the table and build a fresh context, then
// run the chain and notify observers.
func (r *Router) dispatchLocation(loc host.Location) {
	start := time.Now()

	res, err := routepath.Canonicalize(loc.String())
	if err != nil {
		r.logger.Error("wayfind: rejected location", "location", loc.String(), "error", err)
		r.observe(DispatchResult{Path: loc.Path, Duration: time.Since(start), Err: err})
		return
	}

	key := res.Key()
	if entry, ok := r.cache.get(key); ok {
		// Distinct history entries can share a location verbatim while
		// carrying different state payloads; a fresh resolution would
		// read the current one, so the hit must too.
		ctx := *entry.ctx
		ctx.State = loc.State
		execErr := r.runChain(entry.set, &ctx)
		r.observe(DispatchResult{
			Path:     res.Path,
			Pattern:  entry.ctx.Pattern,
			Matched:  true,
			CacheHit: true,
			Duration: time.Since(start),
			Err:      execErr,
		})
		return
	}

	r.resolvedOnce = true
	route, params, ok := r.table.resolve(res.Path)
	if !ok {
		ctx := r.newContext(res, loc, "", nil)
		var execErr error
		if r.notFound != nil {
			execErr = r.runNotFound(ctx)
		}
		r.observe(DispatchResult{Path: res.Path, Duration: time.Since(start), Err: execErr})
		return
	}

	ctx := r.newContext(res, loc, route.pattern, params)
	r.cache.put(key, cacheEntry{set: route.handlers, ctx: ctx})

	execErr := r.runChain(route.handlers, ctx)
	r.observe(DispatchResult{
		Path:     res.Path,
		Pattern:  route.pattern,
		Matched:  true,
		Duration: time.Since(start),
		Err:      execErr,
	})
}

// reportError is the error path: always log, then hand the failure to
// the user callback if one is configured. A panic inside the callback is
// contained here so an error-handler fault can never take down the
// navigation caller.
func (r *Router) reportError(err error, ctx *Context) {
	r.logger.Error("wayfind: handler failed", "path", ctx.Path, "pattern", ctx.Pattern, "error", err)

	if r.errFn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("wayfind: error handler panicked", "path", ctx.Path, "panic", rec)
		}
	}()
	r.errFn(err, ctx)
}

func (r *Router) observe(result DispatchResult) {
	for _, o := range r.observers {
		o.ObserveDispatch(result)
	}
}
