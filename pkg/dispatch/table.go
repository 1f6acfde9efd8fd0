package dispatch

import (
	"sort"

	"github.com/wayfind-dev/wayfind/pkg/pattern"
)

// Route is one registered route: a compiled pattern bound to a handler
// set, a priority, and an optional name. Routes are immutable once
// registered and owned exclusively by the table.
type Route struct {
	pattern  string
	matcher  *pattern.Matcher
	handlers HandlerSet
	priority int
	name     string
	seq      int
}

// Pattern returns the source path pattern.
func (r *Route) Pattern() string { return r.pattern }

// Name returns the route's symbolic name, empty if unnamed.
func (r *Route) Name() string { return r.name }

// Priority returns the route's scan priority.
func (r *Route) Priority() int { return r.priority }

// RouteInfo is the introspection view of a registered route.
type RouteInfo struct {
	Pattern  string `json:"pattern"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// routeTable is the ordered route collection. Scan order is a strict
// total order: priority descending, then insertion order.
type routeTable struct {
	routes  []*Route
	named   map[string]*Route
	nextSeq int
}

func newRouteTable() *routeTable {
	return &routeTable{named: map[string]*Route{}}
}

// add compiles pat, appends the route, and restores scan order.
func (t *routeTable) add(pat string, set HandlerSet, name string, priority int, caseSensitive bool) (*Route, error) {
	matcher, err := pattern.Compile(pat, caseSensitive)
	if err != nil {
		return nil, err
	}

	route := &Route{
		pattern:  pat,
		matcher:  matcher,
		handlers: set,
		priority: priority,
		name:     name,
		seq:      t.nextSeq,
	}
	t.nextSeq++
	t.routes = append(t.routes, route)

	sort.SliceStable(t.routes, func(i, j int) bool {
		if t.routes[i].priority != t.routes[j].priority {
			return t.routes[i].priority > t.routes[j].priority
		}
		return t.routes[i].seq < t.routes[j].seq
	})

	if name != "" {
		// Re-registering a name overwrites the mapping; the old route
		// stays in the scan list.
		t.named[name] = route
	}
	return route, nil
}

// resolve scans routes in table order and returns the first match along
// with its extracted parameters.
func (t *routeTable) resolve(path string) (*Route, map[string]string, bool) {
	for _, route := range t.routes {
		if params, ok := route.matcher.Match(path); ok {
			return route, params, true
		}
	}
	return nil, nil, false
}

// byName looks up a named route.
func (t *routeTable) byName(name string) (*Route, bool) {
	route, ok := t.named[name]
	return route, ok
}

// infos returns the table in scan order.
func (t *routeTable) infos() []RouteInfo {
	out := make([]RouteInfo, len(t.routes))
	for i, route := range t.routes {
		out[i] = RouteInfo{Pattern: route.pattern, Name: route.name, Priority: route.priority}
	}
	return out
}

// reset drops every route and name mapping.
func (t *routeTable) reset() {
	t.routes = nil
	t.named = map[string]*Route{}
}
