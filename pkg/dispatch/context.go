package dispatch

import (
	"net/url"

	"github.com/wayfind-dev/wayfind/pkg/host"
	"github.com/wayfind-dev/wayfind/pkg/routepath"
)

// Context is the value handed to every handler of one navigation
// resolution. It is built once per resolution (or reused verbatim on a
// cache hit) and treated as immutable; handlers must not modify it.
type Context struct {
	// Path is the canonical location path that was resolved.
	Path string

	// Pattern is the matched route pattern, empty when no route matched.
	Pattern string

	// Params holds the decoded route parameters. Optional parameters
	// absent from the path are absent from the map.
	Params map[string]string

	// Query holds the decoded query mapping of the location.
	Query url.Values

	// Fragment is the location fragment without the leading "#".
	Fragment string

	// State is the opaque history-state payload the host carried for
	// this location, if any.
	State any

	router *Router
}

// Router returns the router that produced this context, for advanced
// handlers that navigate or generate URLs from inside the chain.
func (c *Context) Router() *Router { return c.router }

// Matched reports whether a route matched this navigation.
func (c *Context) Matched() bool { return c.Pattern != "" }

// Param returns one route parameter, or "" if absent.
func (c *Context) Param(name string) string { return c.Params[name] }

// newContext assembles the navigation context for a resolved location.
func (r *Router) newContext(res routepath.Result, loc host.Location, pat string, params map[string]string) *Context {
	if params == nil {
		params = map[string]string{}
	}
	query, _ := url.ParseQuery(res.Query)
	return &Context{
		Path:     res.Path,
		Pattern:  pat,
		Params:   params,
		Query:    query,
		Fragment: res.Fragment,
		State:    loc.State,
		router:   r,
	}
}
