// Package host defines the collaborator interface between the dispatcher
// and whatever owns the real location state (a browser bridge, a test
// harness, an embedded shell). The dispatcher only ever reads the current
// location, writes new locations, and subscribes to change signals; it
// never touches history storage directly.
package host

import (
	"net/url"
	"strings"
)

// Location is one entry of navigation state.
type Location struct {
	// Path is the location path ("/users/42").
	Path string

	// RawQuery is the query string without the leading "?".
	RawQuery string

	// Fragment is the fragment without the leading "#".
	Fragment string

	// State is the opaque history-state payload associated with this
	// entry, if the host carries one.
	State any
}

// Query parses RawQuery into url.Values. A malformed query yields the
// pairs that did parse, matching net/url behavior for lenient readers.
func (l Location) Query() url.Values {
	values, _ := url.ParseQuery(l.RawQuery)
	return values
}

// String renders the location as path[?query][#fragment].
func (l Location) String() string {
	out := l.Path
	if l.RawQuery != "" {
		out += "?" + l.RawQuery
	}
	if l.Fragment != "" {
		out += "#" + l.Fragment
	}
	return out
}

// Parse splits a location string into a Location with no state payload.
func Parse(raw string) Location {
	rest, fragment, _ := strings.Cut(raw, "#")
	path, query, _ := strings.Cut(rest, "?")
	return Location{Path: path, RawQuery: query, Fragment: fragment}
}

// Host is the dispatcher's view of the environment owning location state.
//
// Implementations deliver Listen callbacks on a single goroutine; the
// dispatcher is driven entirely from that goroutine.
type Host interface {
	// Location returns the current location.
	Location() Location

	// Push records url as a new history entry and makes it current.
	// It does not emit a change signal; programmatic navigation
	// dispatches explicitly.
	Push(url string)

	// Replace overwrites the current history entry with url.
	Replace(url string)

	// Listen registers a callback for externally triggered location
	// changes (back/forward traversal, link interception). The returned
	// function unregisters it.
	Listen(fn func(Location)) (stop func())
}
