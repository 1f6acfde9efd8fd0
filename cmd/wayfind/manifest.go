package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

// manifest is the on-disk description of a route table.
//
//	{
//	  "caseSensitive": false,
//	  "routes": [
//	    {"pattern": "/users/{id}", "name": "user", "priority": 5}
//	  ]
//	}
type manifest struct {
	CaseSensitive bool            `json:"caseSensitive"`
	Routes        []manifestRoute `json:"routes"`
}

type manifestRoute struct {
	Pattern  string `json:"pattern"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// loadRouter reads a manifest file and builds a router from it, with
// inert handlers. Registration problems surface as errors rather than
// panics so the CLI can report them cleanly.
func loadRouter(path string) (r *dispatch.Router, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("reading manifest: %w", readErr)
	}

	var m manifest
	if jsonErr := json.Unmarshal(data, &m); jsonErr != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, jsonErr)
	}
	if len(m.Routes) == 0 {
		return nil, fmt.Errorf("manifest %s declares no routes", path)
	}

	defer func() {
		if rec := recover(); rec != nil {
			if verr, ok := rec.(*dispatch.ValidationError); ok {
				r, err = nil, verr
				return
			}
			panic(rec)
		}
	}()

	var ropts []dispatch.Option
	if m.CaseSensitive {
		ropts = append(ropts, dispatch.WithCaseSensitive())
	}
	router := dispatch.New(ropts...)
	noop := dispatch.HandlerFunc(func(*dispatch.Context) dispatch.Decision {
		return dispatch.Stop()
	})
	for _, route := range m.Routes {
		var opts []dispatch.RouteOption
		if route.Name != "" {
			opts = append(opts, dispatch.WithName(route.Name))
		}
		if route.Priority != 0 {
			opts = append(opts, dispatch.WithPriority(route.Priority))
		}
		router.On(route.Pattern, noop, opts...)
	}
	return router, nil
}
