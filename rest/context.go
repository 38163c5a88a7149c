// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"github.com/z5labs/strata/route"
	"github.com/z5labs/strata/schema"
)

// Context is the immutable per-request view of the resolved
// configuration. It is built once per request and passed explicitly down
// the pipeline's call chain; nothing in it outlives the request.
type Context struct {
	Route      *route.Route
	Provider   *schema.Provider
	Collection *schema.Collection
	Endpoint   *schema.Endpoint

	// Action is the canonical action the route was synthesized for.
	Action string

	// Search marks a provider level search request.
	Search bool
}

// resolveContext maps a matched route name back to its (provider,
// collection, action) triple by re-deriving candidate names for every
// known collection/action pair and comparing. Matching is exact on route
// name, never on path re-parsing, so overlapping path templates cannot
// produce an ambiguous result. The table is small and static, so the
// linear scan is not cached.
func resolveContext(tree *schema.Tree, table *route.Table, name string) (Context, bool) {
	rt, ok := table.Lookup(name)
	if !ok {
		return Context{}, false
	}

	for _, p := range tree.Providers {
		if !*p.Enabled {
			continue
		}

		if *p.Search.Enabled && route.Name(p, "search", "search") == name {
			return Context{
				Route:    rt,
				Provider: p,
				Action:   "search",
				Search:   true,
			}, true
		}

		for _, c := range p.Collections {
			for _, e := range c.Endpoints {
				if e.Route.Handler == nil {
					continue
				}
				action := actionOf(*e.Route.Handler)
				if route.Name(p, c.Name, action) != name {
					continue
				}
				return Context{
					Route:      rt,
					Provider:   p,
					Collection: c,
					Endpoint:   e,
					Action:     action,
				}, true
			}
		}
	}
	return Context{}, false
}

func actionOf(h schema.Handler) string {
	switch h {
	case schema.ListHandler:
		return "index"
	case schema.ReadHandler:
		return "read"
	case schema.CreateHandler:
		return "create"
	case schema.UpdateHandler:
		return "update"
	case schema.DeleteHandler:
		return "delete"
	default:
		return string(h)
	}
}
