// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package route derives the full route table of a resolved [schema.Tree].
//
// One route is synthesized per (provider, collection, action) reachable
// through the collection's privileges. Route names are deterministic,
// built from the provider's configurable name pattern, and routes whose
// computed names collide are merged by unioning their method sets instead
// of being duplicated.
package route

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/z5labs/strata/resolve"
	"github.com/z5labs/strata/schema"
)

// IDPattern is the chi URL parameter constraint for resource
// identifiers: a digit sequence or a word-character/hyphen token.
const IDPattern = "[0-9A-Za-z_-]+"

// Route is one synthesized entry of the route table.
type Route struct {
	Name    string
	Methods []string
	Pattern string

	Action   string
	Handler  schema.Handler
	Provider *schema.Provider

	// Collection is nil for provider level routes such as search.
	Collection *schema.Collection
	Endpoint   *schema.Endpoint
}

// Allows reports whether the route accepts the given HTTP method.
func (r *Route) Allows(method string) bool {
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Table is the synthesized route table of one resolved tree.
type Table struct {
	routes []*Route
	byName map[string]*Route
}

// Routes returns the table entries in synthesis order.
func (t *Table) Routes() []*Route {
	return t.routes
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (*Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Name expands a provider's route name pattern for a collection/action pair.
func Name(p *schema.Provider, collection, action string) string {
	return strings.NewReplacer(
		"{provider}", p.Name,
		"{collection}", collection,
		"{action}", action,
	).Replace(*p.Router.NamePattern)
}

// VersionSegment returns the URL segment identifying a provider's
// version, e.g. "v1". It is empty unless the provider carries its
// version in the path.
func VersionSegment(p *schema.Provider) string {
	if p.Version.Location != schema.VersionInPath {
		return ""
	}
	return *p.Version.Prefix + strconv.Itoa(*p.Version.Number)
}

// BasePath joins a provider's router prefix with its version segment.
func BasePath(p *schema.Provider) string {
	base := *p.Router.Prefix
	seg := VersionSegment(p)
	if seg == "" {
		return base
	}
	if base == "/" {
		return "/" + seg
	}
	return base + "/" + seg
}

// Synthesize builds the route table for every enabled provider in a
// resolved tree.
func Synthesize(t *schema.Tree) *Table {
	table := &Table{
		byName: make(map[string]*Route),
	}

	for _, p := range t.Providers {
		if !*p.Enabled {
			continue
		}

		for _, c := range p.Collections {
			synthesizeCollection(table, p, c)
		}

		if *p.Search.Enabled {
			table.add(&Route{
				Name:     Name(p, "search", "search"),
				Methods:  []string{http.MethodGet},
				Pattern:  join(BasePath(p), "search"),
				Action:   "search",
				Provider: p,
			})
		}
	}
	return table
}

func synthesizeCollection(table *Table, p *schema.Provider, c *schema.Collection) {
	methods := make(map[string]struct{})
	for _, priv := range c.Privileges {
		for _, m := range priv.Methods {
			methods[strings.ToUpper(m)] = struct{}{}
		}
	}

	ordered := make([]string, 0, len(methods))
	for m := range methods {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	for _, method := range ordered {
		for _, action := range resolve.ActionsForMethod(method) {
			h, _ := resolve.HandlerForAction(action)
			e := endpointFor(c, h)
			if e == nil {
				continue
			}

			table.add(&Route{
				Name:       Name(p, c.Name, action),
				Methods:    []string{method},
				Pattern:    pattern(p, c, e, action),
				Action:     action,
				Handler:    h,
				Provider:   p,
				Collection: c,
				Endpoint:   e,
			})
		}
	}
}

// add registers a route, merging method sets on name collision.
func (t *Table) add(r *Route) {
	existing, ok := t.byName[r.Name]
	if !ok {
		t.byName[r.Name] = r
		t.routes = append(t.routes, r)
		return
	}
	for _, m := range r.Methods {
		if !existing.Allows(m) {
			existing.Methods = append(existing.Methods, m)
		}
	}
}

func endpointFor(c *schema.Collection, h schema.Handler) *schema.Endpoint {
	for _, e := range c.Endpoints {
		if e.Route.Handler != nil && *e.Route.Handler == h {
			return e
		}
	}
	return nil
}

// pattern composes a route's URL pattern: the singular form plus an
// identifier suffix for read/update/delete, the plural form, without an
// identifier, for index/create. An explicit endpoint route pattern
// overrides the derived tail but stays under the provider's base path.
func pattern(p *schema.Provider, c *schema.Collection, e *schema.Endpoint, action string) string {
	base := BasePath(p)

	if e.Route.Pattern != nil {
		return join(base, strings.TrimPrefix(*e.Route.Pattern, "/"))
	}

	switch action {
	case "read", "update", "delete":
		return join(base, *c.Paths.Singular) + "/{id:" + IDPattern + "}"
	default:
		return join(base, *c.Paths.Plural)
	}
}

func join(base, tail string) string {
	if base == "/" {
		return "/" + tail
	}
	return base + "/" + tail
}
