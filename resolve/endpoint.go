// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"net/http"
	"strings"

	"github.com/z5labs/strata/schema"
)

// handlerForAction is the fixed endpoint-name to handler binding table.
var handlerForAction = map[string]schema.Handler{
	"index":  schema.ListHandler,
	"list":   schema.ListHandler,
	"add":    schema.CreateHandler,
	"create": schema.CreateHandler,
	"post":   schema.CreateHandler,
	"read":   schema.ReadHandler,
	"show":   schema.ReadHandler,
	"put":    schema.UpdateHandler,
	"update": schema.UpdateHandler,
	"edit":   schema.UpdateHandler,
	"patch":  schema.UpdateHandler,
	"delete": schema.DeleteHandler,
}

// identifierActions names the endpoints which cannot be dispatched
// without a resource identifier URL parameter.
var identifierActions = map[string]struct{}{
	"edit":   {},
	"delete": {},
	"patch":  {},
	"put":    {},
	"read":   {},
	"show":   {},
	"update": {},
}

// HandlerForAction returns the generic handler bound to an endpoint name.
// The second return is false for unrecognized names.
func HandlerForAction(name string) (schema.Handler, bool) {
	h, ok := handlerForAction[strings.ToLower(name)]
	return h, ok
}

// ActionsForMethod maps an HTTP method to the canonical actions it serves.
func ActionsForMethod(method string) []string {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return []string{"index", "read"}
	case http.MethodPost:
		return []string{"create"}
	case http.MethodPut:
		return []string{"update", "create"}
	case http.MethodPatch:
		return []string{"update"}
	case http.MethodDelete:
		return []string{"delete"}
	default:
		return nil
	}
}

// canonicalActions in materialization order.
var canonicalActions = []string{"index", "read", "create", "update", "delete"}

// materializeEndpoints guarantees that every action reachable through a
// collection's privileges has an endpoint entry for the cascade to land
// on. Explicitly declared endpoints are kept, including ones under alias
// names like "show"; a synthesized endpoint is only added for an action
// no declared endpoint binds to.
func materializeEndpoints(t *schema.Tree) error {
	for _, p := range t.Providers {
		for _, c := range p.Collections {
			needed := make(map[string]struct{})
			for _, priv := range c.Privileges {
				for _, m := range priv.Methods {
					for _, action := range ActionsForMethod(m) {
						needed[action] = struct{}{}
					}
				}
			}

			covered := make(map[schema.Handler]struct{})
			for _, e := range c.Endpoints {
				if h, ok := HandlerForAction(e.Name); ok {
					covered[h] = struct{}{}
				}
			}

			for _, action := range canonicalActions {
				if _, ok := needed[action]; !ok {
					continue
				}
				h, _ := HandlerForAction(action)
				if _, ok := covered[h]; ok {
					continue
				}
				covered[h] = struct{}{}
				c.Endpoints = append(c.Endpoints, &schema.Endpoint{Name: action})
			}
		}
	}
	return nil
}

// resolveEndpointSettings cascades collection level settings one level
// deeper, onto every endpoint.
func resolveEndpointSettings(t *schema.Tree) error {
	for _, p := range t.Providers {
		for _, c := range p.Collections {
			for _, e := range c.Endpoints {
				e.Pagination = cascadePagination(e.Pagination, c.Pagination)
				e.RateLimit = cascadeRateLimit(e.RateLimit, c.RateLimit)
				e.Deprecation = cascadeDeprecation(e.Deprecation, c.Deprecation)
			}
		}
	}
	return nil
}

// bindEndpointHandlers assigns a generic handler to every endpoint which
// lacks an explicit one and infers required URL parameters from the
// endpoint name. Unrecognized names are left unbound for Validate to
// reject.
func bindEndpointHandlers(t *schema.Tree) error {
	for _, p := range t.Providers {
		for _, c := range p.Collections {
			for _, e := range c.Endpoints {
				if e.Route.Handler == nil {
					if h, ok := HandlerForAction(e.Name); ok {
						e.Route.Handler = &h
					}
				}

				if e.Route.Requirements == nil {
					if _, ok := identifierActions[strings.ToLower(e.Name)]; ok {
						e.Route.Requirements = []string{"id"}
					} else {
						e.Route.Requirements = []string{}
					}
				}
			}
		}
	}
	return nil
}
