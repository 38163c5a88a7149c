// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import "maps"

// Clone returns a deep copy of the tree. The resolve package clones the
// raw tree before filling inherited values so callers keep an untouched
// original.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		Providers: make([]*Provider, len(t.Providers)),
	}
	for i, p := range t.Providers {
		out.Providers[i] = p.clone()
	}
	return out
}

func (p *Provider) clone() *Provider {
	out := *p
	out.Enabled = clonePtr(p.Enabled)
	out.Version = p.Version.clone()
	out.Router = Router{
		NamePattern: clonePtr(p.Router.NamePattern),
		Prefix:      clonePtr(p.Router.Prefix),
	}
	out.Search = Search{
		Enabled: clonePtr(p.Search.Enabled),
		Param:   clonePtr(p.Search.Param),
	}
	out.Pagination = p.Pagination.clone()
	out.RateLimit = p.RateLimit.clone()
	out.Deprecation = p.Deprecation.clone()
	out.URLGenerator = URLGenerator{
		Support:  clonePtr(p.URLGenerator.Support),
		Absolute: clonePtr(p.URLGenerator.Absolute),
	}
	out.CORS = CORS{
		Enabled:        clonePtr(p.CORS.Enabled),
		Origins:        append([]string(nil), p.CORS.Origins...),
		Methods:        append([]string(nil), p.CORS.Methods...),
		Headers:        append([]string(nil), p.CORS.Headers...),
		ExposedHeaders: append([]string(nil), p.CORS.ExposedHeaders...),
		Credentials:    clonePtr(p.CORS.Credentials),
		MaxAge:         clonePtr(p.CORS.MaxAge),
	}
	out.Templates = maps.Clone(p.Templates)
	out.Collections = make([]*Collection, len(p.Collections))
	for i, c := range p.Collections {
		out.Collections[i] = c.clone()
	}
	return &out
}

func (v Version) clone() Version {
	return Version{
		Number:   clonePtr(v.Number),
		Prefix:   clonePtr(v.Prefix),
		Location: v.Location,
		Mode:     v.Mode,
	}
}

func (pg Pagination) clone() Pagination {
	return Pagination{
		Enabled:            clonePtr(pg.Enabled),
		PerPage:            clonePtr(pg.PerPage),
		MaxLimit:           clonePtr(pg.MaxLimit),
		AllowLimitOverride: clonePtr(pg.AllowLimitOverride),
	}
}

func (rl RateLimit) clone() RateLimit {
	return RateLimit{
		Enabled:       clonePtr(rl.Enabled),
		Limit:         clonePtr(rl.Limit),
		ByIP:          maps.Clone(rl.ByIP),
		ByUser:        maps.Clone(rl.ByUser),
		ByApplication: maps.Clone(rl.ByApplication),
	}
}

func (d Deprecation) clone() Deprecation {
	return Deprecation{
		Enabled:  clonePtr(d.Enabled),
		StartAt:  clonePtr(d.StartAt),
		SunsetAt: clonePtr(d.SunsetAt),
	}
}

func (c *Collection) clone() *Collection {
	out := *c
	out.Paths = Paths{
		Singular: clonePtr(c.Paths.Singular),
		Plural:   clonePtr(c.Paths.Plural),
	}
	out.Privileges = make([]Privilege, len(c.Privileges))
	for i, priv := range c.Privileges {
		out.Privileges[i] = Privilege{
			Granted: priv.Granted,
			Methods: append([]string(nil), priv.Methods...),
		}
	}
	out.SerializerGroups = append([]string(nil), c.SerializerGroups...)
	out.Search = CollectionSearch{
		Excluded: clonePtr(c.Search.Excluded),
		Criteria: maps.Clone(c.Search.Criteria),
	}
	out.Results = Results{
		Sorter: maps.Clone(c.Results.Sorter),
		Links:  c.Results.Links,
	}
	out.Pagination = c.Pagination.clone()
	out.RateLimit = c.RateLimit.clone()
	out.Deprecation = c.Deprecation.clone()
	out.Templates = maps.Clone(c.Templates)
	out.Endpoints = make([]*Endpoint, len(c.Endpoints))
	for i, e := range c.Endpoints {
		out.Endpoints[i] = e.clone()
	}
	return &out
}

func (e *Endpoint) clone() *Endpoint {
	out := *e
	out.Route = Route{
		Pattern:      clonePtr(e.Route.Pattern),
		Handler:      clonePtr(e.Route.Handler),
		Options:      maps.Clone(e.Route.Options),
		Requirements: append([]string(nil), e.Route.Requirements...),
	}
	out.Pagination = e.Pagination.clone()
	out.RateLimit = e.RateLimit.clone()
	out.Deprecation = e.Deprecation.clone()
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
