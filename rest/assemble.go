// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/z5labs/strata/route"
	"github.com/z5labs/strata/schema"
)

// assembleEntity serializes one entity through the collection's
// serializer groups and injects hyperlinks for every nested relation
// whose type is a readable collection of the same provider.
func (p *Pipeline) assembleEntity(ctx context.Context, r *http.Request, rc Context, c *schema.Collection, entity any) (map[string]any, error) {
	data, err := p.serializer.Normalize(ctx, entity, c.SerializerGroups)
	if err != nil {
		return nil, UpstreamError{Cause: err}
	}

	if c.Results.Links != schema.LinksNone {
		p.injectLinks(ctx, r, rc, c, c.Entity, data)
	}
	return data, nil
}

func (p *Pipeline) assembleList(ctx context.Context, r *http.Request, rc Context, c *schema.Collection, items []any) ([]any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		data, err := p.assembleEntity(ctx, r, rc, c, item)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// injectLinks walks a serialized map and, for every relation field whose
// target type is exposed as a collection the current actor may GET, adds
// a link to the target's read route. The walk recurses so nested
// relations of relations are linked too.
func (p *Pipeline) injectLinks(ctx context.Context, r *http.Request, rc Context, c *schema.Collection, entityName string, data map[string]any) {
	assocs := p.registry.Associations(entityName)
	for field, target := range assocs {
		nested, ok := data[field].(map[string]any)
		if !ok {
			continue
		}

		targetColl := p.readableCollection(ctx, rc.Provider, target)
		if targetColl != nil {
			if id, ok := relationID(nested["id"]); ok {
				if link, ok := p.readLink(r, rc.Provider, c, targetColl, id); ok {
					nested["link"] = link
				}
			}
		}

		p.injectLinks(ctx, r, rc, c, target, nested)
	}
}

// readableCollection finds the provider's collection bound to the given
// entity type, if the current actor may GET it.
func (p *Pipeline) readableCollection(ctx context.Context, provider *schema.Provider, entity string) *schema.Collection {
	for _, c := range provider.Collections {
		if c.Entity != entity {
			continue
		}
		if !mayRead(ctx, p.authz, c) {
			return nil
		}
		return c
	}
	return nil
}

// readLink builds the hyperlink to the read route of target for one
// identifier. The link mode of the serialized collection decides between
// relative and absolute form.
func (p *Pipeline) readLink(r *http.Request, provider *schema.Provider, c, target *schema.Collection, id string) (string, bool) {
	rt, ok := p.table.Lookup(route.Name(provider, target.Name, "read"))
	if !ok {
		return "", false
	}

	path := strings.Replace(rt.Pattern, "{id:"+route.IDPattern+"}", id, 1)
	if c.Results.Links != schema.LinksAbsolute {
		return path, true
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path, true
}
