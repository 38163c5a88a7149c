// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"strings"

	"github.com/z5labs/strata/schema"

	"github.com/z5labs/sdk-go/ptr"
)

// resolveCollectionPaths derives the singular and plural URL segments of
// every collection from its name when they are not set explicitly.
func resolveCollectionPaths(t *schema.Tree) error {
	for _, p := range t.Providers {
		for _, c := range p.Collections {
			if c.Paths.Singular == nil {
				c.Paths.Singular = ptr.Ref(Singularize(c.Name))
			} else {
				c.Paths.Singular = ptr.Ref(Slugify(*c.Paths.Singular))
			}
			if c.Paths.Plural == nil {
				c.Paths.Plural = ptr.Ref(Pluralize(c.Name))
			} else {
				c.Paths.Plural = ptr.Ref(Slugify(*c.Paths.Plural))
			}
		}
	}
	return nil
}

// resolveCollectionSettings cascades provider level settings down to each
// collection and normalizes collection local fields: privilege methods are
// upper-cased, sorter directions are case-normalized and a nil search
// operator defaults to "like".
func resolveCollectionSettings(t *schema.Tree) error {
	for _, p := range t.Providers {
		for _, c := range p.Collections {
			c.Pagination = cascadePagination(c.Pagination, p.Pagination)
			c.RateLimit = cascadeRateLimit(c.RateLimit, p.RateLimit)
			c.Deprecation = cascadeDeprecation(c.Deprecation, p.Deprecation)
			c.Templates = coalesceMap(c.Templates, p.Templates)

			for i := range c.Privileges {
				methods := c.Privileges[i].Methods
				for j, m := range methods {
					methods[j] = strings.ToUpper(strings.TrimSpace(m))
				}
			}

			c.Search.Excluded = coalesce(c.Search.Excluded, ptr.Ref(false))
			for field, op := range c.Search.Criteria {
				if op == "" {
					c.Search.Criteria[field] = schema.OpLike
				}
			}

			for field, order := range c.Results.Sorter {
				normalized, ok := schema.NormalizeSortOrder(string(order))
				if !ok {
					// left as-is for Validate to report
					continue
				}
				c.Results.Sorter[field] = normalized
			}
			if c.Results.Links == "" {
				c.Results.Links = schema.LinksRelative
			}
		}
	}
	return nil
}

func cascadePagination(child, parent schema.Pagination) schema.Pagination {
	return schema.Pagination{
		Enabled:            coalesce(child.Enabled, parent.Enabled),
		PerPage:            coalesce(child.PerPage, parent.PerPage),
		MaxLimit:           coalesce(child.MaxLimit, parent.MaxLimit),
		AllowLimitOverride: coalesce(child.AllowLimitOverride, parent.AllowLimitOverride),
	}
}

func cascadeRateLimit(child, parent schema.RateLimit) schema.RateLimit {
	return schema.RateLimit{
		Enabled:       coalesce(child.Enabled, parent.Enabled),
		Limit:         coalesce(child.Limit, parent.Limit),
		ByIP:          coalesceMap(child.ByIP, parent.ByIP),
		ByUser:        coalesceMap(child.ByUser, parent.ByUser),
		ByApplication: coalesceMap(child.ByApplication, parent.ByApplication),
	}
}

func cascadeDeprecation(child, parent schema.Deprecation) schema.Deprecation {
	return schema.Deprecation{
		Enabled:  coalesce(child.Enabled, parent.Enabled),
		StartAt:  coalesce(child.StartAt, parent.StartAt),
		SunsetAt: coalesce(child.SunsetAt, parent.SunsetAt),
	}
}
