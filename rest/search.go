// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"net/http"

	"github.com/z5labs/strata/schema"
)

// missingSearchExpressionError is raised when the search parameter is
// absent from the query entirely.
type missingSearchExpressionError struct {
	Param string
}

func (e missingSearchExpressionError) Error() string {
	return "missing search expression parameter: " + e.Param
}

// search serves the provider level search action: one disjunctive query
// per eligible collection, results concatenated and paginated in memory.
//
// A collection is eligible when the current actor may GET it, it is not
// search-excluded and it declares at least one search field. The in
// memory pagination is deliberate: the concatenated result set spans
// heterogeneous entity types, so a storage level LIMIT/OFFSET cannot
// window it.
func (p *Pipeline) search(r *http.Request, rc Context) (result, error) {
	ctx := r.Context()

	param := *rc.Provider.Search.Param
	query := r.URL.Query()
	if !query.Has(param) {
		return result{}, BadRequestError{
			Cause: missingSearchExpressionError{Param: param},
		}
	}

	expression := query.Get(param)
	if expression == "" {
		return result{status: http.StatusOK, data: []any{}}, nil
	}

	var all []any
	for _, c := range rc.Provider.Collections {
		if *c.Search.Excluded || len(c.Search.Criteria) == 0 {
			continue
		}
		if !mayRead(ctx, p.authz, c) {
			continue
		}

		items, err := p.searchCollection(r, rc, c, expression)
		if err != nil {
			return result{}, err
		}
		all = append(all, items...)
	}

	if !*rc.Provider.Pagination.Enabled {
		if all == nil {
			all = []any{}
		}
		return result{status: http.StatusOK, data: all}, nil
	}

	pr, err := parsePageRequest(query, rc.Provider.Pagination)
	if err != nil {
		return result{}, err
	}
	window, err := pr.window(len(all))
	if err != nil {
		return result{}, err
	}

	// window the concatenated, not necessarily sorted, result slice
	start := window.offset
	end := start + window.perPage
	if end > len(all) {
		end = len(all)
	}
	data := all[start:end]
	if data == nil {
		data = []any{}
	}

	return result{
		status:     http.StatusOK,
		data:       data,
		pagination: window.pageInfo(r, rc.Provider),
	}, nil
}

func (p *Pipeline) searchCollection(r *http.Request, rc Context, c *schema.Collection, expression string) ([]any, error) {
	ctx := r.Context()

	repo, err := p.store.Repository(c.Entity)
	if err != nil {
		return nil, UpstreamError{Cause: err}
	}

	filter := Filter{
		Any: make([]Condition, 0, len(c.Search.Criteria)),
	}
	for field, op := range c.Search.Criteria {
		filter.Any = append(filter.Any, Condition{
			Field: field,
			Op:    op,
			Value: expression,
		})
	}

	items, err := repo.FindBy(ctx, filter, nil, 0, 0)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, UpstreamError{Cause: err}
	}

	return p.assembleList(ctx, r, rc, c, items)
}
