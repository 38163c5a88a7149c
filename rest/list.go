// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/z5labs/strata/schema"
)

// list serves the index action: resolve ordering, compute the pagination
// window from a count over the same filter the fetch uses, fetch and
// serialize.
func (p *Pipeline) list(r *http.Request, rc Context) (result, error) {
	ctx := r.Context()

	repo, err := p.store.Repository(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	order, err := parseSorter(r.URL.Query().Get("sorter"), rc.Collection.Results.Sorter)
	if err != nil {
		return result{}, err
	}

	var filter Filter

	if !*rc.Endpoint.Pagination.Enabled {
		items, err := repo.FindBy(ctx, filter, order, 0, 0)
		if err != nil {
			return result{}, UpstreamError{Cause: err}
		}
		data, err := p.assembleList(ctx, r, rc, rc.Collection, items)
		if err != nil {
			return result{}, err
		}
		return result{status: http.StatusOK, data: data}, nil
	}

	pr, err := parsePageRequest(r.URL.Query(), rc.Endpoint.Pagination)
	if err != nil {
		return result{}, err
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	window, err := pr.window(total)
	if err != nil {
		return result{}, err
	}

	items, err := repo.FindBy(ctx, filter, order, window.perPage, window.offset)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	data, err := p.assembleList(ctx, r, rc, rc.Collection, items)
	if err != nil {
		return result{}, err
	}

	return result{
		status:     http.StatusOK,
		data:       data,
		pagination: window.pageInfo(r, rc.Provider),
	}, nil
}

// read serves the show action. A missing entity is always a not found
// condition.
func (p *Pipeline) read(r *http.Request, rc Context, id string) (result, error) {
	ctx := r.Context()

	repo, err := p.store.Repository(rc.Collection.Entity)
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	entity, err := repo.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return result{}, NotFoundError{
			Detail: fmt.Sprintf("no %s exists under identifier %s", *rc.Collection.Paths.Singular, id),
		}
	}
	if err != nil {
		return result{}, UpstreamError{Cause: err}
	}

	data, err := p.assembleEntity(ctx, r, rc, rc.Collection, entity)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, data: data}, nil
}

// parseSorter overlays the sorter query parameter, a comma separated
// list of field:ASC|DESC terms, onto the collection's configured sorter.
func parseSorter(raw string, configured map[string]schema.SortOrder) ([]Order, error) {
	if raw == "" {
		fields := make([]string, 0, len(configured))
		for f := range configured {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		order := make([]Order, len(fields))
		for i, f := range fields {
			order[i] = Order{Field: f, Direction: configured[f]}
		}
		return order, nil
	}

	terms := strings.Split(raw, ",")
	order := make([]Order, 0, len(terms))
	for _, term := range terms {
		field, dir, found := strings.Cut(term, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, BadRequestError{
				Cause: fmt.Errorf("empty field in sorter term %q", term),
			}
		}

		direction := schema.Ascending
		if found {
			normalized, ok := schema.NormalizeSortOrder(dir)
			if !ok {
				return nil, BadRequestError{
					Cause: fmt.Errorf("sorter direction for field %q must be ASC or DESC, got %q", field, dir),
				}
			}
			direction = normalized
		}
		order = append(order, Order{Field: field, Direction: direction})
	}
	return order, nil
}
