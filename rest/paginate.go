// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/z5labs/strata/schema"
)

// pageRequest is the pagination input parsed from a request before the
// total item count is known.
type pageRequest struct {
	page    int
	perPage int
}

// parsePageRequest reads the page and per-page query parameters against
// the resolved pagination settings. The requested per-page value is only
// honored when allow_limit_override is set, and is then clamped to
// max_limit when that is positive.
func parsePageRequest(q url.Values, pg schema.Pagination) (pageRequest, error) {
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return pageRequest{}, BadRequestError{
				Cause: fmt.Errorf("page must be a positive integer, got %q", raw),
			}
		}
		page = n
	}

	perPage := *pg.PerPage
	if *pg.AllowLimitOverride {
		raw := q.Get("perPage")
		if raw == "" {
			raw = q.Get("per_page")
		}
		if raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return pageRequest{}, BadRequestError{
					Cause: fmt.Errorf("per page must be a positive integer, got %q", raw),
				}
			}
			perPage = n
		}
		if max := *pg.MaxLimit; max > 0 && perPage > max {
			perPage = max
		}
	}

	return pageRequest{
		page:    page,
		perPage: perPage,
	}, nil
}

// pageWindow is a fully computed pagination window.
type pageWindow struct {
	page    int
	perPage int
	total   int
	pages   int
	offset  int
	prev    int
	next    int
}

// window completes a pageRequest once the total item count is known.
// A page beyond the last one is a not found condition.
func (pr pageRequest) window(total int) (pageWindow, error) {
	pages := (total + pr.perPage - 1) / pr.perPage
	if pages < 1 {
		pages = 1
	}
	if pr.page > pages {
		return pageWindow{}, NotFoundError{
			Detail: fmt.Sprintf("page %d is beyond the last page %d", pr.page, pages),
		}
	}

	w := pageWindow{
		page:    pr.page,
		perPage: pr.perPage,
		total:   total,
		pages:   pages,
		offset:  (pr.page - 1) * pr.perPage,
		prev:    pr.page - 1,
		next:    pr.page + 1,
	}
	if w.prev < 1 {
		w.prev = 1
	}
	if w.next > pages {
		w.next = pages
	}
	return w, nil
}

// links builds the five named pagination links by substituting the page
// parameter into the request's own URI, absolute or relative per the
// provider's url generator settings.
func (w pageWindow) links(r *http.Request, p *schema.Provider) PageLinks {
	pageURL := func(page int) string {
		u := *r.URL
		q := u.Query()
		q.Set("page", strconv.Itoa(page))
		u.RawQuery = q.Encode()

		if !*p.URLGenerator.Absolute {
			return u.RequestURI()
		}
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
		return u.String()
	}

	return PageLinks{
		First: pageURL(1),
		Prev:  pageURL(w.prev),
		Self:  pageURL(w.page),
		Next:  pageURL(w.next),
		Last:  pageURL(w.pages),
	}
}

func (w pageWindow) pageInfo(r *http.Request, p *schema.Provider) *PageInfo {
	return &PageInfo{
		Page:    w.page,
		Pages:   w.pages,
		PerPage: w.perPage,
		Total:   w.total,
		Links:   w.links(r, p),
	}
}
