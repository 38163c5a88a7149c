// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/z5labs/strata/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z5labs/sdk-go/ptr"
)

func pagination(perPage, maxLimit int, allowOverride bool) schema.Pagination {
	return schema.Pagination{
		Enabled:            ptr.Ref(true),
		PerPage:            ptr.Ref(perPage),
		MaxLimit:           ptr.Ref(maxLimit),
		AllowLimitOverride: ptr.Ref(allowOverride),
	}
}

func TestParsePageRequest(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if page is not a positive integer", func(t *testing.T) {
			for _, raw := range []string{"0", "-1", "abc", "1.5"} {
				t.Run(raw, func(t *testing.T) {
					q := url.Values{"page": []string{raw}}

					_, err := parsePageRequest(q, pagination(10, 100, true))

					var badReq BadRequestError
					assert.ErrorAs(t, err, &badReq)
				})
			}
		})

		t.Run("if the per page override is not a positive integer", func(t *testing.T) {
			q := url.Values{"perPage": []string{"zero"}}

			_, err := parsePageRequest(q, pagination(10, 100, true))

			var badReq BadRequestError
			assert.ErrorAs(t, err, &badReq)
		})
	})

	t.Run("will use the configured per page", func(t *testing.T) {
		t.Run("if no override is requested", func(t *testing.T) {
			pr, err := parsePageRequest(url.Values{}, pagination(10, 100, true))
			require.Nil(t, err)

			assert.Equal(t, 1, pr.page)
			assert.Equal(t, 10, pr.perPage)
		})

		t.Run("if overriding is not allowed", func(t *testing.T) {
			q := url.Values{"perPage": []string{"50"}}

			pr, err := parsePageRequest(q, pagination(10, 100, false))
			require.Nil(t, err)

			assert.Equal(t, 10, pr.perPage)
		})
	})

	t.Run("will honor the per page override", func(t *testing.T) {
		t.Run("if overriding is allowed", func(t *testing.T) {
			q := url.Values{"perPage": []string{"50"}}

			pr, err := parsePageRequest(q, pagination(10, 100, true))
			require.Nil(t, err)

			assert.Equal(t, 50, pr.perPage)
		})

		t.Run("accepting the snake case parameter too", func(t *testing.T) {
			q := url.Values{"per_page": []string{"30"}}

			pr, err := parsePageRequest(q, pagination(10, 100, true))
			require.Nil(t, err)

			assert.Equal(t, 30, pr.perPage)
		})

		t.Run("clamping it to the max limit", func(t *testing.T) {
			q := url.Values{"perPage": []string{"500"}}

			pr, err := parsePageRequest(q, pagination(10, 100, true))
			require.Nil(t, err)

			assert.Equal(t, 100, pr.perPage)
		})
	})
}

func TestPageRequest_Window(t *testing.T) {
	t.Run("will compute the window", func(t *testing.T) {
		t.Run("for a middle page", func(t *testing.T) {
			w, err := pageRequest{page: 2, perPage: 10}.window(25)
			require.Nil(t, err)

			assert.Equal(t, 3, w.pages)
			assert.Equal(t, 10, w.offset)
			assert.Equal(t, 1, w.prev)
			assert.Equal(t, 3, w.next)
		})

		t.Run("for the last partially filled page", func(t *testing.T) {
			w, err := pageRequest{page: 3, perPage: 10}.window(25)
			require.Nil(t, err)

			assert.Equal(t, 3, w.pages)
			assert.Equal(t, 20, w.offset)
			assert.Equal(t, 2, w.prev)
			assert.Equal(t, 3, w.next)
		})

		t.Run("for an empty result set", func(t *testing.T) {
			w, err := pageRequest{page: 1, perPage: 10}.window(0)
			require.Nil(t, err)

			assert.Equal(t, 1, w.pages)
			assert.Equal(t, 0, w.offset)
			assert.Equal(t, 1, w.prev)
			assert.Equal(t, 1, w.next)
		})
	})

	t.Run("will return a not found error", func(t *testing.T) {
		t.Run("if the page is beyond the last one", func(t *testing.T) {
			_, err := pageRequest{page: 4, perPage: 10}.window(25)

			var notFound NotFoundError
			assert.ErrorAs(t, err, &notFound)
		})
	})
}

func TestPageWindow_Links(t *testing.T) {
	provider := func(absolute bool) *schema.Provider {
		return &schema.Provider{
			URLGenerator: schema.URLGenerator{
				Support:  ptr.Ref(true),
				Absolute: ptr.Ref(absolute),
			},
		}
	}

	t.Run("will substitute the page parameter", func(t *testing.T) {
		t.Run("into the request's own uri", func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/articles?page=2&perPage=10", nil)

			w, err := pageRequest{page: 2, perPage: 10}.window(25)
			require.Nil(t, err)

			links := w.links(r, provider(false))
			assert.Equal(t, "/v1/articles?page=1&perPage=10", links.First)
			assert.Equal(t, "/v1/articles?page=1&perPage=10", links.Prev)
			assert.Equal(t, "/v1/articles?page=2&perPage=10", links.Self)
			assert.Equal(t, "/v1/articles?page=3&perPage=10", links.Next)
			assert.Equal(t, "/v1/articles?page=3&perPage=10", links.Last)
		})
	})

	t.Run("will emit absolute links", func(t *testing.T) {
		t.Run("if the provider's url generator is absolute", func(t *testing.T) {
			r := httptest.NewRequest("GET", "http://api.example.com/v1/articles", nil)

			w, err := pageRequest{page: 1, perPage: 10}.window(5)
			require.Nil(t, err)

			links := w.links(r, provider(true))
			assert.Equal(t, "http://api.example.com/v1/articles?page=1", links.Self)
		})
	})
}
