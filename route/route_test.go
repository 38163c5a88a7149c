// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package route

import (
	"net/http"
	"testing"

	"github.com/z5labs/strata/resolve"
	"github.com/z5labs/strata/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z5labs/sdk-go/ptr"
)

func resolvedTree(t *testing.T, raw *schema.Tree) *schema.Tree {
	t.Helper()

	resolved, err := resolve.Resolve(raw)
	require.Nil(t, err)
	return resolved
}

func TestSynthesize(t *testing.T) {
	t.Run("will synthesize crud routes", func(t *testing.T) {
		t.Run("singular with identifier for read/update/delete and plural otherwise", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "blog",
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{
									http.MethodGet,
									http.MethodPost,
									http.MethodPut,
									http.MethodPatch,
									http.MethodDelete,
								}},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)
			p := tree.Providers[0]

			index, ok := table.Lookup(Name(p, "articles", "index"))
			require.True(t, ok)
			assert.Equal(t, "/v1/articles", index.Pattern)
			assert.Equal(t, []string{http.MethodGet}, index.Methods)

			read, ok := table.Lookup(Name(p, "articles", "read"))
			require.True(t, ok)
			assert.Equal(t, "/v1/article/{id:"+IDPattern+"}", read.Pattern)
			assert.Equal(t, []string{http.MethodGet}, read.Methods)

			update, ok := table.Lookup(Name(p, "articles", "update"))
			require.True(t, ok)
			assert.Equal(t, read.Pattern, update.Pattern)
			assert.ElementsMatch(t, []string{http.MethodPatch, http.MethodPut}, update.Methods)

			del, ok := table.Lookup(Name(p, "articles", "delete"))
			require.True(t, ok)
			assert.Equal(t, []string{http.MethodDelete}, del.Methods)
		})

		t.Run("merging the create route's method set across POST and PUT", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "blog",
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{http.MethodPost, http.MethodPut}},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)
			p := tree.Providers[0]

			create, ok := table.Lookup(Name(p, "articles", "create"))
			require.True(t, ok)
			assert.Equal(t, "/v1/articles", create.Pattern)
			assert.ElementsMatch(t, []string{http.MethodPost, http.MethodPut}, create.Methods)
		})
	})

	t.Run("will synthesize a search route", func(t *testing.T) {
		t.Run("under the provider base path when search is enabled", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{Name: "blog"},
			}})

			table := Synthesize(tree)
			p := tree.Providers[0]

			search, ok := table.Lookup(Name(p, "search", "search"))
			require.True(t, ok)
			assert.Equal(t, "/v1/search", search.Pattern)
			assert.Nil(t, search.Collection)
		})

		t.Run("but not when search is disabled", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name:   "blog",
					Search: schema.Search{Enabled: ptr.Ref(false)},
				},
			}})

			table := Synthesize(tree)

			_, ok := table.Lookup(Name(tree.Providers[0], "search", "search"))
			assert.False(t, ok)
		})
	})

	t.Run("will skip disabled providers", func(t *testing.T) {
		t.Run("entirely", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name:    "blog",
					Enabled: ptr.Ref(false),
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{http.MethodGet}},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)
			assert.Empty(t, table.Routes())
		})
	})

	t.Run("will honor router overrides", func(t *testing.T) {
		t.Run("prefixing every pattern and renaming via the name pattern", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "blog",
					Router: schema.Router{
						NamePattern: ptr.Ref("{provider}.{collection}.{action}"),
						Prefix:      ptr.Ref("/api"),
					},
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{http.MethodGet}},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)

			index, ok := table.Lookup("blog.articles.index")
			require.True(t, ok)
			assert.Equal(t, "/api/v1/articles", index.Pattern)
		})

		t.Run("keeping version out of the path for header versioned providers", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name:    "blog",
					Version: schema.Version{Location: schema.VersionInHeader},
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{http.MethodGet}},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)
			p := tree.Providers[0]

			index, ok := table.Lookup(Name(p, "articles", "index"))
			require.True(t, ok)
			assert.Equal(t, "/articles", index.Pattern)
		})

		t.Run("letting an explicit endpoint pattern override the derived tail", func(t *testing.T) {
			tree := resolvedTree(t, &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "blog",
					Collections: []*schema.Collection{
						{
							Name:   "articles",
							Entity: "article",
							Privileges: []schema.Privilege{
								{Methods: []string{http.MethodGet}},
							},
							Endpoints: []*schema.Endpoint{
								{
									Name: "index",
									Route: schema.Route{
										Pattern: ptr.Ref("/all-articles"),
									},
								},
							},
						},
					},
				},
			}})

			table := Synthesize(tree)
			p := tree.Providers[0]

			index, ok := table.Lookup(Name(p, "articles", "index"))
			require.True(t, ok)
			assert.Equal(t, "/v1/all-articles", index.Pattern)
		})
	})
}

func TestBasePath(t *testing.T) {
	t.Run("will join prefix and version segment", func(t *testing.T) {
		cases := []struct {
			name   string
			prefix string
			want   string
		}{
			{name: "root prefix", prefix: "/", want: "/v3"},
			{name: "custom prefix", prefix: "/api", want: "/api/v3"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p := &schema.Provider{
					Version: schema.Version{
						Number:   ptr.Ref(3),
						Prefix:   ptr.Ref("v"),
						Location: schema.VersionInPath,
					},
					Router: schema.Router{Prefix: ptr.Ref(tc.prefix)},
				}
				assert.Equal(t, tc.want, BasePath(p))
			})
		}
	})
}
