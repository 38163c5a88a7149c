// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"net/http"
	"testing"

	"github.com/z5labs/strata/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/z5labs/sdk-go/ptr"
)

func crudCollection(name, entity string) *schema.Collection {
	return &schema.Collection{
		Name:   name,
		Entity: entity,
		Privileges: []schema.Privilege{
			{Methods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			}},
		},
	}
}

func TestResolve(t *testing.T) {
	t.Run("will assign version numbers", func(t *testing.T) {
		t.Run("first-come-first-served for explicit numbers and smallest free otherwise", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Version: schema.Version{Number: ptr.Ref(2)}},
				{Name: "b"},
				{Name: "c"},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			assert.Equal(t, 2, *resolved.Providers[0].Version.Number)
			assert.Equal(t, 1, *resolved.Providers[1].Version.Number)
			assert.Equal(t, 3, *resolved.Providers[2].Version.Number)
		})

		t.Run("reassigning a duplicated explicit number to the later provider", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Version: schema.Version{Number: ptr.Ref(1)}},
				{Name: "b", Version: schema.Version{Number: ptr.Ref(1)}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			assert.Equal(t, 1, *resolved.Providers[0].Version.Number)
			assert.Equal(t, 2, *resolved.Providers[1].Version.Number)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if a manual mode provider has no usable version number", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Version: schema.Version{Mode: schema.VersionManual}},
			}}

			_, err := Resolve(tree)

			var cfgErr schema.ConfigurationError
			if !assert.ErrorAs(t, err, &cfgErr) {
				return
			}
			assert.Equal(t, "a", cfgErr.Provider)
		})
	})

	t.Run("will fill provider defaults", func(t *testing.T) {
		t.Run("if no level of the cascade sets a value", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{crudCollection("articles", "article")}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			p := resolved.Providers[0]
			assert.True(t, *p.Enabled)
			assert.Equal(t, "v", *p.Version.Prefix)
			assert.Equal(t, schema.VersionInPath, p.Version.Location)
			assert.Equal(t, DefaultNamePattern, *p.Router.NamePattern)
			assert.Equal(t, "/", *p.Router.Prefix)
			assert.True(t, *p.Search.Enabled)
			assert.Equal(t, "q", *p.Search.Param)
			assert.True(t, *p.Pagination.Enabled)
			assert.Equal(t, DefaultPerPage, *p.Pagination.PerPage)
			assert.Equal(t, DefaultMaxLimit, *p.Pagination.MaxLimit)
			assert.True(t, *p.Pagination.AllowLimitOverride)
			assert.False(t, *p.RateLimit.Enabled)
			assert.False(t, *p.Deprecation.Enabled)
		})
	})

	t.Run("will cascade settings", func(t *testing.T) {
		t.Run("from provider through collection down to endpoint", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "a",
					Pagination: schema.Pagination{
						PerPage: ptr.Ref(25),
					},
					Collections: []*schema.Collection{crudCollection("articles", "article")},
				},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			c := resolved.Providers[0].Collections[0]
			assert.Equal(t, 25, *c.Pagination.PerPage)
			for _, e := range c.Endpoints {
				assert.Equal(t, 25, *e.Pagination.PerPage)
			}
		})

		t.Run("letting an explicitly set child value win over its parent", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.Pagination.PerPage = ptr.Ref(5)
			c.Endpoints = []*schema.Endpoint{
				{
					Name:       "index",
					Pagination: schema.Pagination{PerPage: ptr.Ref(50)},
				},
			}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{
					Name:        "a",
					Pagination:  schema.Pagination{PerPage: ptr.Ref(25)},
					Collections: []*schema.Collection{c},
				},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, 5, *rc.Pagination.PerPage)

			index, ok := rc.Endpoint("index")
			require.True(t, ok)
			assert.Equal(t, 50, *index.Pagination.PerPage)
		})

		t.Run("inheriting keyed limiter maps wholesale", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.RateLimit.ByUser = schema.Limiter{"limit": 5}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{
					Name: "a",
					RateLimit: schema.RateLimit{
						Enabled: ptr.Ref(true),
						ByIP:    schema.Limiter{"limit": 100, "window": 60},
					},
					Collections: []*schema.Collection{c},
				},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, schema.Limiter{"limit": 100, "window": 60}, rc.RateLimit.ByIP)
			assert.Equal(t, schema.Limiter{"limit": 5}, rc.RateLimit.ByUser)
		})
	})

	t.Run("will derive collection paths", func(t *testing.T) {
		t.Run("from the collection name when unset", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{crudCollection("articles", "article")}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			c := resolved.Providers[0].Collections[0]
			assert.Equal(t, "article", *c.Paths.Singular)
			assert.Equal(t, "articles", *c.Paths.Plural)
		})

		t.Run("slugifying explicitly set segments", func(t *testing.T) {
			c := crudCollection("blogPosts", "post")
			c.Paths.Singular = ptr.Ref("BlogPost")

			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{c}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, "blog-post", *rc.Paths.Singular)
			assert.Equal(t, "blog-posts", *rc.Paths.Plural)
		})
	})

	t.Run("will materialize endpoints", func(t *testing.T) {
		t.Run("for every action the privileges imply", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{crudCollection("articles", "article")}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			c := resolved.Providers[0].Collections[0]
			names := make([]string, 0, len(c.Endpoints))
			for _, e := range c.Endpoints {
				names = append(names, e.Name)
			}
			assert.ElementsMatch(t, []string{"index", "read", "create", "update", "delete"}, names)
		})

		t.Run("without duplicating an action a declared alias endpoint already binds", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.Endpoints = []*schema.Endpoint{{Name: "show"}}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{c}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			reads := 0
			for _, e := range rc.Endpoints {
				if *e.Route.Handler == schema.ReadHandler {
					reads++
				}
			}
			assert.Equal(t, 1, reads)
		})
	})

	t.Run("will bind endpoint handlers", func(t *testing.T) {
		t.Run("and infer identifier requirements from the endpoint name", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{crudCollection("articles", "article")}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			c := resolved.Providers[0].Collections[0]

			read, ok := c.Endpoint("read")
			require.True(t, ok)
			assert.Equal(t, schema.ReadHandler, *read.Route.Handler)
			assert.Equal(t, []string{"id"}, read.Route.Requirements)

			index, ok := c.Endpoint("index")
			require.True(t, ok)
			assert.Equal(t, schema.ListHandler, *index.Route.Handler)
			assert.Empty(t, index.Route.Requirements)
		})
	})

	t.Run("will not mutate the input tree", func(t *testing.T) {
		t.Run("even when every field resolves", func(t *testing.T) {
			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{crudCollection("articles", "article")}},
			}}

			_, err := Resolve(tree)
			require.Nil(t, err)

			p := tree.Providers[0]
			assert.Nil(t, p.Enabled)
			assert.Nil(t, p.Version.Number)
			assert.Nil(t, p.Collections[0].Paths.Singular)
			assert.Empty(t, p.Collections[0].Endpoints)
		})
	})

	t.Run("will normalize collection search criteria", func(t *testing.T) {
		t.Run("defaulting an empty operator to like", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.Search.Criteria = map[string]schema.Operator{"title": ""}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{c}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, schema.OpLike, rc.Search.Criteria["title"])
		})
	})

	t.Run("will normalize privilege methods", func(t *testing.T) {
		t.Run("to their canonical uppercase form", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.Privileges = []schema.Privilege{
				{Granted: "ROLE_ADMIN", Methods: []string{"delete"}},
				{Methods: []string{"get", " post "}},
			}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{c}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, []string{http.MethodDelete}, rc.Privileges[0].Methods)
			assert.Equal(t, []string{http.MethodGet, http.MethodPost}, rc.Privileges[1].Methods)
		})
	})

	t.Run("will normalize sorter directions", func(t *testing.T) {
		t.Run("case insensitively", func(t *testing.T) {
			c := crudCollection("articles", "article")
			c.Results.Sorter = map[string]schema.SortOrder{"title": "desc"}

			tree := &schema.Tree{Providers: []*schema.Provider{
				{Name: "a", Collections: []*schema.Collection{c}},
			}}

			resolved, err := Resolve(tree)
			require.Nil(t, err)

			rc := resolved.Providers[0].Collections[0]
			assert.Equal(t, schema.Descending, rc.Results.Sorter["title"])
		})
	})
}
