// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"net/http"

	"github.com/z5labs/strata/rest"
	"github.com/z5labs/strata/schema"
	"github.com/z5labs/strata/storage/memory"
)

type Config struct {
	rest.Config `config:",squash"`
}

func Init(ctx context.Context, cfg Config) (*rest.Api, error) {
	registry := NewRegistry()
	store := memory.NewStore(registry)

	tree := &schema.Tree{
		Providers: []*schema.Provider{
			{
				Name: "blog",
				Collections: []*schema.Collection{
					{
						Name:   "articles",
						Entity: "article",
						Privileges: []schema.Privilege{
							{
								Methods: []string{
									http.MethodGet,
									http.MethodPost,
									http.MethodPut,
									http.MethodPatch,
									http.MethodDelete,
								},
							},
						},
						Search: schema.CollectionSearch{
							Criteria: map[string]schema.Operator{
								"title": schema.OpLike,
								"body":  schema.OpLike,
							},
						},
						Results: schema.Results{
							Sorter: map[string]schema.SortOrder{
								"title": schema.Ascending,
							},
						},
					},
					{
						Name:   "authors",
						Entity: "author",
						Privileges: []schema.Privilege{
							{
								Methods: []string{
									http.MethodGet,
									http.MethodPost,
								},
							},
						},
						Search: schema.CollectionSearch{
							Criteria: map[string]schema.Operator{
								"name": schema.OpRightLike,
							},
						},
					},
				},
			},
		},
	}

	return rest.NewApi(
		cfg.OpenApi.Title,
		cfg.OpenApi.Version,
		tree,
		store,
		registry,
	)
}
