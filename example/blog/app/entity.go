// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"fmt"

	"github.com/z5labs/strata/rest"
)

type Author struct {
	ID   string
	Name string
}

type Article struct {
	ID     string
	Title  string
	Body   string
	Likes  int
	Author *Author
}

// NewRegistry declares the blog entities to the pipeline.
func NewRegistry() *rest.Registry {
	return rest.NewRegistry(
		rest.Entity{
			Name: "author",
			New:  func() any { return &Author{} },
			Is: func(e any) bool {
				_, ok := e.(*Author)
				return ok
			},
			ID: func(e any) string { return e.(*Author).ID },
			Fields: rest.FieldMap{
				"id": {
					Get: func(e any) any { return e.(*Author).ID },
					Set: func(e any, v any) error {
						return setString(&e.(*Author).ID, v)
					},
				},
				"name": {
					Get: func(e any) any { return e.(*Author).Name },
					Set: func(e any, v any) error {
						return setString(&e.(*Author).Name, v)
					},
				},
			},
		},
		rest.Entity{
			Name: "article",
			New:  func() any { return &Article{} },
			Is: func(e any) bool {
				_, ok := e.(*Article)
				return ok
			},
			ID: func(e any) string { return e.(*Article).ID },
			Fields: rest.FieldMap{
				"id": {
					Get: func(e any) any { return e.(*Article).ID },
					Set: func(e any, v any) error {
						return setString(&e.(*Article).ID, v)
					},
				},
				"title": {
					Get: func(e any) any { return e.(*Article).Title },
					Set: func(e any, v any) error {
						return setString(&e.(*Article).Title, v)
					},
				},
				"body": {
					Get: func(e any) any { return e.(*Article).Body },
					Set: func(e any, v any) error {
						return setString(&e.(*Article).Body, v)
					},
				},
				"likes": {
					Get: func(e any) any { return e.(*Article).Likes },
					Set: func(e any, v any) error {
						return setInt(&e.(*Article).Likes, v)
					},
				},
				"author": {
					Relation: "author",
					Get: func(e any) any {
						author := e.(*Article).Author
						if author == nil {
							return nil
						}
						return author
					},
					Set: func(e any, v any) error {
						author, ok := v.(*Author)
						if !ok {
							return fmt.Errorf("expected author, got %T", v)
						}
						e.(*Article).Author = author
						return nil
					},
				},
			},
		},
	)
}

func setString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	*dst = s
	return nil
}

func setInt(dst *int, v any) error {
	switch n := v.(type) {
	case int:
		*dst = n
	case float64:
		*dst = int(n)
	default:
		return fmt.Errorf("expected number, got %T", v)
	}
	return nil
}
