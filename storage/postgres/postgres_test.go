// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/z5labs/strata/rest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poet struct {
	ID   string
	Name string
}

type poem struct {
	ID     string
	Title  string
	Author *poet
}

func testRegistry() *rest.Registry {
	return rest.NewRegistry(
		rest.Entity{
			Name: "poet",
			New:  func() any { return &poet{} },
			Is: func(e any) bool {
				_, ok := e.(*poet)
				return ok
			},
			ID: func(e any) string { return e.(*poet).ID },
			Fields: rest.FieldMap{
				"id": {
					Get: func(e any) any { return e.(*poet).ID },
					Set: func(e any, v any) error { return setTestString(&e.(*poet).ID, v) },
				},
				"name": {
					Get: func(e any) any { return e.(*poet).Name },
					Set: func(e any, v any) error { return setTestString(&e.(*poet).Name, v) },
				},
			},
		},
		rest.Entity{
			Name: "poem",
			New:  func() any { return &poem{} },
			Is: func(e any) bool {
				_, ok := e.(*poem)
				return ok
			},
			ID: func(e any) string { return e.(*poem).ID },
			Fields: rest.FieldMap{
				"id": {
					Get: func(e any) any { return e.(*poem).ID },
					Set: func(e any, v any) error { return setTestString(&e.(*poem).ID, v) },
				},
				"title": {
					Get: func(e any) any { return e.(*poem).Title },
					Set: func(e any, v any) error { return setTestString(&e.(*poem).Title, v) },
				},
				"author": {
					Relation: "poet",
					Get: func(e any) any {
						a := e.(*poem).Author
						if a == nil {
							return nil
						}
						return a
					},
					Set: func(e any, v any) error {
						a, ok := v.(*poet)
						if !ok {
							return fmt.Errorf("expected poet, got %T", v)
						}
						e.(*poem).Author = a
						return nil
					},
				},
			},
		},
	)
}

func setTestString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	*dst = s
	return nil
}

func testRepository(t *testing.T, entity string) *repository {
	t.Helper()

	registry := testRegistry()
	def, err := registry.Definition(entity)
	require.Nil(t, err)

	return &repository{
		registry: registry,
		def:      def,
		table:    tableName(entity),
		hydrated: make(map[string]struct{}),
	}
}

func TestRepository_PersistSQL(t *testing.T) {
	t.Run("will insert plainly", func(t *testing.T) {
		t.Run("if the identifier was never read through the repository", func(t *testing.T) {
			r := testRepository(t, "poem")

			sql := r.persistSQL("1")
			assert.Equal(t, `INSERT INTO "poem" (id, doc) VALUES ($1, $2)`, sql)
		})
	})

	t.Run("will upsert", func(t *testing.T) {
		t.Run("if the entity was hydrated through the repository", func(t *testing.T) {
			r := testRepository(t, "poem")

			_, err := r.hydrate(context.Background(), "1", []byte(`{"title": "ozymandias"}`), make(map[string]struct{}))
			require.Nil(t, err)

			sql := r.persistSQL("1")
			assert.Equal(t, `INSERT INTO "poem" (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`, sql)
		})
	})
}

func TestRepository_Hydrate(t *testing.T) {
	t.Run("will set plain fields", func(t *testing.T) {
		t.Run("from the stored document", func(t *testing.T) {
			r := testRepository(t, "poem")

			entity, err := r.hydrate(context.Background(), "1", []byte(`{"title": "ozymandias"}`), make(map[string]struct{}))
			require.Nil(t, err)

			p, ok := entity.(*poem)
			require.True(t, ok)
			assert.Equal(t, "1", p.ID)
			assert.Equal(t, "ozymandias", p.Title)
		})
	})

	t.Run("will leave a relation unset", func(t *testing.T) {
		t.Run("if the document holds no reference", func(t *testing.T) {
			r := testRepository(t, "poem")

			entity, err := r.hydrate(context.Background(), "1", []byte(`{"title": "ozymandias"}`), make(map[string]struct{}))
			require.Nil(t, err)
			assert.Nil(t, entity.(*poem).Author)
		})

		t.Run("if resolving it would cycle back onto the hydration path", func(t *testing.T) {
			r := testRepository(t, "poem")

			resolving := map[string]struct{}{
				tableName("poet") + "/p1": {},
			}

			entity, err := r.hydrate(context.Background(), "1", []byte(`{"title": "ozymandias", "author": "p1"}`), resolving)
			require.Nil(t, err)
			assert.Nil(t, entity.(*poem).Author)
		})
	})
}

func TestRepository_Dehydrate(t *testing.T) {
	t.Run("will store a relation field", func(t *testing.T) {
		t.Run("as the referenced identifier only", func(t *testing.T) {
			r := testRepository(t, "poem")

			doc, err := r.dehydrate(&poem{
				ID:     "1",
				Title:  "ozymandias",
				Author: &poet{ID: "p1", Name: "shelley"},
			})
			require.Nil(t, err)
			assert.JSONEq(t, `{"title": "ozymandias", "author": "p1"}`, string(doc))
		})

		t.Run("omitting it entirely when unset", func(t *testing.T) {
			r := testRepository(t, "poem")

			doc, err := r.dehydrate(&poem{ID: "1", Title: "ozymandias"})
			require.Nil(t, err)
			assert.JSONEq(t, `{"title": "ozymandias"}`, string(doc))
		})
	})
}

func TestTranslateErr(t *testing.T) {
	t.Run("will report a conflict", func(t *testing.T) {
		t.Run("for a unique constraint violation", func(t *testing.T) {
			err := translateErr(&pgconn.PgError{Code: uniqueViolation})
			assert.ErrorIs(t, err, rest.ErrConflict)
		})
	})

	t.Run("will pass through", func(t *testing.T) {
		t.Run("any other error", func(t *testing.T) {
			orig := &pgconn.PgError{Code: "42P01"}
			assert.Equal(t, orig, translateErr(orig))
		})
	})
}
