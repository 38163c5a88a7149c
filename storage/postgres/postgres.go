// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package postgres provides a PostgreSQL backed [rest.Store]. Every
// entity type is stored in its own table as an identifier keyed JSONB
// document, so collections never require per-type migrations beyond
// [Store.Migrate].
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/z5labs/strata/rest"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL backed [rest.Store].
type Store struct {
	registry *rest.Registry
	pool     *pgxpool.Pool
}

// NewStore initializes a [Store] over an existing connection pool.
func NewStore(pool *pgxpool.Pool, registry *rest.Registry) *Store {
	return &Store{
		registry: registry,
		pool:     pool,
	}
}

// Migrate creates the backing table for every registered entity type
// named in entities.
func (s *Store) Migrate(ctx context.Context, entities ...string) error {
	for _, entity := range entities {
		if _, err := s.registry.Definition(entity); err != nil {
			return err
		}

		sql := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, doc jsonb NOT NULL)`,
			tableName(entity),
		)
		if _, err := s.pool.Exec(ctx, sql); err != nil {
			return err
		}
	}
	return nil
}

// Repository implements the [rest.Store] interface.
func (s *Store) Repository(entity string) (rest.Repository, error) {
	def, err := s.registry.Definition(entity)
	if err != nil {
		return nil, err
	}
	return &repository{
		pool:     s.pool,
		registry: s.registry,
		def:      def,
		table:    tableName(entity),
		hydrated: make(map[string]struct{}),
	}, nil
}

func tableName(entity string) string {
	return pgx.Identifier{entity}.Sanitize()
}

type pendingOp struct {
	entity any
	remove bool
}

type repository struct {
	pool     *pgxpool.Pool
	registry *rest.Registry
	def      rest.Entity
	table    string

	pending []pendingOp

	// hydrated holds every identifier read through this repository.
	// Flushing one of them is an update, any other identifier is a
	// create attempt.
	hydrated map[string]struct{}
}

// Find implements the [rest.Repository] interface.
func (r *repository) Find(ctx context.Context, id string) (any, error) {
	return r.find(ctx, id, make(map[string]struct{}))
}

func (r *repository) find(ctx context.Context, id string, resolving map[string]struct{}) (any, error) {
	sql := fmt.Sprintf(`SELECT doc FROM %s WHERE id = $1`, r.table)

	var doc []byte
	err := r.pool.QueryRow(ctx, sql, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, rest.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, id, doc, resolving)
}

// FindBy implements the [rest.Repository] interface.
func (r *repository) FindBy(ctx context.Context, filter rest.Filter, order []rest.Order, limit, offset int) ([]any, error) {
	var q queryBuilder
	q.writef("SELECT id, doc FROM %s", r.table)
	q.where(filter)
	q.orderBy(order)
	q.window(limit, offset)

	rows, err := r.pool.Query(ctx, q.sql(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []any
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}

		entity, err := r.hydrate(ctx, id, doc, make(map[string]struct{}))
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// Count implements the [rest.Repository] interface.
func (r *repository) Count(ctx context.Context, filter rest.Filter) (int, error) {
	var q queryBuilder
	q.writef("SELECT count(*) FROM %s", r.table)
	q.where(filter)

	var n int
	err := r.pool.QueryRow(ctx, q.sql(), q.args...).Scan(&n)
	return n, err
}

// Persist implements the [rest.Repository] interface.
func (r *repository) Persist(ctx context.Context, entity any) error {
	r.pending = append(r.pending, pendingOp{entity: entity})
	return nil
}

// Remove implements the [rest.Repository] interface.
func (r *repository) Remove(ctx context.Context, entity any) error {
	r.pending = append(r.pending, pendingOp{entity: entity, remove: true})
	return nil
}

// Flush implements the [rest.Repository] interface. All pending writes
// commit in a single transaction. Entities previously read through this
// repository update in place; persisting any other identifier is a
// create, so a taken identifier reports as [rest.ErrConflict].
func (r *repository) Flush(ctx context.Context) (err error) {
	pending := r.pending
	r.pending = nil
	if len(pending) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		rollbackErr := tx.Rollback(ctx)
		if err == nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			err = rollbackErr
		}
	}()

	for _, op := range pending {
		if op.remove {
			sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
			if _, err := tx.Exec(ctx, sql, r.def.ID(op.entity)); err != nil {
				return translateErr(err)
			}
			continue
		}

		id := r.def.ID(op.entity)
		if id == "" {
			id = uuid.NewString()
			if err := setID(r.def, op.entity, id); err != nil {
				return err
			}
		}

		doc, err := r.dehydrate(op.entity)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, r.persistSQL(id), id, doc); err != nil {
			return translateErr(err)
		}
	}
	return tx.Commit(ctx)
}

// dehydrate renders an entity as its JSONB document. Relation fields
// store only the referenced identifier.
func (r *repository) dehydrate(entity any) ([]byte, error) {
	doc := make(map[string]any, len(r.def.Fields))
	for name, f := range r.def.Fields {
		if name == "id" || f.Get == nil {
			continue
		}

		v := f.Get(entity)
		if f.Relation == "" {
			doc[name] = v
			continue
		}
		if v == nil {
			continue
		}

		target, err := r.registry.Definition(f.Relation)
		if err != nil {
			return nil, err
		}
		doc[name] = target.ID(v)
	}
	return json.Marshal(doc)
}

// persistSQL selects the write statement for one pending entity: an
// upsert when the identifier was hydrated through this repository, a
// plain insert otherwise so creates trip the unique constraint.
func (r *repository) persistSQL(id string) string {
	sql := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2)`, r.table)
	if _, seen := r.hydrated[id]; seen {
		sql += ` ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc`
	}
	return sql
}

// hydrate reconstructs an entity from its stored document. Relation
// fields hold the referenced identifier, so each one resolves through
// the target entity's table. The resolving set tracks the identifiers
// currently on the hydration path; a reference back onto that path is
// left unset instead of recursing forever.
func (r *repository) hydrate(ctx context.Context, id string, doc []byte, resolving map[string]struct{}) (any, error) {
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, err
	}

	if r.hydrated == nil {
		r.hydrated = make(map[string]struct{})
	}
	r.hydrated[id] = struct{}{}
	resolving[r.table+"/"+id] = struct{}{}

	entity := r.def.New()
	if err := setID(r.def, entity, id); err != nil {
		return nil, err
	}
	for name, f := range r.def.Fields {
		if name == "id" || f.Set == nil {
			continue
		}
		v, ok := fields[name]
		if !ok {
			continue
		}

		if f.Relation == "" {
			if err := f.Set(entity, v); err != nil {
				return nil, err
			}
			continue
		}

		relID, ok := v.(string)
		if !ok || relID == "" {
			continue
		}
		target, err := r.related(f.Relation)
		if err != nil {
			return nil, err
		}
		if _, onPath := resolving[target.table+"/"+relID]; onPath {
			continue
		}

		related, err := target.find(ctx, relID, resolving)
		if errors.Is(err, rest.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := f.Set(entity, related); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

// related builds a read-only sibling repository over the target entity's
// table.
func (r *repository) related(entity string) (*repository, error) {
	def, err := r.registry.Definition(entity)
	if err != nil {
		return nil, err
	}
	return &repository{
		pool:     r.pool,
		registry: r.registry,
		def:      def,
		table:    tableName(entity),
	}, nil
}

func setID(def rest.Entity, entity any, id string) error {
	f, ok := def.Fields["id"]
	if !ok || f.Set == nil {
		return nil
	}
	return f.Set(entity, id)
}

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return rest.ErrConflict
	}
	return err
}
