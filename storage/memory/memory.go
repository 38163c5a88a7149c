// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package memory provides an in-memory [rest.Store]. It is meant for
// examples and tests but implements the full repository contract,
// including deferred writes and unique identifier conflicts.
package memory

import (
	"context"
	"sync"

	"github.com/z5labs/strata/rest"

	"github.com/google/uuid"
)

// Store is an in-memory [rest.Store] keyed by entity type.
type Store struct {
	registry *rest.Registry

	mu     sync.RWMutex
	tables map[string]*table
}

type table struct {
	def  rest.Entity
	rows map[string]any

	// ids preserves insertion order so unordered listings are stable.
	ids []string
}

// NewStore initializes a [Store] for the entity types in registry.
func NewStore(registry *rest.Registry) *Store {
	return &Store{
		registry: registry,
		tables:   make(map[string]*table),
	}
}

// Repository implements the [rest.Store] interface.
func (s *Store) Repository(entity string) (rest.Repository, error) {
	def, err := s.registry.Definition(entity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.tables[entity]
	if !ok {
		tbl = &table{
			def:  def,
			rows: make(map[string]any),
		}
		s.tables[entity] = tbl
	}
	return &repository{
		store: s,
		table: tbl,
	}, nil
}

type pendingOp struct {
	entity any
	remove bool
}

type repository struct {
	store *Store
	table *table

	pending []pendingOp
}

// Find implements the [rest.Repository] interface.
func (r *repository) Find(ctx context.Context, id string) (any, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	row, ok := r.table.rows[id]
	if !ok {
		return nil, rest.ErrNotFound
	}
	return row, nil
}

// FindBy implements the [rest.Repository] interface.
func (r *repository) FindBy(ctx context.Context, filter rest.Filter, order []rest.Order, limit, offset int) ([]any, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := r.match(filter)
	sortRows(matched, r.table.def, order)

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count implements the [rest.Repository] interface.
func (r *repository) Count(ctx context.Context, filter rest.Filter) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.match(filter)), nil
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

// Flush implements the [rest.Repository] interface. An entity without
// an identifier is assigned a fresh one before it is stored. Persisting
// a new entity under an identifier already held by a different entity
// fails with [rest.ErrConflict].
func (r *repository) Flush(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pending := r.pending
	r.pending = nil

	for _, op := range pending {
		id := r.table.def.ID(op.entity)

		if op.remove {
			if _, ok := r.table.rows[id]; !ok {
				continue
			}
			delete(r.table.rows, id)
			r.table.ids = deleteID(r.table.ids, id)
			continue
		}

		if id == "" {
			id = uuid.NewString()
			if err := setID(r.table.def, op.entity, id); err != nil {
				return err
			}
		}

		existing, ok := r.table.rows[id]
		if ok && existing != op.entity {
			return rest.ErrConflict
		}
		if !ok {
			r.table.ids = append(r.table.ids, id)
		}
		r.table.rows[id] = op.entity
	}
	return nil
}

// match evaluates filter over the table in insertion order. Caller must
// hold at least a read lock.
func (r *repository) match(filter rest.Filter) []any {
	matched := make([]any, 0, len(r.table.ids))
	for _, id := range r.table.ids {
		row := r.table.rows[id]
		if matches(r.table.def, row, filter) {
			matched = append(matched, row)
		}
	}
	return matched
}

func setID(def rest.Entity, entity any, id string) error {
	f, ok := def.Fields["id"]
	if !ok || f.Set == nil {
		return nil
	}
	return f.Set(entity, id)
}

func deleteID(ids []string, id string) []string {
	for i, v := range ids {
		if v != id {
			continue
		}
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
