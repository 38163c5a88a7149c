// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"

	"github.com/z5labs/strata/schema"
)

// ErrNotFound is returned by [Repository.Find] when no entity exists
// under the given identifier.
var ErrNotFound = errors.New("rest: entity not found")

// ErrConflict is returned by [Repository.Flush] when a pending write
// violates a unique constraint.
var ErrConflict = errors.New("rest: unique constraint violated")

// Condition is a single field comparison.
type Condition struct {
	Field string
	Op    schema.Operator
	Value any
}

// Filter combines conditions. All conditions are conjunctive, Any
// conditions are disjunctive; both sets must hold, i.e. the filter reads
// AND(All...) && OR(Any...). An empty filter matches everything.
type Filter struct {
	All []Condition
	Any []Condition
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return len(f.All) == 0 && len(f.Any) == 0
}

// Order is one list ordering term.
type Order struct {
	Field     string
	Direction schema.SortOrder
}

// Repository is the storage collaborator for one entity type. Persist
// and Remove defer their writes until Flush commits them. The pipeline
// always pairs a write with a Flush before emitting a response.
type Repository interface {
	// Find returns the entity stored under id, or [ErrNotFound].
	Find(ctx context.Context, id string) (any, error)

	// FindBy returns the entities matching filter, ordered by order,
	// windowed by limit and offset. A non-positive limit means no limit.
	FindBy(ctx context.Context, filter Filter, order []Order, limit, offset int) ([]any, error)

	// Count returns the number of entities matching filter. Callers must
	// pass the same filter value they pass to FindBy so count and items
	// can not skew within one request.
	Count(ctx context.Context, filter Filter) (int, error)

	Persist(ctx context.Context, entity any) error
	Remove(ctx context.Context, entity any) error
	Flush(ctx context.Context) error
}

// Store resolves the [Repository] for a named entity type.
type Store interface {
	Repository(entity string) (Repository, error)
}
