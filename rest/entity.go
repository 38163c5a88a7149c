// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
)

// Field describes one hydratable field of an entity type. The explicit
// getter/setter pair makes hydration a static dispatch over a known field
// set instead of runtime reflection.
type Field struct {
	// Relation names the target entity type when this field holds a
	// reference to another collection's entity. Empty for plain fields.
	Relation string

	// Groups restricts serialization of this field to requests whose
	// collection declares at least one of these serializer groups. A
	// field without groups is always serialized.
	Groups []string

	// Get must return an untyped nil for an unset relation, not a
	// typed nil pointer.
	Get func(entity any) any
	Set func(entity any, value any) error
}

// FieldMap is the declared field table of one entity type.
type FieldMap map[string]Field

// Entity declares one storage-mapped type to the pipeline.
type Entity struct {
	// Name is the entity type key collections bind to.
	Name string

	// New returns a fresh zero value of the entity type.
	New func() any

	// Is reports whether a value is an instance of the entity type.
	Is func(entity any) bool

	// ID returns the entity's identifier in its URL form.
	ID func(entity any) string

	Fields FieldMap
}

// UnknownEntityError indicates a collection is bound to an entity type
// which was never registered.
type UnknownEntityError struct {
	Entity string
}

func (e UnknownEntityError) Error() string {
	return fmt.Sprintf("rest: unknown entity type: %s", e.Entity)
}

// Registry holds every registered [Entity] definition. It is built once
// at startup and read-only afterwards.
type Registry struct {
	defs map[string]Entity
}

// NewRegistry initializes a [Registry].
func NewRegistry(defs ...Entity) *Registry {
	r := &Registry{
		defs: make(map[string]Entity, len(defs)),
	}
	for _, def := range defs {
		r.defs[def.Name] = def
	}
	return r
}

// Definition returns the [Entity] registered under name.
func (r *Registry) Definition(name string) (Entity, error) {
	def, ok := r.defs[name]
	if !ok {
		return Entity{}, UnknownEntityError{Entity: name}
	}
	return def, nil
}

// Associations returns the relation fields of an entity type as a
// field name to target entity type mapping.
func (r *Registry) Associations(name string) map[string]string {
	def, ok := r.defs[name]
	if !ok {
		return nil
	}
	assocs := make(map[string]string)
	for field, f := range def.Fields {
		if f.Relation != "" {
			assocs[field] = f.Relation
		}
	}
	return assocs
}
