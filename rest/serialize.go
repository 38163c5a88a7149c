// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
)

// Serializer is the object-to-wire collaborator. Normalize flattens an
// entity into a JSON compatible map honoring serializer groups, and
// Denormalize builds a new entity of the named type from such a map.
type Serializer interface {
	Normalize(ctx context.Context, entity any, groups []string) (map[string]any, error)
	Denormalize(ctx context.Context, data map[string]any, entity string) (any, error)
}

// RegistrySerializer is the default [Serializer]: it serializes through
// the declared field tables of a [Registry].
type RegistrySerializer struct {
	registry *Registry
}

// NewRegistrySerializer initializes a [RegistrySerializer].
func NewRegistrySerializer(r *Registry) *RegistrySerializer {
	return &RegistrySerializer{
		registry: r,
	}
}

func groupsIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// NormalizeAs normalizes an entity under an explicitly named type.
func (s *RegistrySerializer) NormalizeAs(ctx context.Context, entity any, name string, groups []string) (map[string]any, error) {
	def, err := s.registry.Definition(name)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(def.Fields)+1)
	out["id"] = def.ID(entity)
	for field, f := range def.Fields {
		if len(f.Groups) > 0 && !groupsIntersect(f.Groups, groups) {
			continue
		}
		v := f.Get(entity)
		if f.Relation == "" {
			out[field] = v
			continue
		}
		if v == nil {
			out[field] = nil
			continue
		}
		nested, err := s.NormalizeAs(ctx, v, f.Relation, groups)
		if err != nil {
			return nil, err
		}
		out[field] = nested
	}
	return out, nil
}

// Normalize implements the [Serializer] interface by locating the
// entity's definition by probing every registered type's field table.
// Entities registered under exactly one type resolve unambiguously via
// their definition name; callers inside the pipeline always know the
// type and use [RegistrySerializer.NormalizeAs] instead.
func (s *RegistrySerializer) Normalize(ctx context.Context, entity any, groups []string) (map[string]any, error) {
	for name, def := range s.registry.defs {
		if def.Is != nil && def.Is(entity) {
			return s.NormalizeAs(ctx, entity, name, groups)
		}
	}
	return nil, UnknownEntityError{Entity: "(unregistered)"}
}

// Denormalize implements the [Serializer] interface. Relation fields are
// skipped; the pipeline resolves and attaches them separately.
func (s *RegistrySerializer) Denormalize(ctx context.Context, data map[string]any, entity string) (any, error) {
	def, err := s.registry.Definition(entity)
	if err != nil {
		return nil, err
	}

	e := def.New()
	for field, value := range data {
		f, ok := def.Fields[field]
		if !ok || f.Relation != "" || f.Set == nil {
			continue
		}
		if err := f.Set(e, value); err != nil {
			return nil, BadRequestError{Cause: err}
		}
	}
	return e, nil
}
