// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package resolve computes the effective value of every inheritable
// configuration field in a [schema.Tree].
//
// Resolution is strictly cascading and one-directional: an endpoint
// overrides its collection which overrides its provider which overrides
// the builtin defaults. A child's explicitly set value always wins and
// absence (a nil pointer) triggers inheritance.
//
// Resolvers run in three fixed groups: provider level first (version
// assignment, prefix normalization), then collection level (pagination,
// rate limit, deprecation, path and template cascades), then endpoint
// level (the same cascade one level deeper plus handler binding and
// required-parameter inference). Each group only reads values the prior
// group already resolved, so the whole chain is idempotent.
package resolve

import (
	"github.com/z5labs/strata/schema"
)

// Resolver is one pure transformation over the whole tree.
type Resolver interface {
	Resolve(*schema.Tree) error
}

// ResolverFunc is a func type of the [Resolver] interface.
type ResolverFunc func(*schema.Tree) error

// Resolve implements the [Resolver] interface.
func (f ResolverFunc) Resolve(t *schema.Tree) error {
	return f(t)
}

// Chain is an ordered set of [Resolver]s.
type Chain []Resolver

// DefaultChain returns the resolver chain strata applies before serving:
// provider, collection and then endpoint level resolvers.
func DefaultChain() Chain {
	return Chain{
		// provider level
		ResolverFunc(assignVersionNumbers),
		ResolverFunc(resolveProviderDefaults),
		// collection level
		ResolverFunc(resolveCollectionPaths),
		ResolverFunc(resolveCollectionSettings),
		// endpoint level
		ResolverFunc(materializeEndpoints),
		ResolverFunc(resolveEndpointSettings),
		ResolverFunc(bindEndpointHandlers),
	}
}

// Resolve deep-copies the raw tree, runs the chain over the copy and
// validates the result. The input tree is never mutated. Running the
// returned tree through Resolve again produces an equal tree.
func (c Chain) Resolve(raw *schema.Tree) (*schema.Tree, error) {
	t := raw.Clone()
	for _, r := range c {
		if err := r.Resolve(t); err != nil {
			return nil, err
		}
	}
	if err := schema.Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve runs the default chain over raw.
func Resolve(raw *schema.Tree) (*schema.Tree, error) {
	return DefaultChain().Resolve(raw)
}

func coalesce[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// coalesceMap implements wholesale map inheritance: the child's map is
// authoritative unless it is empty and the parent's is not.
func coalesceMap[M ~map[K]V, K comparable, V any](child, parent M) M {
	if len(child) == 0 && len(parent) > 0 {
		return parent
	}
	return child
}
