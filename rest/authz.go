// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"

	"github.com/z5labs/strata/schema"
)

// Identity is the authenticated actor of a request.
type Identity interface {
	Subject() string
}

// Authorizer is the authentication/identity collaborator: a single
// yes/no capability check plus access to the current actor.
type Authorizer interface {
	// IsGranted evaluates a privilege's permission expression for the
	// current actor. It must return false for unauthenticated actors.
	IsGranted(ctx context.Context, expression string) bool

	// CurrentUser returns the authenticated actor, if any.
	CurrentUser(ctx context.Context) (Identity, bool)
}

// Anonymous is an [Authorizer] with no identity backend: every request is
// unauthenticated and only public privileges match.
type Anonymous struct{}

// IsGranted implements the [Authorizer] interface. It always denies.
func (Anonymous) IsGranted(ctx context.Context, expression string) bool {
	return false
}

// CurrentUser implements the [Authorizer] interface.
func (Anonymous) CurrentUser(ctx context.Context) (Identity, bool) {
	return nil, false
}

// matchPrivilege selects the first privilege, in declaration order, whose
// granted expression is satisfied by the current actor. A privilege with
// an empty expression is public and matches any actor.
func matchPrivilege(ctx context.Context, authz Authorizer, privileges []schema.Privilege) (schema.Privilege, bool) {
	for _, priv := range privileges {
		if priv.Granted == "" {
			return priv, true
		}
		if authz.IsGranted(ctx, priv.Granted) {
			return priv, true
		}
	}
	return schema.Privilege{}, false
}

// mayRead reports whether the current actor can GET the given collection.
func mayRead(ctx context.Context, authz Authorizer, c *schema.Collection) bool {
	priv, ok := matchPrivilege(ctx, authz, c.Privileges)
	if !ok {
		return false
	}
	for _, m := range priv.Methods {
		if m == "GET" {
			return true
		}
	}
	return false
}
