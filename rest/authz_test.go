// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"testing"

	"github.com/z5labs/strata/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantFunc func(expression string) bool

func (f grantFunc) IsGranted(ctx context.Context, expression string) bool {
	return f(expression)
}

func (grantFunc) CurrentUser(ctx context.Context) (Identity, bool) {
	return nil, false
}

func TestMatchPrivilege(t *testing.T) {
	t.Run("will match", func(t *testing.T) {
		t.Run("a public privilege for any actor", func(t *testing.T) {
			privileges := []schema.Privilege{
				{Granted: "", Methods: []string{"GET"}},
			}

			priv, ok := matchPrivilege(context.Background(), Anonymous{}, privileges)
			require.True(t, ok)
			assert.Equal(t, []string{"GET"}, priv.Methods)
		})

		t.Run("the first satisfied privilege in declaration order", func(t *testing.T) {
			privileges := []schema.Privilege{
				{Granted: "ROLE_ADMIN", Methods: []string{"GET", "DELETE"}},
				{Granted: "ROLE_USER", Methods: []string{"GET"}},
			}

			authz := grantFunc(func(expression string) bool {
				return expression == "ROLE_ADMIN" || expression == "ROLE_USER"
			})

			priv, ok := matchPrivilege(context.Background(), authz, privileges)
			require.True(t, ok)
			assert.Equal(t, "ROLE_ADMIN", priv.Granted)
		})

		t.Run("a later privilege when earlier ones are not granted", func(t *testing.T) {
			privileges := []schema.Privilege{
				{Granted: "ROLE_ADMIN", Methods: []string{"DELETE"}},
				{Granted: "", Methods: []string{"GET"}},
			}

			priv, ok := matchPrivilege(context.Background(), Anonymous{}, privileges)
			require.True(t, ok)
			assert.Equal(t, []string{"GET"}, priv.Methods)
		})
	})

	t.Run("will not match", func(t *testing.T) {
		t.Run("if no privilege is public or granted", func(t *testing.T) {
			privileges := []schema.Privilege{
				{Granted: "ROLE_ADMIN", Methods: []string{"GET"}},
			}

			_, ok := matchPrivilege(context.Background(), Anonymous{}, privileges)
			assert.False(t, ok)
		})

		t.Run("if the collection declares no privileges at all", func(t *testing.T) {
			_, ok := matchPrivilege(context.Background(), Anonymous{}, nil)
			assert.False(t, ok)
		})
	})
}

func TestMayRead(t *testing.T) {
	t.Run("will report true", func(t *testing.T) {
		t.Run("if the matched privilege includes GET", func(t *testing.T) {
			c := &schema.Collection{
				Privileges: []schema.Privilege{
					{Granted: "", Methods: []string{"GET", "POST"}},
				},
			}
			assert.True(t, mayRead(context.Background(), Anonymous{}, c))
		})
	})

	t.Run("will report false", func(t *testing.T) {
		t.Run("if the matched privilege excludes GET", func(t *testing.T) {
			c := &schema.Collection{
				Privileges: []schema.Privilege{
					{Granted: "", Methods: []string{"POST"}},
				},
			}
			assert.False(t, mayRead(context.Background(), Anonymous{}, c))
		})

		t.Run("if no privilege matches", func(t *testing.T) {
			c := &schema.Collection{
				Privileges: []schema.Privilege{
					{Granted: "ROLE_ADMIN", Methods: []string{"GET"}},
				},
			}
			assert.False(t, mayRead(context.Background(), Anonymous{}, c))
		})
	})
}

func TestMethodNotAllowedError(t *testing.T) {
	t.Run("will enumerate the allowed methods", func(t *testing.T) {
		t.Run("quoted and comma separated", func(t *testing.T) {
			err := MethodNotAllowedError{
				Method:  "DELETE",
				Allowed: []string{"GET", "POST"},
			}
			assert.Equal(t, `method DELETE is not allowed, allowed methods: "GET", "POST"`, err.Error())
		})
	})
}
