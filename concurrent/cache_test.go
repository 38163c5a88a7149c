// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package concurrent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOr(t *testing.T) {
	t.Run("will construct the value", func(t *testing.T) {
		t.Run("if the key has not been cached yet", func(t *testing.T) {
			c := NewCache[string, int]()

			v, err := c.GetOr("a", func() (int, error) {
				return 1, nil
			})
			require.Nil(t, err)
			assert.Equal(t, 1, v)
		})
	})

	t.Run("will return the cached value", func(t *testing.T) {
		t.Run("if the key has been cached before", func(t *testing.T) {
			c := NewCache[string, int]()

			_, err := c.GetOr("a", func() (int, error) {
				return 1, nil
			})
			require.Nil(t, err)

			v, err := c.GetOr("a", func() (int, error) {
				return 2, nil
			})
			require.Nil(t, err)
			assert.Equal(t, 1, v)

			v, ok := c.Get("a")
			require.True(t, ok)
			assert.Equal(t, 1, v)
		})
	})

	t.Run("will not cache anything", func(t *testing.T) {
		t.Run("if the value constructor fails", func(t *testing.T) {
			c := NewCache[string, int]()

			constructErr := errors.New("construct failed")
			_, err := c.GetOr("a", func() (int, error) {
				return 0, constructErr
			})
			require.ErrorIs(t, err, constructErr)

			_, ok := c.Get("a")
			assert.False(t, ok)
		})
	})
}
