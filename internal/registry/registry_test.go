package registry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockclaim/blockclaim-backend/internal/apperror"
)

func TestRegistry_Register(t *testing.T) {
	t.Run("Assigns a fresh identity with name and palette color", func(t *testing.T) {
		// Given: an empty registry
		reg := New()

		// When: a connection registers
		user := reg.Register("conn-1")

		// Then: the user has an id, a generated name and a palette color
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.Name)
		assert.Contains(t, colorPalette, user.Color)
		assert.Zero(t, user.BlocksOwned)
		assert.False(t, user.JoinedAt.IsZero())

		// And: the registry tracks it
		assert.Equal(t, 1, reg.Count())
	})

	t.Run("Identity ids never collide", func(t *testing.T) {
		// Given: many registrations
		reg := New()
		seen := make(map[string]struct{})

		// When: registering 100 connections
		for i := 0; i < 100; i++ {
			user := reg.Register(fmt.Sprintf("conn-%d", i))

			// Then: every id is unique
			_, dup := seen[user.ID]
			require.False(t, dup, "duplicate id %s", user.ID)
			seen[user.ID] = struct{}{}
		}
	})

	t.Run("Connected users get distinct palette colors while capacity allows", func(t *testing.T) {
		// Given: as many registrations as palette colors
		reg := New()
		seen := make(map[string]struct{})

		// When: filling the palette
		for i := 0; i < len(colorPalette); i++ {
			user := reg.Register(fmt.Sprintf("conn-%d", i))

			// Then: no color repeats
			_, dup := seen[user.Color]
			require.False(t, dup, "duplicate color %s", user.Color)
			seen[user.Color] = struct{}{}
		}
	})

	t.Run("Falls back to a generated color when the palette is exhausted", func(t *testing.T) {
		// Given: a registry with every palette color in use
		reg := New()
		for i := 0; i < len(colorPalette); i++ {
			reg.Register(fmt.Sprintf("conn-%d", i))
		}

		// When: one more connection registers
		user := reg.Register("conn-extra")

		// Then: registration still succeeds, with an hsl fallback color
		assert.NotEmpty(t, user.Color)
		assert.True(t, strings.HasPrefix(user.Color, "hsl("), "got color %s", user.Color)
	})
}

func TestRegistry_Unregister(t *testing.T) {
	t.Run("Removes the user and releases its color", func(t *testing.T) {
		// Given: one registered connection
		reg := New()
		user := reg.Register("conn-1")

		// When: it unregisters
		removed, ok := reg.Unregister("conn-1")

		// Then: the removed user is returned for broadcasting
		require.True(t, ok)
		assert.Equal(t, user.ID, removed.ID)
		assert.Equal(t, 0, reg.Count())

		// And: the color is available again for the whole palette cycle
		seen := make(map[string]struct{})
		for i := 0; i < len(colorPalette); i++ {
			next := reg.Register(fmt.Sprintf("again-%d", i))
			_, dup := seen[next.Color]
			require.False(t, dup)
			seen[next.Color] = struct{}{}
		}
	})

	t.Run("Unknown connections are a no-op", func(t *testing.T) {
		// Given: an empty registry
		reg := New()

		// When: unregistering a connection that never registered
		_, ok := reg.Unregister("conn-ghost")

		// Then: nothing is returned
		assert.False(t, ok)
	})
}

func TestRegistry_Rename(t *testing.T) {
	t.Run("Trims surrounding whitespace", func(t *testing.T) {
		// Given: a registered user
		reg := New()
		user := reg.Register("conn-1")

		// When: renaming with padded input
		updated, err := reg.Rename(user.ID, "  Bear2  ")

		// Then: the stored name is trimmed
		require.NoError(t, err)
		assert.Equal(t, "Bear2", updated.Name)
	})

	t.Run("Truncates names beyond the length bound", func(t *testing.T) {
		// Given: a registered user
		reg := New()
		user := reg.Register("conn-1")

		// When: renaming with an oversized name
		updated, err := reg.Rename(user.ID, strings.Repeat("a", 40))

		// Then: the name is cut to the bound
		require.NoError(t, err)
		assert.Len(t, updated.Name, 20)
	})

	t.Run("Rejects empty and whitespace-only names", func(t *testing.T) {
		// Given: a registered user
		reg := New()
		user := reg.Register("conn-1")

		for _, name := range []string{"", "   "} {
			// When: renaming to a blank value
			_, err := reg.Rename(user.ID, name)

			// Then: the rename is rejected
			require.ErrorIs(t, err, apperror.ErrEmptyName)
		}

		// And: the original name is untouched
		current, ok := reg.GetByConn("conn-1")
		require.True(t, ok)
		assert.Equal(t, user.Name, current.Name)
	})

	t.Run("Rejects renames for unknown identities", func(t *testing.T) {
		// Given: an empty registry
		reg := New()

		// When: renaming an identity that does not exist
		_, err := reg.Rename("ghost", "Bear2")

		// Then: the identity lookup fails
		assert.ErrorIs(t, err, apperror.ErrIdentityNotFound)
	})
}

func TestRegistry_IncrementBlocks(t *testing.T) {
	t.Run("Bumps the tally of a connected user", func(t *testing.T) {
		// Given: a registered user
		reg := New()
		user := reg.Register("conn-1")

		// When: incrementing twice
		reg.IncrementBlocks(user.ID)
		reg.IncrementBlocks(user.ID)

		// Then: the tally reflects both claims
		current, ok := reg.GetByConn("conn-1")
		require.True(t, ok)
		assert.Equal(t, 2, current.BlocksOwned)
	})

	t.Run("Ignores users that already disconnected", func(t *testing.T) {
		// Given: a user that registered and left
		reg := New()
		user := reg.Register("conn-1")
		_, ok := reg.Unregister("conn-1")
		require.True(t, ok)

		// When: incrementing after disconnect
		reg.IncrementBlocks(user.ID)

		// Then: no panic, no resurrection
		assert.Equal(t, 0, reg.Count())
	})
}

func TestRegistry_List(t *testing.T) {
	// Given: three registrations in order
	reg := New()
	first := reg.Register("conn-1")
	second := reg.Register("conn-2")
	third := reg.Register("conn-3")

	// When: listing connected users
	users := reg.List()

	// Then: the snapshot preserves registration order
	require.Len(t, users, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID},
		[]string{users[0].ID, users[1].ID, users[2].ID})
}
