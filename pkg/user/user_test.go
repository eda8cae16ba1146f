package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetch/accesskit/pkg/user"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := user.NewMemoryStore()
	u := user.New("alice@example.com", "alice", "hash")
	require.NoError(t, store.Create(ctx, u))

	t.Run("get by id", func(t *testing.T) {
		got, err := store.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.True(t, got.Enabled)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := store.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("exists", func(t *testing.T) {
		assert.NoError(t, store.Exists(ctx, u.ID))
		assert.ErrorIs(t, store.Exists(ctx, uuid.New()), user.ErrUserNotFound)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := user.New("alice@example.com", "alice2", "hash")
		assert.ErrorIs(t, store.Create(ctx, dup), user.ErrUserExists)
	})

	t.Run("set enabled", func(t *testing.T) {
		require.NoError(t, store.SetEnabled(ctx, u.ID, false))
		got, err := store.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, got.Enabled)

		assert.ErrorIs(t, store.SetEnabled(ctx, uuid.New(), true), user.ErrUserNotFound)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := user.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, user.VerifyPassword(hash, "s3cret"))
	assert.False(t, user.VerifyPassword(hash, "wrong"))
}
