package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetch/accesskit/pkg/tenant"
)

func TestCachingStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backing := tenant.NewMemoryStore()
	cached := tenant.NewCachingStore(backing, tenant.NewMemoryCache(time.Minute))

	acme := tenant.New("Acme", "acme")
	require.NoError(t, cached.Create(ctx, acme))

	t.Run("get populates cache", func(t *testing.T) {
		got, err := cached.Get(ctx, acme.ID)
		require.NoError(t, err)
		assert.Equal(t, acme.Code, got.Code)

		// A second read is served from the cache: mutating the returned
		// copy must not leak into later reads.
		got.Name = "mutated"
		again, err := cached.Get(ctx, acme.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", again.Name)
	})

	t.Run("get by code", func(t *testing.T) {
		got, err := cached.GetByCode(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, acme.ID, got.ID)
	})

	t.Run("miss passes through", func(t *testing.T) {
		_, err := cached.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("exists and list bypass the cache", func(t *testing.T) {
		ok, err := cached.ExistsByCode(ctx, "acme")
		require.NoError(t, err)
		assert.True(t, ok)

		all, err := cached.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
