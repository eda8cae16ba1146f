package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetch/accesskit/pkg/rbac"
)

func TestNewCatalog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		roles   []rbac.Role
		wantErr error
	}{
		{
			name:  "default seed is valid",
			roles: rbac.DefaultRoles(),
		},
		{
			name: "duplicate name rejected",
			roles: []rbac.Role{
				{ID: 1, Name: "ADMIN", Scope: rbac.ScopeGlobal},
				{ID: 2, Name: "ADMIN", Scope: rbac.ScopeGlobal},
			},
			wantErr: rbac.ErrDuplicateRole,
		},
		{
			name: "duplicate id rejected",
			roles: []rbac.Role{
				{ID: 1, Name: "ADMIN", Scope: rbac.ScopeGlobal},
				{ID: 1, Name: "USER", Scope: rbac.ScopeGlobal},
			},
			wantErr: rbac.ErrDuplicateRole,
		},
		{
			name: "empty name rejected",
			roles: []rbac.Role{
				{ID: 1, Name: "", Scope: rbac.ScopeGlobal},
			},
			wantErr: rbac.ErrInvalidRole,
		},
		{
			name: "unknown scope rejected",
			roles: []rbac.Role{
				{ID: 1, Name: "ADMIN", Scope: "REGIONAL"},
			},
			wantErr: rbac.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			catalog, err := rbac.NewCatalog(ctx, rbac.NewStaticSource(tt.roles))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, catalog)
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	catalog, err := rbac.NewCatalog(ctx, rbac.NewStaticSource(rbac.DefaultRoles()))
	require.NoError(t, err)

	t.Run("by name", func(t *testing.T) {
		role, err := catalog.ByName(rbac.RoleTenantAdmin)
		require.NoError(t, err)
		assert.Equal(t, rbac.ScopeTenant, role.Scope)
		assert.True(t, role.Can(rbac.PermResourceCreate))
		assert.False(t, role.Can(rbac.PermTenantCreate))
	})

	t.Run("by id", func(t *testing.T) {
		role, err := catalog.ByID(1)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleAdmin, role.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := catalog.ByName("AUDITOR")
		assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := catalog.ByID(99)
		assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
	})

	t.Run("require present", func(t *testing.T) {
		role, err := catalog.Require(rbac.RoleTenantAdmin)
		require.NoError(t, err)
		assert.Equal(t, rbac.RoleTenantAdmin, role.Name)
	})

	t.Run("require missing is a configuration error", func(t *testing.T) {
		empty, err := rbac.NewCatalog(ctx, rbac.NewStaticSource(nil))
		require.NoError(t, err)
		_, err = empty.Require(rbac.RoleTenantAdmin)
		assert.ErrorIs(t, err, rbac.ErrRoleNotSeeded)
	})

	t.Run("names sorted", func(t *testing.T) {
		assert.Equal(t, []string{"ADMIN", "TENANT_ADMIN", "USER"}, catalog.Names())
	})
}

func TestCatalog_DedupesPermissions(t *testing.T) {
	t.Parallel()

	catalog, err := rbac.NewCatalog(context.Background(), rbac.NewStaticSource([]rbac.Role{
		{ID: 1, Name: "VIEWER", Scope: rbac.ScopeTenant, Permissions: []string{
			rbac.PermResourceRead, rbac.PermResourceRead, "",
		}},
	}))
	require.NoError(t, err)

	role, err := catalog.ByName("VIEWER")
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.PermResourceRead}, role.Permissions)
}

func TestStaticSource_CopiesInput(t *testing.T) {
	t.Parallel()

	roles := []rbac.Role{
		{ID: 1, Name: "ADMIN", Scope: rbac.ScopeGlobal, Permissions: []string{rbac.PermTenantCreate}},
	}
	source := rbac.NewStaticSource(roles)

	// Mutating the caller's slice must not affect what the source serves.
	roles[0].Permissions[0] = "MUTATED"

	loaded, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{rbac.PermTenantCreate}, loaded[0].Permissions)
}
