package rbac

import (
	"context"
	"slices"
)

// staticSource serves a fixed role set from memory.
type staticSource struct {
	roles []Role
}

// NewStaticSource creates a Source over the given roles. The input is deep
// copied so later mutations by the caller do not leak into the catalog.
func NewStaticSource(roles []Role) Source {
	cp := make([]Role, len(roles))
	for i, r := range roles {
		r.Permissions = slices.Clone(r.Permissions)
		cp[i] = r
	}
	return &staticSource{roles: cp}
}

func (s *staticSource) Load(ctx context.Context) ([]Role, error) {
	out := make([]Role, len(s.roles))
	for i, r := range s.roles {
		r.Permissions = slices.Clone(r.Permissions)
		out[i] = r
	}
	return out, nil
}

// DefaultRoles returns the built-in role seed: ADMIN with the full
// permission catalog, TENANT_ADMIN with everything a tenant operator needs,
// USER with read-only access. Deployments that need a different catalog
// provide their own Source.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:          1,
			Name:        RoleAdmin,
			Scope:       ScopeGlobal,
			Permissions: AllPermissions(),
		},
		{
			ID:    2,
			Name:  RoleUser,
			Scope: ScopeGlobal,
			Permissions: []string{
				PermResourceRead,
				PermUserRead,
				PermTenantRead,
			},
		},
		{
			ID:    3,
			Name:  RoleTenantAdmin,
			Scope: ScopeTenant,
			Permissions: []string{
				PermResourceCreate,
				PermResourceRead,
				PermResourceUpdate,
				PermResourceDelete,
				PermResourceMove,
				PermUserCreate,
				PermAssignRole,
				PermRemoveRole,
				PermTenantRead,
			},
		},
	}
}
