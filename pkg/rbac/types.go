package rbac

import "slices"

// Scope declares where a role is meant to be granted.
type Scope string

const (
	// ScopeGlobal marks roles that make sense outside any single tenant.
	ScopeGlobal Scope = "GLOBAL"
	// ScopeTenant marks roles granted within a tenant's resource tree.
	ScopeTenant Scope = "TENANT"
)

// Valid reports whether the scope is one of the known values.
func (s Scope) Valid() bool {
	return s == ScopeGlobal || s == ScopeTenant
}

// Reserved role names. ADMIN is the super-admin sentinel the engine
// recognises by name; TENANT_ADMIN is required by tenant bootstrap.
const (
	RoleAdmin       = "ADMIN"
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleUser        = "USER"
)

// Permission name catalog. Names are part of the wire contract and are
// matched exactly, so they are declared once here.
const (
	PermTenantCreate = "TENANT_CREATE"
	PermTenantRead   = "TENANT_READ"
	PermTenantList   = "TENANT_LIST"

	PermResourceCreate = "RESOURCE_CREATE"
	PermResourceRead   = "RESOURCE_READ"
	PermResourceUpdate = "RESOURCE_UPDATE"
	PermResourceDelete = "RESOURCE_DELETE"
	PermResourceMove   = "RESOURCE_MOVE"

	PermUserCreate = "USER_CREATE"
	PermUserRead   = "USER_READ"
	PermUserUpdate = "USER_UPDATE"
	PermUserDelete = "USER_DELETE"
	PermAssignRole = "ASSIGN_ROLE"
	PermRemoveRole = "REMOVE_ROLE"
)

// AllPermissions returns the full permission name catalog.
func AllPermissions() []string {
	return []string{
		PermTenantCreate, PermTenantRead, PermTenantList,
		PermResourceCreate, PermResourceRead, PermResourceUpdate,
		PermResourceDelete, PermResourceMove,
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermAssignRole, PermRemoveRole,
	}
}

// Role is a named, reusable set of permissions.
type Role struct {
	// ID is a small static identifier; the catalog is seeded, not grown.
	ID int16

	// Name is unique across the catalog.
	Name string

	// Scope declares where the role is meant to be granted.
	Scope Scope

	// Permissions lists the permission names this role carries.
	// Order is irrelevant; names are unique.
	Permissions []string
}

// Can reports whether the role carries the given permission.
func (r *Role) Can(permission string) bool {
	return slices.Contains(r.Permissions, permission)
}
