// Package rbac defines the role and permission catalog used by the
// authorization engine.
//
// Roles are a small, mostly static set seeded at startup (ADMIN, TENANT_ADMIN,
// USER by default). Each role carries a flat list of permission names; the
// catalog is the single source of truth for what a role grants. Role rows are
// loaded once through a Source (in-memory, YAML file, or database) and
// validated into an immutable Catalog.
//
// Permission names are exact strings with no wildcard or dot-hierarchy
// semantics. The reserved role name ADMIN is recognised by the engine as a
// super-admin sentinel; it is still seeded with the full permission list so
// that catalog queries stay truthful.
package rbac
