// Package authz implements the authorization engine: given a user, a
// resource and a permission name it answers allow or deny by resolving the
// user's role bindings across the resource's ancestry.
//
// A Binding grants a role to a user scoped at one resource node; descendants
// inherit it through the engine's ancestry walk, nothing is materialised.
// The walk is cycle-guarded and visits each resource id at most once. A
// binding to the reserved ADMIN role short-circuits every check.
//
// The engine never mutates state and raises only two error kinds: a not
// found sentinel when the target resource does not resolve, and
// ErrAccessDenied when no binding on the ancestor chain carries the
// permission. Auditing is the caller's job.
//
// The package also provides Grants, the role assignment service that
// creates and removes bindings with ASSIGN_ROLE / REMOVE_ROLE checks and
// audit records.
package authz
