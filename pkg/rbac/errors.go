package rbac

import "errors"

// Domain errors for catalog operations.
var (
	// ErrRoleNotFound is returned when a role lookup misses.
	ErrRoleNotFound = errors.New("rbac.role_not_found")

	// ErrRoleNotSeeded is returned when a reserved role required by the
	// system is absent from the catalog. This indicates a broken deployment,
	// not a user-facing condition.
	ErrRoleNotSeeded = errors.New("rbac.role_not_seeded")

	// ErrDuplicateRole is returned when a source yields two roles with the
	// same name or id.
	ErrDuplicateRole = errors.New("rbac.duplicate_role")

	// ErrInvalidRole is returned when a source yields a role with an empty
	// name or an unknown scope.
	ErrInvalidRole = errors.New("rbac.invalid_role")
)
