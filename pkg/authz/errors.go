package authz

import "errors"

var (
	// ErrAccessDenied is returned when the user holds no binding on the
	// target's ancestor chain that carries the required permission.
	ErrAccessDenied = errors.New("authz.access_denied")

	// ErrAlreadyAssigned is returned when creating a binding that already
	// exists (same user, role and resource).
	ErrAlreadyAssigned = errors.New("authz.binding_already_assigned")

	// ErrBindingNotFound is returned when removing a binding that does not
	// exist.
	ErrBindingNotFound = errors.New("authz.binding_not_found")
)
