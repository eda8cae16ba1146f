package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when an id or code does not resolve.
	ErrTenantNotFound = errors.New("tenant.not_found")

	// ErrTenantExists is returned when creating a tenant whose code is
	// already taken.
	ErrTenantExists = errors.New("tenant.already_exists")

	// ErrNoTenantInContext is returned when a tenant is required in the
	// request context but absent.
	ErrNoTenantInContext = errors.New("tenant.not_in_context")
)
