package resource

import "errors"

var (
	// ErrResourceNotFound is returned when an id does not resolve.
	ErrResourceNotFound = errors.New("resource.not_found")

	// ErrResourceExists is returned on a duplicate-id insert.
	ErrResourceExists = errors.New("resource.already_exists")

	// ErrVersionConflict is returned when a compare-and-set update lost a
	// race with a concurrent writer.
	ErrVersionConflict = errors.New("resource.version_conflict")

	// ErrHasChildren is returned when deleting a resource that still has
	// children.
	ErrHasChildren = errors.New("resource.has_children")

	// ErrCrossTenantMove is returned when the move target belongs to a
	// different tenant.
	ErrCrossTenantMove = errors.New("resource.cross_tenant_move")

	// ErrCycleDetected is returned when a move would place a resource under
	// itself or one of its descendants.
	ErrCycleDetected = errors.New("resource.cycle_detected")
)
