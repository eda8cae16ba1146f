package authz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/resource"
)

// Binding grants a role to a user, scoped at one resource node. The triple
// (UserID, RoleID, ResourceID) is the composite identity.
type Binding struct {
	UserID     uuid.UUID `json:"user_id"`
	RoleID     int16     `json:"role_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewBinding builds a binding with the current time.
func NewBinding(userID uuid.UUID, roleID int16, resourceID uuid.UUID) Binding {
	return Binding{
		UserID:     userID,
		RoleID:     roleID,
		ResourceID: resourceID,
		CreatedAt:  time.Now().UTC(),
	}
}

// BindingStore persists bindings. Implementations map storage conflicts on
// the composite key to ErrAlreadyAssigned.
type BindingStore interface {
	// ListByUser returns every binding held by the user, across all
	// tenants and resources.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Binding, error)

	// ListByResource returns every binding scoped at the resource.
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]Binding, error)

	// Create persists a binding; a duplicate composite key yields
	// ErrAlreadyAssigned.
	Create(ctx context.Context, b Binding) error

	// Delete removes the binding with the given composite key, or
	// ErrBindingNotFound.
	Delete(ctx context.Context, userID uuid.UUID, roleID int16, resourceID uuid.UUID) error
}

// ResourceGetter is the slice of the resource store the engine needs to
// resolve targets and walk parent links.
type ResourceGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*resource.Resource, error)
}

// UserDirectory verifies user identities for the grants service. The wider
// user model lives in pkg/user.
type UserDirectory interface {
	// Exists returns nil when the user id resolves, or the user package's
	// not found sentinel.
	Exists(ctx context.Context, id uuid.UUID) error
}
