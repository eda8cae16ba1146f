package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant statuses. Only ACTIVE is assigned by this core; suspension is
// administrative tooling outside it.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
)

// Tenant is an isolated organizational unit owning a resource tree.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the tenant is usable.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// New builds an active tenant with the current time.
func New(name, code string) *Tenant {
	return &Tenant{
		ID:        uuid.New(),
		Code:      code,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists tenants.
type Store interface {
	// Get returns the tenant with the given id, or ErrTenantNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetByCode returns the tenant with the given code, or ErrTenantNotFound.
	GetByCode(ctx context.Context, code string) (*Tenant, error)

	// ExistsByCode reports whether a tenant with the code exists.
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Create persists a new tenant. A duplicate code yields ErrTenantExists.
	Create(ctx context.Context, t *Tenant) error

	// List returns all tenants.
	List(ctx context.Context) ([]*Tenant, error)
}

// UserDirectory verifies that the bootstrap creator exists.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) error
}
