package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeRoot is the type assigned to a tenant's root resource.
const TypeRoot = "ROOT"

// Resource is a node in a tenant's hierarchical tree.
type Resource struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`

	// ParentID is nil only for a tenant's root resource.
	ParentID *uuid.UUID `json:"parent_id,omitempty"`

	// Type is a free-form label (folder, department, document, ...).
	Type string `json:"type"`

	Name string `json:"name"`

	// Path is the denormalized human-readable ancestry, e.g. "/Acme/Dept".
	Path string `json:"path"`

	// Version guards moves against concurrent writers. Bumped on every
	// successful update.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the resource is a tenant root.
func (r *Resource) IsRoot() bool {
	return r.ParentID == nil
}

// NewRoot builds a tenant's root resource with path "/" + name.
func NewRoot(tenantID uuid.UUID, name string) *Resource {
	return &Resource{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Type:      TypeRoot,
		Name:      name,
		Path:      "/" + name,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
}

// NewChild builds a child of parent in the same tenant, with
// path = parent.Path + "/" + name.
func NewChild(parent *Resource, name, resourceType string) *Resource {
	parentID := parent.ID
	return &Resource{
		ID:        uuid.New(),
		TenantID:  parent.TenantID,
		ParentID:  &parentID,
		Type:      resourceType,
		Name:      name,
		Path:      parent.Path + "/" + name,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists resources. Implementations map storage-level conditions to
// the package's sentinel errors.
type Store interface {
	// Get returns the resource with the given id, or ErrResourceNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Resource, error)

	// Create persists a new resource. A duplicate id yields
	// ErrResourceExists.
	Create(ctx context.Context, r *Resource) error

	// Update persists parent/path changes. The write succeeds only when the
	// stored Version matches r.Version (compare-and-set); a mismatch yields
	// ErrVersionConflict. On success the stored and in-memory Version are
	// incremented.
	Update(ctx context.Context, r *Resource) error

	// Delete removes the resource, or ErrResourceNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListChildren returns the direct children of parentID.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Resource, error)

	// ListRoots returns the root resources of the tenant.
	ListRoots(ctx context.Context, tenantID uuid.UUID) ([]*Resource, error)

	// ReplacePathPrefix rewrites the path of every resource in the tenant
	// whose path starts with oldPrefix, substituting newPrefix. Used to keep
	// descendant paths consistent after a move.
	ReplacePathPrefix(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error
}
