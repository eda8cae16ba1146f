package resource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/txn"
)

// Audit action names emitted by the lifecycle operations.
const (
	ActionCreateResource = "CREATE_RESOURCE"
	ActionMoveResource   = "MOVE_RESOURCE"
	ActionDeleteResource = "DELETE_RESOURCE"
)

const entityResource = "RESOURCE"

// PermissionChecker is the slice of the authorization engine the lifecycle
// operations need.
type PermissionChecker interface {
	CheckPermission(ctx context.Context, userID, resourceID uuid.UUID, permission string) error
}

// Service implements the resource lifecycle: create-child, move, delete and
// tree reads. Each mutation checks permissions, writes the store and emits
// an audit event inside one transaction; an audit write failure rolls the
// mutation back.
type Service struct {
	store Store
	authz PermissionChecker
	audit *audit.Logger
	tx    txn.Runner
	log   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTxRunner sets the transaction runner. Defaults to pass-through.
func WithTxRunner(tx txn.Runner) ServiceOption {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithLogger sets the debug logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a lifecycle service over the given store.
func NewService(store Store, authz PermissionChecker, auditLog *audit.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		authz: authz,
		audit: auditLog,
		tx:    txn.Passthrough(),
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateChild creates a new resource under parentID. The actor needs
// RESOURCE_CREATE on the parent; the child inherits the parent's tenant and
// extends its path.
func (s *Service) CreateChild(ctx context.Context, actorID, parentID uuid.UUID, name, resourceType string) (*Resource, error) {
	var child *Resource

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		parent, err := s.store.Get(ctx, parentID)
		if err != nil {
			return err
		}

		if err := s.authz.CheckPermission(ctx, actorID, parent.ID, rbac.PermResourceCreate); err != nil {
			return err
		}

		child = NewChild(parent, name, resourceType)
		if err := s.store.Create(ctx, child); err != nil {
			return err
		}

		s.log.DebugContext(ctx, "resource created",
			slog.String("resource_id", child.ID.String()),
			slog.String("path", child.Path))

		return s.audit.Success(ctx, ActionCreateResource,
			audit.WithTenant(child.TenantID),
			audit.WithActor(actorID),
			audit.WithResource(child.ID),
			audit.WithEntity(entityResource, child.ID.String()),
			audit.WithMessage("Child resource created"),
		)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// Move re-parents a resource. The actor needs RESOURCE_MOVE on the resource
// being moved. The target must belong to the same tenant and must not be the
// resource itself or one of its descendants. The moved node's path and every
// descendant path are rewritten.
func (s *Service) Move(ctx context.Context, actorID, resourceID, newParentID uuid.UUID) (*Resource, error) {
	var moved *Resource

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		res, err := s.store.Get(ctx, resourceID)
		if err != nil {
			return err
		}
		newParent, err := s.store.Get(ctx, newParentID)
		if err != nil {
			return err
		}

		if err := s.authz.CheckPermission(ctx, actorID, res.ID, rbac.PermResourceMove); err != nil {
			return err
		}

		if newParent.TenantID != res.TenantID {
			return ErrCrossTenantMove
		}
		if err := s.ensureNoCycle(ctx, res.ID, newParent); err != nil {
			return err
		}

		oldPath := res.Path
		parentID := newParent.ID
		res.ParentID = &parentID
		res.Path = newParent.Path + "/" + res.Name

		if err := s.store.Update(ctx, res); err != nil {
			return err
		}
		if err := s.store.ReplacePathPrefix(ctx, res.TenantID, oldPath+"/", res.Path+"/"); err != nil {
			return err
		}

		moved = res
		return s.audit.Success(ctx, ActionMoveResource,
			audit.WithTenant(res.TenantID),
			audit.WithActor(actorID),
			audit.WithResource(res.ID),
			audit.WithEntity(entityResource, res.ID.String()),
			audit.WithMessage("Resource moved"),
			audit.WithMetadata("old_path", oldPath),
			audit.WithMetadata("new_path", res.Path),
		)
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Delete removes a resource. The actor needs RESOURCE_DELETE on it.
// Resources with children are rejected; callers delete bottom-up.
func (s *Service) Delete(ctx context.Context, actorID, resourceID uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		res, err := s.store.Get(ctx, resourceID)
		if err != nil {
			return err
		}

		if err := s.authz.CheckPermission(ctx, actorID, res.ID, rbac.PermResourceDelete); err != nil {
			return err
		}

		children, err := s.store.ListChildren(ctx, res.ID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return ErrHasChildren
		}

		if err := s.store.Delete(ctx, res.ID); err != nil {
			return err
		}

		return s.audit.Success(ctx, ActionDeleteResource,
			audit.WithTenant(res.TenantID),
			audit.WithActor(actorID),
			audit.WithResource(res.ID),
			audit.WithEntity(entityResource, res.ID.String()),
			audit.WithMessage("Resource deleted"),
		)
	})
}

// ensureNoCycle rejects a move that would place resourceID under its own
// subtree: walking up from the new parent must not encounter resourceID.
// The visited set also stops the walk on an already-corrupt cyclic graph.
func (s *Service) ensureNoCycle(ctx context.Context, resourceID uuid.UUID, newParent *Resource) error {
	if newParent.ID == resourceID {
		return ErrCycleDetected
	}

	visited := map[uuid.UUID]struct{}{}
	current := newParent
	for current.ParentID != nil {
		if _, ok := visited[current.ID]; ok {
			return ErrCycleDetected
		}
		visited[current.ID] = struct{}{}

		parent, err := s.store.Get(ctx, *current.ParentID)
		if err != nil {
			// A dangling parent link ends the chain; nothing above it can
			// be the moved node.
			if errors.Is(err, ErrResourceNotFound) {
				return nil
			}
			return err
		}
		if parent.ID == resourceID {
			return ErrCycleDetected
		}
		current = parent
	}
	return nil
}
