package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/txn"
)

// Audit action names emitted by the grants service.
const (
	ActionAssignRole = "ASSIGN_ROLE"
	ActionRemoveRole = "REMOVE_ROLE"
)

const entityBinding = "BINDING"

// Grants creates and removes role bindings. Both operations require the
// actor to hold the matching permission on the scoping resource; denials are
// audited with outcome FAILURE before being surfaced.
type Grants struct {
	engine    *Engine
	catalog   *rbac.Catalog
	bindings  BindingStore
	resources ResourceGetter
	users     UserDirectory
	audit     *audit.Logger
	tx        txn.Runner
}

// GrantsOption configures a Grants service.
type GrantsOption func(*Grants)

// WithGrantsTxRunner sets the transaction runner. Defaults to pass-through.
func WithGrantsTxRunner(tx txn.Runner) GrantsOption {
	return func(g *Grants) {
		if tx != nil {
			g.tx = tx
		}
	}
}

// NewGrants creates the role assignment service.
func NewGrants(engine *Engine, catalog *rbac.Catalog, bindings BindingStore, resources ResourceGetter, users UserDirectory, auditLog *audit.Logger, opts ...GrantsOption) *Grants {
	g := &Grants{
		engine:    engine,
		catalog:   catalog,
		bindings:  bindings,
		resources: resources,
		users:     users,
		audit:     auditLog,
		tx:        txn.Passthrough(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Assign grants roleID to targetID, scoped at resourceID. The actor needs
// ASSIGN_ROLE on the resource. A duplicate grant yields ErrAlreadyAssigned.
func (g *Grants) Assign(ctx context.Context, actorID, targetID uuid.UUID, roleID int16, resourceID uuid.UUID) error {
	res, err := g.resources.Get(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := g.users.Exists(ctx, actorID); err != nil {
		return fmt.Errorf("actor: %w", err)
	}

	// The checks run before the transaction opens: a denial returns an error,
	// and its FAILURE record must survive the rollback that error triggers.
	if err := g.engine.CheckPermission(ctx, actorID, resourceID, rbac.PermAssignRole); err != nil {
		return g.auditDenied(ctx, ActionAssignRole, actorID, res.TenantID, resourceID, err)
	}

	if err := g.users.Exists(ctx, targetID); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if _, err := g.catalog.ByID(roleID); err != nil {
		return err
	}

	return g.tx.InTx(ctx, func(ctx context.Context) error {
		if err := g.bindings.Create(ctx, NewBinding(targetID, roleID, resourceID)); err != nil {
			return err
		}

		return g.audit.Success(ctx, ActionAssignRole,
			audit.WithTenant(res.TenantID),
			audit.WithActor(actorID),
			audit.WithResource(resourceID),
			audit.WithEntity(entityBinding, targetID.String()),
			audit.WithMessage("Role assigned to user"),
		)
	})
}

// Remove revokes roleID from targetID at resourceID. The actor needs
// REMOVE_ROLE on the resource. A missing grant yields ErrBindingNotFound.
func (g *Grants) Remove(ctx context.Context, actorID, targetID uuid.UUID, roleID int16, resourceID uuid.UUID) error {
	res, err := g.resources.Get(ctx, resourceID)
	if err != nil {
		return err
	}
	if err := g.users.Exists(ctx, actorID); err != nil {
		return fmt.Errorf("actor: %w", err)
	}

	// Denial audit stays outside the transaction, same as Assign.
	if err := g.engine.CheckPermission(ctx, actorID, resourceID, rbac.PermRemoveRole); err != nil {
		return g.auditDenied(ctx, ActionRemoveRole, actorID, res.TenantID, resourceID, err)
	}

	return g.tx.InTx(ctx, func(ctx context.Context) error {
		if err := g.bindings.Delete(ctx, targetID, roleID, resourceID); err != nil {
			return err
		}

		return g.audit.Success(ctx, ActionRemoveRole,
			audit.WithTenant(res.TenantID),
			audit.WithActor(actorID),
			audit.WithResource(resourceID),
			audit.WithEntity(entityBinding, targetID.String()),
			audit.WithMessage("Role removed from user"),
		)
	})
}

// auditDenied records an access denial with outcome FAILURE and returns the
// original error. Other check failures surface without an audit record.
func (g *Grants) auditDenied(ctx context.Context, action string, actorID, tenantID, resourceID uuid.UUID, cause error) error {
	if !errors.Is(cause, ErrAccessDenied) {
		return cause
	}
	if err := g.audit.Failure(ctx, action, cause.Error(),
		audit.WithTenant(tenantID),
		audit.WithActor(actorID),
		audit.WithResource(resourceID),
		audit.WithEntity(entityBinding, ""),
	); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
