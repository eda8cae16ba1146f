package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/txn"
)

// ActionCreateTenant is the audit action emitted by bootstrap.
const ActionCreateTenant = "CREATE_TENANT"

const entityTenant = "TENANT"

// Service implements tenant bootstrap and tenant queries.
type Service struct {
	tenants   Store
	resources resource.Store
	bindings  authz.BindingStore
	users     UserDirectory
	catalog   *rbac.Catalog
	audit     *audit.Logger
	tx        txn.Runner
	log       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTxRunner sets the transaction runner the bootstrap writes run in.
// Defaults to pass-through; production wiring passes the storage adapter's
// runner so the four writes are atomic.
func WithTxRunner(tx txn.Runner) ServiceOption {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the tenant service.
func NewService(
	tenants Store,
	resources resource.Store,
	bindings authz.BindingStore,
	users UserDirectory,
	catalog *rbac.Catalog,
	auditLog *audit.Logger,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		tenants:   tenants,
		resources: resources,
		bindings:  bindings,
		users:     users,
		catalog:   catalog,
		audit:     auditLog,
		tx:        txn.Passthrough(),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTenant bootstraps a tenant: the tenant row, its root resource
// (type ROOT, path "/" + name), the creator's TENANT_ADMIN binding on the
// root, and the audit record, all inside one transaction. Any failure rolls
// every prior write back.
//
// A duplicate code is audited with outcome FAILURE and fails with
// ErrTenantExists. A catalog without TENANT_ADMIN fails with the rbac
// package's not-seeded sentinel: that is a broken deployment, not a user
// error.
func (s *Service) CreateTenant(ctx context.Context, name, code string, creatorID uuid.UUID) (*Tenant, error) {
	if err := s.users.Exists(ctx, creatorID); err != nil {
		return nil, err
	}

	exists, err := s.tenants.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		// The failure record must survive, so it is written outside the
		// bootstrap transaction.
		if auditErr := s.audit.Failure(ctx, ActionCreateTenant,
			fmt.Sprintf("Tenant code already exists: %s", code),
			audit.WithActor(creatorID),
			audit.WithEntity(entityTenant, ""),
		); auditErr != nil {
			s.log.ErrorContext(ctx, "audit write failed", slog.Any("error", auditErr))
		}
		return nil, fmt.Errorf("%w: %s", ErrTenantExists, code)
	}

	adminRole, err := s.catalog.Require(rbac.RoleTenantAdmin)
	if err != nil {
		return nil, err
	}

	t := New(name, code)
	root := resource.NewRoot(t.ID, name)

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.tenants.Create(ctx, t); err != nil {
			return err
		}
		if err := s.resources.Create(ctx, root); err != nil {
			return err
		}
		if err := s.bindings.Create(ctx, authz.NewBinding(creatorID, adminRole.ID, root.ID)); err != nil {
			return err
		}
		return s.audit.Success(ctx, ActionCreateTenant,
			audit.WithTenant(t.ID),
			audit.WithActor(creatorID),
			audit.WithResource(root.ID),
			audit.WithEntity(entityTenant, t.ID.String()),
			audit.WithMessage("Tenant created"),
		)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant bootstrapped",
		slog.String("tenant_id", t.ID.String()),
		slog.String("code", t.Code),
		slog.String("root_resource_id", root.ID.String()))

	return t, nil
}

// Get returns the tenant with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.tenants.Get(ctx, id)
}

// List returns all tenants.
func (s *Service) List(ctx context.Context) ([]*Tenant, error) {
	return s.tenants.List(ctx)
}

// AccessibleBy returns the tenants whose root resource carries a binding for
// the user, deduplicated. Bindings deeper in a tree do not make the tenant
// itself visible.
func (s *Service) AccessibleBy(ctx context.Context, userID uuid.UUID) ([]*Tenant, error) {
	bindings, err := s.bindings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]struct{}{}
	out := []*Tenant{}
	for _, b := range bindings {
		res, err := s.resources.Get(ctx, b.ResourceID)
		if err != nil {
			// A binding to a removed resource grants nothing here.
			continue
		}
		if !res.IsRoot() {
			continue
		}
		if _, ok := seen[res.TenantID]; ok {
			continue
		}
		t, err := s.tenants.Get(ctx, res.TenantID)
		if err != nil {
			continue
		}
		seen[res.TenantID] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}
