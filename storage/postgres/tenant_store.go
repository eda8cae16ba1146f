package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/pg"
	"github.com/avetch/accesskit/pkg/tenant"
)

// TenantStore is the pgx-backed tenant.Store.
type TenantStore struct {
	pool *pgxpool.Pool
}

// NewTenantStore creates a store over the pool; migrations are assumed to
// have created the tenant table.
func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

const tenantColumns = `id, code, name, status, created_at`

func (s *TenantStore) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	q := querierFrom(ctx, s.pool)

	var t tenant.Tenant
	err := q.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenant WHERE id = $1`, id,
	).Scan(&t.ID, &t.Code, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

func (s *TenantStore) GetByCode(ctx context.Context, code string) (*tenant.Tenant, error) {
	q := querierFrom(ctx, s.pool)

	var t tenant.Tenant
	err := q.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenant WHERE code = $1`, code,
	).Scan(&t.ID, &t.Code, &t.Name, &t.Status, &t.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant by code: %w", err)
	}
	return &t, nil
}

func (s *TenantStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := querierFrom(ctx, s.pool)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenant WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tenant exists by code: %w", err)
	}
	return exists, nil
}

func (s *TenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO tenant (`+tenantColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Code, t.Name, t.Status, t.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return tenant.ErrTenantExists
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *TenantStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	q := querierFrom(ctx, s.pool)

	rows, err := q.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenant ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
