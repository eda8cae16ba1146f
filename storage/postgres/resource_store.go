package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/pg"
	"github.com/avetch/accesskit/pkg/resource"
)

// ResourceStore is the pgx-backed resource.Store.
type ResourceStore struct {
	pool *pgxpool.Pool
}

// NewResourceStore creates a store over the pool.
func NewResourceStore(pool *pgxpool.Pool) *ResourceStore {
	return &ResourceStore{pool: pool}
}

const resourceColumns = `id, tenant_id, parent_id, type, name, path, version, created_at`

func scanResource(row interface{ Scan(dest ...any) error }) (*resource.Resource, error) {
	var r resource.Resource
	err := row.Scan(&r.ID, &r.TenantID, &r.ParentID, &r.Type, &r.Name, &r.Path,
		&r.Version, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ResourceStore) Get(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	q := querierFrom(ctx, s.pool)

	r, err := scanResource(q.QueryRow(ctx,
		`SELECT `+resourceColumns+` FROM resource WHERE id = $1`, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, resource.ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return r, nil
}

func (s *ResourceStore) Create(ctx context.Context, r *resource.Resource) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO resource (`+resourceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.TenantID, r.ParentID, r.Type, r.Name, r.Path, r.Version, r.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return resource.ErrResourceExists
		}
		if pg.IsForeignKeyViolationError(err) {
			return resource.ErrResourceNotFound
		}
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// Update writes the row guarded by the version the caller read. A missed
// match means either the row is gone or a concurrent writer got there first.
func (s *ResourceStore) Update(ctx context.Context, r *resource.Resource) error {
	q := querierFrom(ctx, s.pool)

	tag, err := q.Exec(ctx,
		`UPDATE resource
		 SET parent_id = $1, type = $2, name = $3, path = $4, version = version + 1
		 WHERE id = $5 AND version = $6`,
		r.ParentID, r.Type, r.Name, r.Path, r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM resource WHERE id = $1)`, r.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("update resource: %w", err)
		}
		if !exists {
			return resource.ErrResourceNotFound
		}
		return resource.ErrVersionConflict
	}
	r.Version++
	return nil
}

func (s *ResourceStore) Delete(ctx context.Context, id uuid.UUID) error {
	q := querierFrom(ctx, s.pool)

	tag, err := q.Exec(ctx, `DELETE FROM resource WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return resource.ErrResourceNotFound
	}
	return nil
}

func (s *ResourceStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*resource.Resource, error) {
	return s.list(ctx,
		`SELECT `+resourceColumns+` FROM resource WHERE parent_id = $1 ORDER BY name`,
		parentID)
}

func (s *ResourceStore) ListRoots(ctx context.Context, tenantID uuid.UUID) ([]*resource.Resource, error) {
	return s.list(ctx,
		`SELECT `+resourceColumns+` FROM resource WHERE tenant_id = $1 AND parent_id IS NULL ORDER BY name`,
		tenantID)
}

func (s *ResourceStore) list(ctx context.Context, query string, args ...any) ([]*resource.Resource, error) {
	q := querierFrom(ctx, s.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []*resource.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplacePathPrefix rewrites the path of every resource in the tenant whose
// path starts with oldPrefix. Used by move to relocate a whole subtree.
func (s *ResourceStore) ReplacePathPrefix(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`UPDATE resource
		 SET path = $1 || substring(path FROM char_length($2) + 1)
		 WHERE tenant_id = $3 AND left(path, char_length($2)) = $2`,
		newPrefix, oldPrefix, tenantID,
	)
	if err != nil {
		return fmt.Errorf("replace path prefix: %w", err)
	}
	return nil
}
