package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/pg"
)

// BindingStore is the pgx-backed authz.BindingStore.
type BindingStore struct {
	pool *pgxpool.Pool
}

// NewBindingStore creates a store over the pool.
func NewBindingStore(pool *pgxpool.Pool) *BindingStore {
	return &BindingStore{pool: pool}
}

const bindingColumns = `user_id, role_id, resource_id, created_at`

func (s *BindingStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]authz.Binding, error) {
	return s.list(ctx,
		`SELECT `+bindingColumns+` FROM user_role_resource WHERE user_id = $1`,
		userID)
}

func (s *BindingStore) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]authz.Binding, error) {
	return s.list(ctx,
		`SELECT `+bindingColumns+` FROM user_role_resource WHERE resource_id = $1`,
		resourceID)
}

func (s *BindingStore) list(ctx context.Context, query string, args ...any) ([]authz.Binding, error) {
	q := querierFrom(ctx, s.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var out []authz.Binding
	for rows.Next() {
		var b authz.Binding
		if err := rows.Scan(&b.UserID, &b.RoleID, &b.ResourceID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BindingStore) Create(ctx context.Context, b authz.Binding) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO user_role_resource (`+bindingColumns+`) VALUES ($1, $2, $3, $4)`,
		b.UserID, b.RoleID, b.ResourceID, b.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return authz.ErrAlreadyAssigned
		}
		return fmt.Errorf("create binding: %w", err)
	}
	return nil
}

func (s *BindingStore) Delete(ctx context.Context, userID uuid.UUID, roleID int16, resourceID uuid.UUID) error {
	q := querierFrom(ctx, s.pool)

	tag, err := q.Exec(ctx,
		`DELETE FROM user_role_resource
		 WHERE user_id = $1 AND role_id = $2 AND resource_id = $3`,
		userID, roleID, resourceID,
	)
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authz.ErrBindingNotFound
	}
	return nil
}
