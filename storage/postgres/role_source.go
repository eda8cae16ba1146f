package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/rbac"
)

// RoleSource loads the role catalog from the role table. It satisfies
// rbac.Source, so the catalog can be rebuilt from the database at startup.
type RoleSource struct {
	pool *pgxpool.Pool
}

// NewRoleSource creates a source over the pool.
func NewRoleSource(pool *pgxpool.Pool) *RoleSource {
	return &RoleSource{pool: pool}
}

func (s *RoleSource) Load(ctx context.Context) ([]rbac.Role, error) {
	q := querierFrom(ctx, s.pool)

	rows, err := q.Query(ctx,
		`SELECT id, name, scope, permissions FROM role ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	var out []rbac.Role
	for rows.Next() {
		var r rbac.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Scope, &r.Permissions); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Seed inserts the given roles, skipping ones already present. Called once
// at startup with rbac.DefaultRoles so a fresh database carries the reserved
// roles before the first request.
func (s *RoleSource) Seed(ctx context.Context, roles []rbac.Role) error {
	q := querierFrom(ctx, s.pool)

	for _, r := range roles {
		_, err := q.Exec(ctx,
			`INSERT INTO role (id, name, scope, permissions)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Name, r.Scope, r.Permissions,
		)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", r.Name, err)
		}
	}
	return nil
}
