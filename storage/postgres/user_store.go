package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avetch/accesskit/pkg/pg"
	"github.com/avetch/accesskit/pkg/user"
)

// UserStore is the pgx-backed user.Store.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a store over the pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, username, password_hash, enabled, created_at`

func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	q := querierFrom(ctx, s.pool)

	var u user.User
	err := q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	q := querierFrom(ctx, s.pool)

	var u user.User
	err := q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Enabled, &u.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Exists(ctx context.Context, id uuid.UUID) error {
	q := querierFrom(ctx, s.pool)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM app_user WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("user exists: %w", err)
	}
	if !exists {
		return user.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	q := querierFrom(ctx, s.pool)

	_, err := q.Exec(ctx,
		`INSERT INTO app_user (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Enabled, u.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return user.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *UserStore) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	q := querierFrom(ctx, s.pool)

	tag, err := q.Exec(ctx,
		`UPDATE app_user SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("set user enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
