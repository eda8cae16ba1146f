// Package user holds the minimal user record the authorization core needs:
// resolving acting and target identities, and seeding the default admin.
// Credential flows (tokens, sessions, email verification) are external
// collaborators and stay out of this module.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account that can hold role bindings.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}

// New builds an enabled user with the current time.
func New(email, username, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Enabled:      true,
		CreatedAt:    time.Now().UTC(),
	}
}

// Store persists users.
type Store interface {
	// Get returns the user with the given id, or ErrUserNotFound.
	Get(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail returns the user with the given email, or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Exists returns nil when the id resolves, or ErrUserNotFound.
	Exists(ctx context.Context, id uuid.UUID) error

	// Create persists a new user. A duplicate email yields ErrUserExists.
	Create(ctx context.Context, u *User) error

	// SetEnabled flips the enabled flag, or ErrUserNotFound.
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}
