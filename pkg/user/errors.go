package user

import "errors"

var (
	// ErrUserNotFound is returned when an id or email does not resolve.
	ErrUserNotFound = errors.New("user.not_found")

	// ErrUserExists is returned on a duplicate email insert.
	ErrUserExists = errors.New("user.already_exists")
)
