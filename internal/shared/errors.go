package shared

import "errors"

var (
	// ErrNotFound indicates no matching account.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates an email collision.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates bad credentials, an invalid token or a blocked account.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates missing credentials.
	ErrForbidden = errors.New("forbidden")
)
