package auth

import "errors"

// Stable failure kinds surfaced by the auth core. The transport layer maps
// these onto HTTP statuses and response envelopes.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCode        = errors.New("invalid code")
	ErrExpired            = errors.New("code expired")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidToken       = errors.New("invalid token")
	ErrDependencyFailure  = errors.New("dependency failure")
)
