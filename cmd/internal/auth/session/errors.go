package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails signature, expiry, or
	// claim validation, or references an account that no longer exists.
	ErrInvalidToken = errors.New("invalid token")

	// ErrBadCredentials is returned when password verification fails.
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrRefreshReused is returned when a cryptographically valid refresh
	// token no longer matches the stored credential: it was already rotated
	// away, cleared by logout, or lost a concurrent rotation race.
	ErrRefreshReused = errors.New("refresh token expired or used")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
