package common

import "errors"

var (
	// Storage errors.
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")

	// Session errors.
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrInvalidSession = errors.New("invalid session")
	ErrForbidden      = errors.New("forbidden")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Settings errors.
	ErrUnknownField = errors.New("unknown settings field")
	ErrInvalidValue = errors.New("invalid settings value")
)
