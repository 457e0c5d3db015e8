package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown clock number and a
	// wrong password; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid clock number or password")

	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: token expired")

	ErrNotFound = errors.New("auth: employee not found")
)
