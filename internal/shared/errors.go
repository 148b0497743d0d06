package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound occurs when a bearer token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)
