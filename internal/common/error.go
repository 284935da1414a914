// Package common defines shared constants and sentinel errors used across
// the authgate server, its transports and the authctl tool. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrInvalidRequest = errors.New("invalid request")

	// Registration: the username is already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// Login: returned for both an unknown user and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token validation, whatever check failed.
	ErrTokenRejected = errors.New("token rejected")
)
