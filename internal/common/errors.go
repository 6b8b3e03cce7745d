// Package common defines shared constants and sentinel errors used across
// the Lentik server and CLI. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Credential errors (missing, malformed, unknown or tampered).
	ErrInvalidToken = errors.New("invalid token")

	// Credential and invite lifecycle errors.
	ErrTokenExpired  = errors.New("token expired")
	ErrInviteExpired = errors.New("invite expired")
)
