// Package auth issues and verifies bearer credentials and checks PINs.
//
// Two interchangeable CredentialVerifier strategies exist:
//
//   - TokenStrategy: a self-contained HS256 JWT. Nothing is stored server side,
//     so Revoke cannot invalidate an issued token before it expires.
//   - SessionStrategy: an opaque random value whose SHA-256 hash is stored
//     with an expiry. Revoke deletes the record.
//
// Both fail closed: any error from Verify means "not authenticated".
package auth

import "context"

// CredentialVerifier issues credentials bound to a user and resolves them back.
type CredentialVerifier interface {
	// Issue returns a new credential for userID valid for the strategy's TTL.
	Issue(ctx context.Context, userID string) (string, error)
	// Verify returns the user id bound to credential. It returns
	// common.ErrInvalidToken for empty, malformed, unknown or tampered input
	// and common.ErrTokenExpired for credentials past their expiry.
	Verify(ctx context.Context, credential string) (string, error)
	// Revoke invalidates credential where the strategy supports it.
	Revoke(ctx context.Context, credential string) error
}
