package auth

import "errors"

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
// Unknown-user, wrong-password, and replayed-token causes deliberately
// collapse into the same externally visible kinds; the richer cause goes to
// logs and the audit trail only.
var (
	// ErrMissingCredentials means the client omitted required input. Fails
	// fast: no store round-trip, no delay.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrWrongCredentials covers both unknown shortcode and wrong password,
	// always returned after the randomized failure delay.
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrInvalidToken covers signature, structure, expiry, and rotation-id
	// mismatch (including replay of an already-rotated token).
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenCreation is an internal failure to mint or persist a token.
	ErrTokenCreation = errors.New("token creation failed")
)
