package security

import "time"

// Test signing secrets for unit tests only. Do not use in production.
var testKeys = Keys{
	Access:  []byte("test-access-secret-0123456789abcdef"),
	Refresh: []byte("test-refresh-secret-0123456789abcdef"),
}

// NewTestTokenProvider returns a TokenProvider using fixed test secrets.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider(testKeys, "test-issuer", 15*time.Minute, 24*time.Hour)
}

// NewTestTokenProviderTTL returns a test TokenProvider with custom lifetimes,
// for expiry-boundary tests.
func NewTestTokenProviderTTL(accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	return NewTokenProvider(testKeys, "test-issuer", accessTTL, refreshTTL)
}
