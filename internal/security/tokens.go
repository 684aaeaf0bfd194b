package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token is malformed, forged, or
	// signed with the wrong key family.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a correctly signed token is past its
	// expiry. Callers must not leak the distinction to clients; it exists for
	// logging and metrics only.
	ErrTokenExpired = errors.New("token expired")
	// ErrMissingKey is returned when a TokenProvider is constructed without
	// both signing secrets.
	ErrMissingKey = errors.New("missing signing key")
)

// Keys holds the two independent HS256 key families. Compromise of one must
// not allow minting the other token type, so they are never shared.
type Keys struct {
	Access  []byte
	Refresh []byte
}

// AccessClaims holds JWT claims for the access token. Access tokens are
// self-contained: protected requests are authorized from these fields alone,
// with no store lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Tier   int16     `json:"tier"`
	Admin  bool      `json:"admin"`
}

// RefreshClaims holds JWT claims for the refresh token. The rotation id lives
// in RegisteredClaims.ID (jti) and must match the user's stored refresh_jti
// at validation time.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
}

// TokenProvider issues and validates access and refresh JWTs (HS256) with
// independent signing keys per token type.
type TokenProvider struct {
	keys       Keys
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given key pair.
// Both secrets are required and must be distinct key material.
func NewTokenProvider(keys Keys, issuer string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if len(keys.Access) == 0 || len(keys.Refresh) == 0 {
		return nil, ErrMissingKey
	}
	return &TokenProvider{
		keys:       keys,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccess issues a short-lived access JWT carrying the user's identity
// snapshot. Returns the token string and its expiry.
func (p *TokenProvider) IssueAccess(shortcode string, userID uuid.UUID, name string, tier int16, admin bool) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shortcode,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Name:   name,
		Tier:   tier,
		Admin:  admin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.keys.Access)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// IssueRefresh issues a long-lived refresh JWT bound to the given rotation id.
// The caller must persist jti as the user's current refresh id before handing
// the token out.
func (p *TokenProvider) IssueRefresh(shortcode string, userID, jti uuid.UUID) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(p.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   shortcode,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.keys.Refresh)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccess parses and validates an access token (signature, exp, iss).
// Returns ErrTokenExpired for a correctly signed but expired token and
// ErrInvalidToken for everything else. No field is trusted before the
// signature verifies.
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims, p.keys.Access); err != nil {
		return nil, err
	}
	if claims.Issuer != p.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefresh parses and validates a refresh token (signature, exp, iss)
// and requires a non-empty rotation id. Error semantics match ValidateAccess.
func (p *TokenProvider) ValidateRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims, p.keys.Refresh); err != nil {
		return nil, err
	}
	if claims.Issuer != p.issuer {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims, key []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})
	if err != nil {
		// exp is checked only after the signature verified, so an expired
		// result is trustworthy and worth telling apart in logs.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
