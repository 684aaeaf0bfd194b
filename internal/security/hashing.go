package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash of a random string nobody knows. Comparing
// against it costs the same as a real verification, so callers can burn an
// equivalent amount of work when a shortcode does not resolve to a user.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4-31). Cost 12 is a
// reasonable default for interactive login.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of password. The result is a self-describing
// hash string (cost and salt included) suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks password against the stored hash. A non-matching password is
// not an error: it returns (false, nil). A structurally malformed stored hash
// returns (false, err); that is an operational fault, not a client one.
func (h *Hasher) Verify(hash string, password []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// CompareDummy runs a bcrypt comparison against a fixed dummy hash and
// discards the result. Callers use it to keep the "user not found" path
// observably as expensive as a real password check.
func (h *Hasher) CompareDummy(password []byte) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), password)
}
