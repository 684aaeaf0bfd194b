package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Membership tiers, ordered. Higher tiers include the permissions of lower ones.
const (
	TierGuest  int16 = 0
	TierMember int16 = 1
	TierTeam   int16 = 2
)

var (
	nameRe      = regexp.MustCompile(`^[A-Za-z]+$`)
	shortcodeRe = regexp.MustCompile(`^[0-9A-Za-z_]+$`)
	// Passwords need at least one letter and one digit.
	passwordLetterRe = regexp.MustCompile(`[A-Za-z]`)
	passwordDigitRe  = regexp.MustCompile(`[0-9]`)
)

// User is a registered account. The auth service reads it for login and
// mutates only RefreshJTI and LastLogin; everything else is owned by
// registration and the membership sync.
type User struct {
	ID           uuid.UUID  `db:"id"`
	FirstName    string     `db:"first_name"`
	Surname      string     `db:"surname"`
	Shortcode    string     `db:"shortcode"`
	CID          string     `db:"cid"`
	PasswordHash string     `db:"password_hash"`
	Admin        bool       `db:"is_admin"`
	Tier         int16      `db:"tier"`
	RefreshJTI   *uuid.UUID `db:"refresh_jti"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLogin    *time.Time `db:"last_login"`
}

// DisplayName is the full name carried in access-token claims.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.Surname
}

// PendingUser is a registration awaiting email verification. Promoted to User
// once the verification token is presented.
type PendingUser struct {
	ID                uuid.UUID `db:"id"`
	VerificationToken uuid.UUID `db:"verification_token"`
	FirstName         string    `db:"first_name"`
	Surname           string    `db:"surname"`
	Shortcode         string    `db:"shortcode"`
	CID               string    `db:"cid"`
	PasswordHash      string    `db:"password_hash"`
	CreatedAt         time.Time `db:"created_at"`
}

// Registration is the validated input for creating an account. Password is
// plaintext here and must be hashed before persistence.
type Registration struct {
	FirstName string
	Surname   string
	Shortcode string
	CID       string
	Password  string
}

// Validate validates the registration input. Returns an error describing the
// first validation failure.
func (r *Registration) Validate() error {
	if err := validateName(r.FirstName); err != nil {
		return errors.New("first_name: " + err.Error())
	}
	if err := validateName(r.Surname); err != nil {
		return errors.New("surname: " + err.Error())
	}
	if r.Shortcode == "" || !shortcodeRe.MatchString(r.Shortcode) {
		return errors.New("shortcode must be non-empty letters, digits, or underscores")
	}
	if r.CID == "" {
		return errors.New("cid is required")
	}
	if len(r.Password) < 8 || len(r.Password) > 32 {
		return errors.New("password must be 8-32 characters")
	}
	if !passwordLetterRe.MatchString(r.Password) || !passwordDigitRe.MatchString(r.Password) {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}

func validateName(s string) error {
	if s == "" || len(s) > 20 {
		return errors.New("must be 1-20 characters")
	}
	if !nameRe.MatchString(s) {
		return errors.New("must contain only letters")
	}
	return nil
}
