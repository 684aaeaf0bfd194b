// Package domain holds admin accounts for the management console. Admins are
// separate from member accounts and never log in through the member flow.
package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	usernameRe = regexp.MustCompile(`^[0-9A-Za-z_]+$`)
	// Admin passwords require an upper, a lower, and a digit, alphanumeric
	// only.
	passwordUpperRe = regexp.MustCompile(`[A-Z]`)
	passwordLowerRe = regexp.MustCompile(`[a-z]`)
	passwordDigitRe = regexp.MustCompile(`[0-9]`)
	passwordCharsRe = regexp.MustCompile(`^[0-9A-Za-z]+$`)
)

// Admin is a management console account.
type Admin struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
}

// NewAdminInput is the validated input for creating an admin account.
type NewAdminInput struct {
	Username string
	Password string
}

// Validate validates the input. Returns an error describing the first
// validation failure.
func (in *NewAdminInput) Validate() error {
	if len(in.Username) < 5 || len(in.Username) > 20 || !usernameRe.MatchString(in.Username) {
		return errors.New("username must be 5-20 letters, digits, or underscores")
	}
	if len(in.Password) < 8 || len(in.Password) > 32 {
		return errors.New("password must be 8-32 characters")
	}
	if !passwordCharsRe.MatchString(in.Password) ||
		!passwordUpperRe.MatchString(in.Password) ||
		!passwordLowerRe.MatchString(in.Password) ||
		!passwordDigitRe.MatchString(in.Password) {
		return errors.New("password must be alphanumeric with an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}
