// Package domain holds club session records: scheduled trainings and events,
// visible from a minimum membership tier upward.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one scheduled club session. Recurrence, when set, is a Postgres
// interval string (e.g. "7 days") paired with RecurrenceEnd.
type Session struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Location      string     `db:"location" json:"location"`
	Tier          int16      `db:"tier" json:"tier"`
	StartTime     time.Time  `db:"start_time" json:"start_time"`
	EndTime       time.Time  `db:"end_time" json:"end_time"`
	Recurrence    *string    `db:"recurrence" json:"recurrence,omitempty"`
	RecurrenceEnd *time.Time `db:"recurrence_end" json:"recurrence_end,omitempty"`
	UserLimit     *int16     `db:"user_limit" json:"user_limit,omitempty"`
	CreatedBy     uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Validate validates a session before persistence.
func (s *Session) Validate() error {
	if s.Title == "" || len(s.Title) > 50 {
		return errors.New("title must be 1-50 characters")
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !s.EndTime.After(s.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	if (s.Recurrence == nil) != (s.RecurrenceEnd == nil) {
		return errors.New("recurrence and recurrence_end must be set together")
	}
	if s.UserLimit != nil && *s.UserLimit < 1 {
		return errors.New("user_limit must be positive")
	}
	return nil
}
