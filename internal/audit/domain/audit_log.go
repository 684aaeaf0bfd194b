package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents an audit event.
type AuditLog struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Action    string     `db:"action" json:"action"`
	Resource  string     `db:"resource" json:"resource"`
	IP        string     `db:"ip" json:"ip"`
	Metadata  string     `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
