// Package repository persists admin accounts.
package repository

import (
	"context"

	"membership-portal/backend/internal/admin/domain"
)

// Repository stores admin accounts.
type Repository interface {
	Create(ctx context.Context, a *domain.Admin) error
	List(ctx context.Context) ([]*domain.Admin, error)
}
