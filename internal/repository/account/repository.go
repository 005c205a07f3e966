package account

import (
	"context"

	"chaeen-storefront/internal/domain"
)

// Repository persists sign-in credentials.
type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
}
