package profile

import (
	"context"

	"chaeen-storefront/internal/domain"
)

// Repository reads profiles. Writes happen only during provisioning.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error)
}
