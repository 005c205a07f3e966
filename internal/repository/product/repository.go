package product

import (
	"context"

	"chaeen-storefront/internal/domain"
)

// Repository persists catalogue rows. Listings are ordered by sort_order,
// ties broken by insertion order.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Save(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
}
