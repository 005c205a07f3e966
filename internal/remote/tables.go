package remote

import (
	"context"
	"errors"
	"io"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/repository/product"
	"chaeen-storefront/internal/repository/profile"
	"chaeen-storefront/internal/storage"
)

type productTable struct {
	repo product.Repository
}

// Select returns matching rows ordered by sort order, ties by insertion.
func (t *productTable) Select(ctx context.Context, f Filter) ([]domain.Product, error) {
	if f.ID == "" {
		return t.repo.List(ctx, f.ActiveOnly)
	}
	p, err := t.repo.GetByID(ctx, f.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Product{}, nil
		}
		return nil, err
	}
	if f.ActiveOnly && !p.IsActive {
		return []domain.Product{}, nil
	}
	return []domain.Product{*p}, nil
}

func (t *productTable) Insert(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	return t.repo.Create(ctx, in)
}

func (t *productTable) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	return t.repo.Update(ctx, id, patch)
}

func (t *productTable) Delete(ctx context.Context, id string) error {
	return t.repo.Delete(ctx, id)
}

type profileTable struct {
	repo profile.Repository
}

func (t *profileTable) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return t.repo.GetByID(ctx, id)
}

type bucketStore struct {
	objects storage.ObjectStore
}

func (b *bucketStore) Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error {
	return b.objects.Put(ctx, bucket, path, body, opts)
}

func (b *bucketStore) PublicURL(bucket, path string) string {
	return b.objects.PublicURL(bucket, path)
}

func (b *bucketStore) Remove(ctx context.Context, bucket string, paths []string) error {
	return b.objects.Remove(ctx, bucket, paths)
}
