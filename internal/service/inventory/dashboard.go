// Package inventory drives the admin product dashboard.
package inventory

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/querycache"
	"chaeen-storefront/internal/service/notice"
	"chaeen-storefront/internal/service/shop"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 * 1024 * 1024

var (
	ErrInvalidFile    = errors.New("Please upload an image file")
	ErrFileTooLarge   = errors.New("Max file size is 5MB")
	ErrNothingPending = errors.New("no product selected for deletion")
	ErrUploadInFlight = errors.New("an image upload is already in progress")
)

// API is the part of the storefront API the dashboard needs.
type API interface {
	AdminProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadProductImage(ctx context.Context, f shop.File) (string, error)
}

// Dashboard holds the per-session dashboard state.
type Dashboard struct {
	api    API
	cache  *querycache.Cache
	logger *log.Logger

	mu        sync.Mutex
	pending   string
	uploading bool
	notices   notice.Queue
}

func New(api API, cache *querycache.Cache, logger *log.Logger) *Dashboard {
	if cache == nil {
		cache = querycache.New(0)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dashboard{api: api, cache: cache, logger: logger}
}

// Products returns the admin listing, served from cache until a mutation.
func (d *Dashboard) Products(ctx context.Context) ([]domain.Product, error) {
	return querycache.Fetch(ctx, d.cache, querycache.KeyAdminProducts, d.api.AdminProducts)
}

func (d *Dashboard) Create(ctx context.Context, f Form) (*domain.Product, error) {
	in, err := f.Validate(d.Uploading())
	if err != nil {
		return nil, err
	}
	p, err := d.api.CreateProduct(ctx, in)
	if err != nil {
		d.fail(err)
		return nil, err
	}
	d.cache.InvalidateProducts()
	d.notices.Push(notice.Success("Product created successfully"))
	d.logger.Printf("inventory: created product id=%s", p.ID)
	return p, nil
}

func (d *Dashboard) Update(ctx context.Context, id string, f Form) (*domain.Product, error) {
	in, err := f.Validate(d.Uploading())
	if err != nil {
		return nil, err
	}
	p, err := d.api.UpdateProduct(ctx, id, domain.PatchFromInput(in))
	if err != nil {
		d.fail(err)
		return nil, err
	}
	d.cache.InvalidateProducts()
	d.notices.Push(notice.Success("Product updated successfully"))
	d.logger.Printf("inventory: updated product id=%s", p.ID)
	return p, nil
}

// RequestDelete selects a product for deletion. Nothing is deleted yet.
func (d *Dashboard) RequestDelete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = id
}

func (d *Dashboard) PendingDelete() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Dashboard) CancelDelete() {
	d.RequestDelete("")
}

// ConfirmDelete deletes the selected product. The selection is kept on failure.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	id := d.PendingDelete()
	if id == "" {
		return ErrNothingPending
	}
	if err := d.api.DeleteProduct(ctx, id); err != nil {
		d.fail(err)
		return err
	}
	d.mu.Lock()
	if d.pending == id {
		d.pending = ""
	}
	d.mu.Unlock()
	d.cache.InvalidateProducts()
	d.notices.Push(notice.Success("Product deleted successfully"))
	d.logger.Printf("inventory: deleted product id=%s", id)
	return nil
}

// UploadImage checks type and size locally, then uploads and returns the URL.
func (d *Dashboard) UploadImage(ctx context.Context, f shop.File) (string, error) {
	if !strings.HasPrefix(f.ContentType, "image/") {
		d.notices.Push(notice.Failure("Invalid file", ErrInvalidFile.Error()))
		return "", ErrInvalidFile
	}
	if f.Size > MaxImageSize {
		d.notices.Push(notice.Failure("File too large", ErrFileTooLarge.Error()))
		return "", ErrFileTooLarge
	}

	d.mu.Lock()
	if d.uploading {
		d.mu.Unlock()
		return "", ErrUploadInFlight
	}
	d.uploading = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.uploading = false
		d.mu.Unlock()
	}()

	url, err := d.api.UploadProductImage(ctx, f)
	if err != nil {
		d.notices.Push(notice.Failure("Upload failed", err.Error()))
		return "", err
	}
	d.notices.Push(notice.Success("Image uploaded successfully"))
	return url, nil
}

func (d *Dashboard) Uploading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploading
}

// Notices drains the pending notifications.
func (d *Dashboard) Notices() []notice.Notice {
	return d.notices.Drain()
}

func (d *Dashboard) fail(err error) {
	d.logger.Printf("inventory: mutation failed: %v", err)
	d.notices.Push(notice.Failure("Error", err.Error()))
}
