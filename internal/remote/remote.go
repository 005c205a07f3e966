package remote

import (
	"context"
	"io"
	"log"
	"time"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/repository/account"
	"chaeen-storefront/internal/repository/product"
	"chaeen-storefront/internal/repository/profile"
	"chaeen-storefront/internal/repository/session"
	"chaeen-storefront/internal/storage"
)

// Credentials identify a principal by email or phone plus password.
// Exactly one of Email and Phone is expected to be set.
type Credentials struct {
	Email    string
	Phone    string
	Password string
}

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        domain.User
}

// Filter narrows a product select.
type Filter struct {
	ActiveOnly bool
	ID         string
}

// UploadOptions controls how an object is written to a bucket.
type UploadOptions = storage.PutOptions

type Auth interface {
	SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, token string) (*domain.User, error)
}

type Products interface {
	Select(ctx context.Context, f Filter) ([]domain.Product, error)
	Insert(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type Profiles interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
}

type Storage interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths []string) error
}

// Client bundles the hosted-backend surfaces.
type Client struct {
	Auth     Auth
	Products Products
	Profiles Profiles
	Storage  Storage
}

// Options tunes the backend client.
type Options struct {
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Backends are the persistence pieces a Client is assembled from.
type Backends struct {
	Accounts account.Repository
	Sessions session.Repository
	Products product.Repository
	Profiles profile.Repository
	Objects  storage.ObjectStore
}

// New assembles a Client over the given backends.
func New(b Backends, opts Options) *Client {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		Auth:     newPasswordAuth(b.Accounts, b.Sessions, opts.SessionTTL, opts.Logger),
		Products: &productTable{repo: b.Products},
		Profiles: &profileTable{repo: b.Profiles},
		Storage:  &bucketStore{objects: b.Objects},
	}
}
