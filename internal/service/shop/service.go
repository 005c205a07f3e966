package shop

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/remote"
	"github.com/google/uuid"
)

const (
	DefaultCountryCode = "+91"
	DefaultBucket      = "product-images"
	DefaultPathPrefix  = "products/"

	imageCacheControl = "3600"
)

var digitsOnly = regexp.MustCompile(`^\d{10,}$`)

// Options tunes identifier normalization and image placement.
type Options struct {
	CountryCode string
	Bucket      string
	PathPrefix  string
	Logger      *log.Logger
}

// File is an uploaded image as handed over by the caller.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service is the typed storefront API over the remote backend.
type Service struct {
	remote *remote.Client
	tokens TokenStore
	opts   Options
	now    func() time.Time
}

// New creates a Service. Token state starts empty; see WithTokens.
func New(client *remote.Client, opts Options) *Service {
	if opts.CountryCode == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	if opts.PathPrefix == "" {
		opts.PathPrefix = DefaultPathPrefix
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	return &Service{remote: client, tokens: &MemoryTokens{}, opts: opts, now: time.Now}
}

// WithTokens returns a copy of the service bound to the given token store.
func (s *Service) WithTokens(tokens TokenStore) *Service {
	clone := *s
	clone.tokens = tokens
	return &clone
}

// Bucket reports the image bucket name.
func (s *Service) Bucket() string { return s.opts.Bucket }

// IsPhoneIdentifier reports whether a sign-in identifier is a phone number.
func IsPhoneIdentifier(identifier string) bool {
	return strings.HasPrefix(identifier, "+") || digitsOnly.MatchString(identifier)
}

// SignIn authenticates by email or phone and keeps the issued session token.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (*remote.Session, error) {
	creds := remote.Credentials{Password: password}
	if IsPhoneIdentifier(identifier) {
		if strings.HasPrefix(identifier, "+") {
			creds.Phone = identifier
		} else {
			creds.Phone = s.opts.CountryCode + identifier
		}
	} else {
		creds.Email = identifier
	}

	sess, err := s.remote.Auth.SignInWithPassword(ctx, creds)
	if err != nil {
		return nil, &domain.AuthenticationError{Err: err}
	}
	s.tokens.SetToken(sess.AccessToken)
	return sess, nil
}

// SignOut ends the current session. The local token is only dropped on success.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.remote.Auth.SignOut(ctx, s.tokens.Token()); err != nil {
		return &domain.AuthenticationError{Err: err}
	}
	s.tokens.SetToken("")
	return nil
}

func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	user, err := s.remote.Auth.GetUser(ctx, s.tokens.Token())
	if err != nil {
		return nil, &domain.AuthenticationError{Err: err}
	}
	return user, nil
}

// CurrentProfile returns nil when there is no principal or no readable profile.
func (s *Service) CurrentProfile(ctx context.Context) *domain.Profile {
	user, err := s.CurrentUser(ctx)
	if err != nil || user == nil {
		return nil
	}
	p, err := s.remote.Profiles.Get(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.opts.Logger.Printf("shop: profile lookup user=%s error=%v", user.ID, err)
		}
		return nil
	}
	return p
}

func (s *Service) IsAdmin(ctx context.Context) bool {
	p := s.CurrentProfile(ctx)
	return p != nil && p.Role == domain.RoleAdmin
}

// Products lists active products for the public catalog.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.remote.Products.Select(ctx, remote.Filter{ActiveOnly: true})
	if err != nil {
		return nil, &domain.DataAccessError{Err: err}
	}
	return nonNil(rows), nil
}

// AdminProducts lists every product regardless of the active flag.
func (s *Service) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.remote.Products.Select(ctx, remote.Filter{})
	if err != nil {
		return nil, &domain.DataAccessError{Err: err}
	}
	return nonNil(rows), nil
}

// Product fetches one product. Missing rows and failures both yield nil.
func (s *Service) Product(ctx context.Context, id string) *domain.Product {
	rows, err := s.remote.Products.Select(ctx, remote.Filter{ID: id})
	if err != nil {
		s.opts.Logger.Printf("shop: product id=%s error=%v", id, err)
		return nil
	}
	if len(rows) != 1 {
		return nil
	}
	return &rows[0]
}

func (s *Service) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p, err := s.remote.Products.Insert(ctx, in)
	if err != nil {
		return nil, &domain.DataAccessError{Err: err}
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	p, err := s.remote.Products.Update(ctx, id, patch)
	if err != nil {
		return nil, &domain.DataAccessError{Err: err}
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.remote.Products.Delete(ctx, id); err != nil {
		return &domain.DataAccessError{Err: err}
	}
	return nil
}

// UploadProductImage stores the file under a fresh name and returns its public URL.
func (s *Service) UploadProductImage(ctx context.Context, f File) (string, error) {
	path := s.opts.PathPrefix + s.imageName(f.Name)
	err := s.remote.Storage.Upload(ctx, s.opts.Bucket, path, f.Body, remote.UploadOptions{
		ContentType:  f.ContentType,
		CacheControl: imageCacheControl,
		Upsert:       false,
	})
	if err != nil {
		return "", &domain.StorageError{Err: err}
	}
	return s.remote.Storage.PublicURL(s.opts.Bucket, path), nil
}

// DeleteProductImage removes a previously uploaded image. URLs that do not
// point into the image bucket are ignored.
func (s *Service) DeleteProductImage(ctx context.Context, imageURL string) error {
	path, ok := s.ImagePath(imageURL)
	if !ok {
		return nil
	}
	if err := s.remote.Storage.Remove(ctx, s.opts.Bucket, []string{path}); err != nil {
		return &domain.StorageError{Err: err}
	}
	return nil
}

// ImagePath extracts the object path from a public image URL.
func (s *Service) ImagePath(imageURL string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	marker := "/storage/v1/object/public/" + s.opts.Bucket + "/"
	_, path, found := strings.Cut(u.Path, marker)
	if !found || path == "" {
		return "", false
	}
	return path, true
}

func (s *Service) imageName(original string) string {
	ext := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = original[i+1:]
	}
	id := uuid.New()
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	return fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), suffix, ext)
}

func nonNil(rows []domain.Product) []domain.Product {
	if rows == nil {
		return []domain.Product{}
	}
	return rows
}
