package remotetest

import (
	"context"
	"io"
	"time"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/remote"
	"chaeen-storefront/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// PublicURL is the storage base URL used by fixtures.
const PublicURL = "https://files.example.com"

// Objects wraps an in-memory store and can be told to fail.
type Objects struct {
	*storage.Memory
	FailPut    error
	FailRemove error
	Removed    [][]string
}

func (o *Objects) Put(ctx context.Context, bucket, key string, body io.Reader, opts storage.PutOptions) error {
	if o.FailPut != nil {
		return o.FailPut
	}
	return o.Memory.Put(ctx, bucket, key, body, opts)
}

func (o *Objects) Remove(ctx context.Context, bucket string, keys []string) error {
	o.Removed = append(o.Removed, append([]string(nil), keys...))
	if o.FailRemove != nil {
		return o.FailRemove
	}
	return o.Memory.Remove(ctx, bucket, keys)
}

// Fixture is a fully in-memory remote client with handles on every backend.
type Fixture struct {
	Accounts *Accounts
	Sessions *Sessions
	Products *Products
	Profiles *Profiles
	Objects  *Objects
	Client   *remote.Client
}

// New builds a Fixture with a one-hour session lifetime.
func New() *Fixture {
	f := &Fixture{
		Accounts: NewAccounts(),
		Sessions: NewSessions(),
		Products: NewProducts(),
		Profiles: NewProfiles(),
		Objects:  &Objects{Memory: storage.NewMemory(PublicURL)},
	}
	f.Client = remote.New(remote.Backends{
		Accounts: f.Accounts,
		Sessions: f.Sessions,
		Products: f.Products,
		Profiles: f.Profiles,
		Objects:  f.Objects,
	}, remote.Options{SessionTTL: time.Hour})
	return f
}

// AddPrincipal provisions an account and profile. Empty email or phone is left unset.
func (f *Fixture) AddPrincipal(email, phone, password string, role domain.Role) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	acc := domain.Account{PasswordHash: string(hash)}
	if email != "" {
		acc.Email = &email
	}
	if phone != "" {
		acc.Phone = &phone
	}
	ctx := context.Background()
	created, err := f.Accounts.Create(ctx, acc)
	if err != nil {
		return "", err
	}
	if role != "" {
		if _, err := f.Profiles.Upsert(ctx, domain.Profile{ID: created.ID, Role: role}); err != nil {
			return "", err
		}
	}
	return created.ID, nil
}
