package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"chaeen-storefront/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ProductWriter saves a product under a fixed id.
type ProductWriter interface {
	Save(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
}

// AccountStore is the account repository subset needed to provision an admin.
type AccountStore interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// ProfileWriter upserts profiles.
type ProfileWriter interface {
	Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error)
}

// Admin describes the bootstrap admin principal. Phone numbers without a
// leading "+" get CountryCode prepended.
type Admin struct {
	Email       string
	Phone       string
	Password    string
	CountryCode string
}

type Seeder struct {
	products ProductWriter
	accounts AccountStore
	profiles ProfileWriter
	logger   *log.Logger
	cost     int
}

func New(products ProductWriter, accounts AccountStore, profiles ProfileWriter, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Seeder{products: products, accounts: accounts, profiles: profiles, logger: logger, cost: bcrypt.DefaultCost}
}

const demoImage = "/images/chaeen-matcha.png"

// DemoProducts is the launch catalogue. Ids are fixed so reseeding overwrites.
var DemoProducts = []struct {
	ID    string
	Input domain.ProductInput
}{
	{
		ID: "8f6a1c2e-3b4d-4e5f-9a0b-000000000030",
		Input: domain.ProductInput{
			Name:          "CHAEEN MATCHA – Ceremonial Grade A",
			Weight:        "30g",
			OriginalPrice: 999,
			Price:         899,
			Description:   "Premium Ceremonial Grade A matcha sourced directly from Shizuoka, Japan. Rich in antioxidants, supports heart health, immunity, and glowing skin. Stone-ground, vibrant green, and smooth umami taste.",
			Benefits:      []string{"Rich in Antioxidants", "Supports Heart Health", "Boosts Immunity", "Promotes Glowing Skin"},
			Image:         demoImage,
			Category:      domain.CategoryCeremonial,
			IsActive:      true,
			SortOrder:     0,
		},
	},
	{
		ID: "8f6a1c2e-3b4d-4e5f-9a0b-000000000015",
		Input: domain.ProductInput{
			Name:          "CHAEEN MATCHA – Ceremonial Grade A",
			Weight:        "15g",
			OriginalPrice: 559,
			Price:         469,
			Description:   "The same premium quality in a smaller pack. Perfect for trying out or gifting. Sourced from Shizuoka, Japan.",
			Benefits:      []string{"Rich in Antioxidants", "Supports Heart Health", "Boosts Immunity"},
			Image:         demoImage,
			Category:      domain.CategoryCeremonial,
			IsActive:      true,
			SortOrder:     1,
		},
	},
}

// Products upserts the demo catalogue. It is idempotent.
func (s *Seeder) Products(ctx context.Context) error {
	for _, p := range DemoProducts {
		if _, err := s.products.Save(ctx, p.ID, p.Input); err != nil {
			return fmt.Errorf("save product %s: %w", p.Input.Weight, err)
		}
	}
	s.logger.Printf("seeded %d products", len(DemoProducts))
	return nil
}

// Admin creates the admin account or resets its password, then grants the
// admin role. An admin without a password is skipped.
func (s *Seeder) Admin(ctx context.Context, a Admin) (string, error) {
	if a.Password == "" {
		s.logger.Printf("no admin password configured, skipping admin account")
		return "", nil
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	phone := normalizePhone(a.Phone, a.CountryCode)
	if email == "" && phone == "" {
		return "", errors.New("admin needs an email or a phone number")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	acc, err := s.findAccount(ctx, email, phone)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		newAcc := domain.Account{PasswordHash: string(hash)}
		if email != "" {
			newAcc.Email = &email
		}
		if phone != "" {
			newAcc.Phone = &phone
		}
		acc, err = s.accounts.Create(ctx, newAcc)
		if err != nil {
			return "", fmt.Errorf("create admin account: %w", err)
		}
		s.logger.Printf("created admin account id=%s", acc.ID)
	case err != nil:
		return "", fmt.Errorf("lookup admin account: %w", err)
	default:
		if err := s.accounts.SetPassword(ctx, acc.ID, string(hash)); err != nil {
			return "", fmt.Errorf("reset admin password: %w", err)
		}
		s.logger.Printf("reset password for admin account id=%s", acc.ID)
	}

	profile := domain.Profile{ID: acc.ID, Role: domain.RoleAdmin}
	if phone != "" {
		profile.Phone = &phone
	}
	if _, err := s.profiles.Upsert(ctx, profile); err != nil {
		return "", fmt.Errorf("grant admin role: %w", err)
	}
	return acc.ID, nil
}

func (s *Seeder) findAccount(ctx context.Context, email, phone string) (*domain.Account, error) {
	if email != "" {
		acc, err := s.accounts.GetByEmail(ctx, email)
		if !errors.Is(err, domain.ErrNotFound) {
			return acc, err
		}
	}
	if phone != "" {
		return s.accounts.GetByPhone(ctx, phone)
	}
	return nil, domain.ErrNotFound
}

func normalizePhone(phone, countryCode string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return countryCode + phone
}
