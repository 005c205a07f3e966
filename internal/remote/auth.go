package remote

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"strings"
	"time"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/repository/account"
	"chaeen-storefront/internal/repository/session"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the identifier or password does not match.
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	// ErrMissingIdentifier is returned when neither email nor phone is given.
	ErrMissingIdentifier = errors.New("Email or phone is required")
)

type passwordAuth struct {
	accounts account.Repository
	tokens   *tokenManager
	ttl      time.Duration
	logger   *log.Logger
}

func newPasswordAuth(accounts account.Repository, sessions session.Repository, ttl time.Duration, logger *log.Logger) *passwordAuth {
	return &passwordAuth{
		accounts: accounts,
		tokens:   newTokenManager(sessions),
		ttl:      ttl,
		logger:   logger,
	}
}

func (a *passwordAuth) SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error) {
	var (
		acc *domain.Account
		err error
	)
	switch {
	case strings.TrimSpace(creds.Email) != "":
		acc, err = a.accounts.GetByEmail(ctx, creds.Email)
	case strings.TrimSpace(creds.Phone) != "":
		acc, err = a.accounts.GetByPhone(ctx, creds.Phone)
	default:
		return nil, ErrMissingIdentifier
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := a.tokens.Issue(ctx, acc.ID, a.ttl)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("auth: signed in account=%s", acc.ID)
	return &Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        userFromAccount(acc),
	}, nil
}

// SignOut revokes the session. An empty or unknown token is not an error.
func (a *passwordAuth) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.tokens.Revoke(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// GetUser resolves the principal behind a token, or nil when there is none.
func (a *passwordAuth) GetUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	accountID, ok, err := a.tokens.Validate(ctx, token)
	if err != nil || !ok {
		return nil, err
	}
	acc, err := a.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u := userFromAccount(acc)
	return &u, nil
}

func userFromAccount(acc *domain.Account) domain.User {
	return domain.User{ID: acc.ID, Email: acc.Email, Phone: acc.Phone}
}

type tokenManager struct {
	repo session.Repository
	now  func() time.Time
}

func newTokenManager(repo session.Repository) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(ctx context.Context, accountID string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, session.Token{
			Token:     token,
			AccountID: accountID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errors.New("token collision")
}

// Validate reports the account bound to a live token; expired tokens are purged.
func (m *tokenManager) Validate(ctx context.Context, token string) (string, bool, error) {
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if !m.now().Before(meta.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return "", false, nil
	}
	return meta.AccountID, true, nil
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
