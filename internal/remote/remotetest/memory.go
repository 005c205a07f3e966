// Package remotetest provides in-memory backends for the remote client.
package remotetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/repository/session"
	"github.com/google/uuid"
)

// Products is an in-memory product.Repository. Set Fail to make every call error.
type Products struct {
	mu   sync.Mutex
	rows map[string]productRow
	seq  int64
	Fail error
	now  func() time.Time
}

type productRow struct {
	seq int64
	p   domain.Product
}

func NewProducts() *Products {
	return &Products{rows: make(map[string]productRow), now: time.Now}
}

func (r *Products) List(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	rows := make([]productRow, 0, len(r.rows))
	for _, row := range r.rows {
		if activeOnly && !row.p.IsActive {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].p.SortOrder != rows[j].p.SortOrder {
			return rows[i].p.SortOrder < rows[j].p.SortOrder
		}
		return rows[i].seq < rows[j].seq
	})
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneProduct(row.p))
	}
	return out, nil
}

func (r *Products) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := cloneProduct(row.p)
	return &p, nil
}

func (r *Products) Create(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	return r.insertLocked(uuid.NewString(), in), nil
}

func (r *Products) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Empty() {
		p := cloneProduct(row.p)
		return &p, nil
	}
	patch.Apply(&row.p)
	row.p.UpdatedAt = r.now()
	r.rows[id] = row
	p := cloneProduct(row.p)
	return &p, nil
}

// Delete removes the row; a missing row is a no-op.
func (r *Products) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	delete(r.rows, id)
	return nil
}

func (r *Products) Save(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	if id == "" {
		id = uuid.NewString()
	}
	if row, ok := r.rows[id]; ok {
		domain.PatchFromInput(in).Apply(&row.p)
		row.p.UpdatedAt = r.now()
		r.rows[id] = row
		p := cloneProduct(row.p)
		return &p, nil
	}
	return r.insertLocked(id, in), nil
}

func (r *Products) insertLocked(id string, in domain.ProductInput) *domain.Product {
	r.seq++
	now := r.now()
	p := domain.Product{ID: id, CreatedAt: now, UpdatedAt: now}
	domain.PatchFromInput(in).Apply(&p)
	if p.Benefits == nil {
		p.Benefits = []string{}
	}
	r.rows[id] = productRow{seq: r.seq, p: p}
	out := cloneProduct(p)
	return &out
}

func cloneProduct(p domain.Product) domain.Product {
	p.Benefits = append([]string{}, p.Benefits...)
	return p
}

// Accounts is an in-memory account.Repository.
type Accounts struct {
	mu   sync.Mutex
	byID map[string]domain.Account
}

func NewAccounts() *Accounts {
	return &Accounts{byID: make(map[string]domain.Account)}
}

func (r *Accounts) Create(_ context.Context, a domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*a.Email))
		a.Email = &lowered
	}
	for _, existing := range r.byID {
		if sameString(existing.Email, a.Email) || sameString(existing.Phone, a.Phone) {
			return nil, domain.ErrAlreadyExists
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	r.byID[a.ID] = a
	clone := a
	return &clone, nil
}

func (r *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(a domain.Account) bool { return a.Email != nil && *a.Email == email })
}

func (r *Accounts) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	phone = strings.TrimSpace(phone)
	return r.find(func(a domain.Account) bool { return a.Phone != nil && *a.Phone == phone })
}

func (r *Accounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *Accounts) SetPassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	r.byID[id] = a
	return nil
}

func (r *Accounts) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if match(a) {
			clone := a
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func sameString(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

// Sessions is an in-memory session.Repository.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]session.Token
	// FailDelete makes Delete return this error.
	FailDelete error
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]session.Token)}
}

func (r *Sessions) Create(_ context.Context, token session.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrAlreadyExists
	}
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *Sessions) Get(_ context.Context, token string) (*session.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *Sessions) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// Expire moves every session's expiry into the past.
func (r *Sessions) Expire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.tokens {
		t.ExpiresAt = time.Now().Add(-time.Minute)
		r.tokens[k] = t
	}
}

// Profiles is an in-memory profile.Repository.
type Profiles struct {
	mu   sync.Mutex
	byID map[string]domain.Profile
	Fail error
}

func NewProfiles() *Profiles {
	return &Profiles{byID: make(map[string]domain.Profile)}
}

func (r *Profiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *Profiles) Upsert(_ context.Context, p domain.Profile) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Role == "" {
		p.Role = domain.RoleUser
	}
	now := time.Now()
	if existing, ok := r.byID[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.byID[p.ID] = p
	clone := p
	return &clone, nil
}
