package profile

import (
	"context"
	"errors"
	"io"
	"log"

	"chaeen-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id::text, username, phone, full_name, avatar_url, role, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const q = `
SELECT ` + profileColumns + `
FROM profiles
WHERE id = $1
`
	p, err := scanProfile(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("profile repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Upsert provisions a profile for an account, keeping existing optional
// fields when the new value is empty.
func (r *postgresRepo) Upsert(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	role := p.Role
	if role == "" {
		role = domain.RoleUser
	}
	const q = `
INSERT INTO profiles (id, username, phone, full_name, avatar_url, role)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
SET username = COALESCE(EXCLUDED.username, profiles.username),
    phone = COALESCE(EXCLUDED.phone, profiles.phone),
    full_name = COALESCE(EXCLUDED.full_name, profiles.full_name),
    avatar_url = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
    role = EXCLUDED.role,
    updated_at = now()
RETURNING ` + profileColumns
	out, err := scanProfile(r.pool.QueryRow(ctx, q, p.ID, p.Username, p.Phone, p.FullName, p.AvatarURL, string(role)))
	if err != nil {
		r.logger.Printf("profile repo: upsert id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("profile repo: upserted id=%s role=%s", out.ID, out.Role)
	return out, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		p    domain.Profile
		role string
	)
	if err := row.Scan(&p.ID, &p.Username, &p.Phone, &p.FullName, &p.AvatarURL, &role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}
