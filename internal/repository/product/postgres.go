package product

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"chaeen-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, name, weight, original_price, price, description, benefits, image, category, is_active, sort_order, created_at, updated_at`

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

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE ($1::boolean = FALSE OR is_active)
ORDER BY sort_order ASC, seq ASC
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		r.logger.Printf("product repo: list active_only=%t error=%v", activeOnly, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows active_only=%t error=%v", activeOnly, err)
		return nil, err
	}
	r.logger.Printf("product repo: list active_only=%t count=%d", activeOnly, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if isMissing(err) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	benefits, err := encodeBenefits(in.Benefits)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (name, weight, original_price, price, description, benefits, image, category, is_active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		in.Name,
		in.Weight,
		in.OriginalPrice,
		in.Price,
		in.Description,
		benefits,
		in.Image,
		string(in.Category),
		in.IsActive,
		in.SortOrder,
	))
	if err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", in.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", p.ID, p.Name)
	return p, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}
	var benefits *string
	if patch.Benefits != nil {
		enc, err := encodeBenefits(*patch.Benefits)
		if err != nil {
			return nil, err
		}
		benefits = &enc
	}
	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}
	const q = `
UPDATE products SET
    name = COALESCE($2, name),
    weight = COALESCE($3, weight),
    original_price = COALESCE($4, original_price),
    price = COALESCE($5, price),
    description = COALESCE($6, description),
    benefits = COALESCE($7::jsonb, benefits),
    image = COALESCE($8, image),
    category = COALESCE($9, category),
    is_active = COALESCE($10, is_active),
    sort_order = COALESCE($11, sort_order),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		id,
		patch.Name,
		patch.Weight,
		patch.OriginalPrice,
		patch.Price,
		patch.Description,
		benefits,
		patch.Image,
		category,
		patch.IsActive,
		patch.SortOrder,
	))
	if err != nil {
		if isMissing(err) {
			r.logger.Printf("product repo: update id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: updated id=%s", p.ID)
	return p, nil
}

// Delete removes the row; deleting an absent row is not an error.
func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	r.logger.Printf("product repo: delete id=%s rows=%d", id, cmd.RowsAffected())
	return nil
}

// Save inserts a row with a caller-chosen id, or overwrites it when present.
// An empty id behaves like Create.
func (r *postgresRepo) Save(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	if id == "" {
		return r.Create(ctx, in)
	}
	benefits, err := encodeBenefits(in.Benefits)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (id, name, weight, original_price, price, description, benefits, image, category, is_active, sort_order)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    weight = EXCLUDED.weight,
    original_price = EXCLUDED.original_price,
    price = EXCLUDED.price,
    description = EXCLUDED.description,
    benefits = EXCLUDED.benefits,
    image = EXCLUDED.image,
    category = EXCLUDED.category,
    is_active = EXCLUDED.is_active,
    sort_order = EXCLUDED.sort_order,
    updated_at = now()
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q,
		id,
		in.Name,
		in.Weight,
		in.OriginalPrice,
		in.Price,
		in.Description,
		benefits,
		in.Image,
		string(in.Category),
		in.IsActive,
		in.SortOrder,
	))
	if err != nil {
		r.logger.Printf("product repo: save id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: saved id=%s", p.ID)
	return p, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p        domain.Product
		benefits []byte
		category string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Weight,
		&p.OriginalPrice,
		&p.Price,
		&p.Description,
		&benefits,
		&p.Image,
		&category,
		&p.IsActive,
		&p.SortOrder,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = domain.Category(category)
	p.Benefits = []string{}
	if len(benefits) > 0 {
		if err := json.Unmarshal(benefits, &p.Benefits); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func encodeBenefits(benefits []string) (string, error) {
	if benefits == nil {
		benefits = []string{}
	}
	b, err := json.Marshal(benefits)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// isMissing treats a malformed uuid the same as an absent row.
func isMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
