package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type ProductsRepo interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
}

type ProductsRepoImpl struct{ pool *pgxpool.Pool }

func NewProductsRepo(pool *pgxpool.Pool) *ProductsRepoImpl { return &ProductsRepoImpl{pool: pool} }

// Prices are numeric in Postgres; they round-trip as text so decimal keeps
// exact cents.
const productCols = `id, name, slug, description, category, price::text, sale_price::text, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	var salePrice *string
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &price, &salePrice, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = d
	if salePrice != nil {
		sp, err := decimal.NewFromString(*salePrice)
		if err != nil {
			return nil, err
		}
		p.SalePrice = &sp
	}
	return &p, nil
}

func (r *ProductsRepoImpl) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE active`
	args := []any{}
	if category != "" {
		q += ` AND category=$1`
		args = append(args, category)
	}
	q += ` ORDER BY name ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductsRepoImpl) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE slug=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	p, err := scanProduct(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductsRepoImpl) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE id = ANY($1) AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
