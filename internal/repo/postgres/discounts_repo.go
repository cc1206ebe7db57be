package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type DiscountsRepo interface {
	Create(ctx context.Context, customerID int64, code string, percent int, dtype domain.DiscountType, label string, expiresAt time.Time) (*domain.DiscountCode, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	FindByID(ctx context.Context, id int64) (*domain.DiscountCode, error)
	MarkUsed(ctx context.Context, id int64) (bool, error)
}

type DiscountsRepoImpl struct{ pool *pgxpool.Pool }

func NewDiscountsRepo(pool *pgxpool.Pool) *DiscountsRepoImpl { return &DiscountsRepoImpl{pool: pool} }

const discountCols = `id, customer_id, code, percent, type, label, expires_at, used_at, created_at`

func scanDiscount(row pgx.Row) (*domain.DiscountCode, error) {
	var d domain.DiscountCode
	var dtype string
	if err := row.Scan(&d.ID, &d.CustomerID, &d.Code, &d.Percent, &dtype, &d.Label, &d.ExpiresAt, &d.UsedAt, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Type = domain.DiscountType(dtype)
	return &d, nil
}

func (r *DiscountsRepoImpl) Create(ctx context.Context, customerID int64, code string, percent int, dtype domain.DiscountType, label string, expiresAt time.Time) (*domain.DiscountCode, error) {
	const q = `
INSERT INTO discount_codes (customer_id, code, percent, type, label, expires_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + discountCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanDiscount(r.pool.QueryRow(ctx, q, customerID, code, percent, string(dtype), label, expiresAt))
}

func (r *DiscountsRepoImpl) ListByCustomer(ctx context.Context, customerID int64) ([]domain.DiscountCode, error) {
	const q = `SELECT ` + discountCols + `
FROM discount_codes WHERE customer_id=$1
ORDER BY expires_at ASC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.DiscountCode{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *DiscountsRepoImpl) FindByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	const q = `SELECT ` + discountCols + ` FROM discount_codes WHERE code=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	d, err := scanDiscount(r.pool.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (r *DiscountsRepoImpl) FindByID(ctx context.Context, id int64) (*domain.DiscountCode, error) {
	const q = `SELECT ` + discountCols + ` FROM discount_codes WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	d, err := scanDiscount(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// MarkUsed stamps used_at exactly once; a second call reports false.
func (r *DiscountsRepoImpl) MarkUsed(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE discount_codes SET used_at=now() WHERE id=$1 AND used_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
