package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type ReferralsRepo interface {
	FindByCustomer(ctx context.Context, customerID int64) (*domain.ReferralCode, error)
	FindByCode(ctx context.Context, code string) (*domain.ReferralCode, error)
	Create(ctx context.Context, customerID int64, code string) (*domain.ReferralCode, error)
	CreateRedemption(ctx context.Context, codeID, referredCustomerID, discountID int64) (*domain.ReferralRedemption, error)
	FindRedemptionByCustomer(ctx context.Context, referredCustomerID int64) (*domain.ReferralRedemption, error)
	Stats(ctx context.Context, codeID int64) (*domain.ReferralStats, error)
}

type ReferralsRepoImpl struct{ pool *pgxpool.Pool }

func NewReferralsRepo(pool *pgxpool.Pool) *ReferralsRepoImpl { return &ReferralsRepoImpl{pool: pool} }

const referralCols = `id, customer_id, code, active, created_at`

func scanReferral(row pgx.Row) (*domain.ReferralCode, error) {
	var rc domain.ReferralCode
	if err := row.Scan(&rc.ID, &rc.CustomerID, &rc.Code, &rc.Active, &rc.CreatedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *ReferralsRepoImpl) FindByCustomer(ctx context.Context, customerID int64) (*domain.ReferralCode, error) {
	const q = `SELECT ` + referralCols + ` FROM referral_codes WHERE customer_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rc, err := scanReferral(r.pool.QueryRow(ctx, q, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rc, nil
}

func (r *ReferralsRepoImpl) FindByCode(ctx context.Context, code string) (*domain.ReferralCode, error) {
	const q = `SELECT ` + referralCols + ` FROM referral_codes WHERE code=$1 AND active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rc, err := scanReferral(r.pool.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rc, nil
}

// Create inserts the customer's referral code. customer_id is unique, so a
// concurrent double-create surfaces the existing row instead of a duplicate.
func (r *ReferralsRepoImpl) Create(ctx context.Context, customerID int64, code string) (*domain.ReferralCode, error) {
	const q = `
INSERT INTO referral_codes (customer_id, code, active)
VALUES ($1,$2,true)
ON CONFLICT (customer_id) DO UPDATE SET customer_id = referral_codes.customer_id
RETURNING ` + referralCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanReferral(r.pool.QueryRow(ctx, q, customerID, code))
}

func (r *ReferralsRepoImpl) CreateRedemption(ctx context.Context, codeID, referredCustomerID, discountID int64) (*domain.ReferralRedemption, error) {
	const q = `
INSERT INTO referral_redemptions (referral_code_id, referred_customer_id, discount_id)
VALUES ($1,$2,$3)
RETURNING id, referral_code_id, referred_customer_id, discount_id, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var red domain.ReferralRedemption
	if err := r.pool.QueryRow(ctx, q, codeID, referredCustomerID, discountID).Scan(
		&red.ID, &red.ReferralCodeID, &red.ReferredCustomerID, &red.DiscountID, &red.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *ReferralsRepoImpl) FindRedemptionByCustomer(ctx context.Context, referredCustomerID int64) (*domain.ReferralRedemption, error) {
	const q = `SELECT id, referral_code_id, referred_customer_id, discount_id, created_at
FROM referral_redemptions WHERE referred_customer_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var red domain.ReferralRedemption
	if err := r.pool.QueryRow(ctx, q, referredCustomerID).Scan(
		&red.ID, &red.ReferralCodeID, &red.ReferredCustomerID, &red.DiscountID, &red.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &red, nil
}

func (r *ReferralsRepoImpl) Stats(ctx context.Context, codeID int64) (*domain.ReferralStats, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE d.used_at IS NULL AND d.expires_at > now())
FROM referral_redemptions rr
LEFT JOIN discount_codes d ON d.id = rr.discount_id
WHERE rr.referral_code_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s domain.ReferralStats
	if err := r.pool.QueryRow(ctx, q, codeID).Scan(&s.TotalRedemptions, &s.PendingRewards); err != nil {
		return nil, err
	}
	return &s, nil
}
