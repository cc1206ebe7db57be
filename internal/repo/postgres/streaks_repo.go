package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type StreaksRepo interface {
	Get(ctx context.Context, customerID int64) (*domain.StreakRecord, error)
	Upsert(ctx context.Context, rec *domain.StreakRecord) error
}

type StreaksRepoImpl struct{ pool *pgxpool.Pool }

func NewStreaksRepo(pool *pgxpool.Pool) *StreaksRepoImpl { return &StreaksRepoImpl{pool: pool} }

func (r *StreaksRepoImpl) Get(ctx context.Context, customerID int64) (*domain.StreakRecord, error) {
	const q = `SELECT customer_id, current_streak, longest_streak, last_activity, updated_at
FROM streaks WHERE customer_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s domain.StreakRecord
	if err := r.pool.QueryRow(ctx, q, customerID).Scan(
		&s.CustomerID, &s.CurrentStreak, &s.LongestStreak, &s.LastActivity, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StreaksRepoImpl) Upsert(ctx context.Context, rec *domain.StreakRecord) error {
	const q = `
INSERT INTO streaks (customer_id, current_streak, longest_streak, last_activity, updated_at)
VALUES ($1,$2,$3,$4,now())
ON CONFLICT (customer_id) DO UPDATE SET
	current_streak = EXCLUDED.current_streak,
	longest_streak = EXCLUDED.longest_streak,
	last_activity  = EXCLUDED.last_activity,
	updated_at     = now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, rec.CustomerID, rec.CurrentStreak, rec.LongestStreak, rec.LastActivity)
	return err
}
