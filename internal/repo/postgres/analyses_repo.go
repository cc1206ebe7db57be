package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type AnalysesRepo interface {
	Create(ctx context.Context, customerID int64, skinType string, concerns []string) (*domain.SkinAnalysis, error)
	Complete(ctx context.Context, id int64, score int) (*domain.SkinAnalysis, error)
	GetByID(ctx context.Context, id int64) (*domain.SkinAnalysis, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.SkinAnalysis, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
	CountCompleted(ctx context.Context, customerID int64) (int64, error)
	CountCompletedSince(ctx context.Context, customerID int64, since time.Time) (int64, error)
}

type AnalysesRepoImpl struct{ pool *pgxpool.Pool }

func NewAnalysesRepo(pool *pgxpool.Pool) *AnalysesRepoImpl { return &AnalysesRepoImpl{pool: pool} }

const analysisCols = `id, customer_id, status, skin_type, concerns, score, created_at, completed_at`

func scanAnalysis(row pgx.Row) (*domain.SkinAnalysis, error) {
	var a domain.SkinAnalysis
	var status string
	if err := row.Scan(&a.ID, &a.CustomerID, &status, &a.SkinType, &a.Concerns, &a.Score, &a.CreatedAt, &a.CompletedAt); err != nil {
		return nil, err
	}
	a.Status = domain.AnalysisStatus(status)
	return &a, nil
}

func (r *AnalysesRepoImpl) Create(ctx context.Context, customerID int64, skinType string, concerns []string) (*domain.SkinAnalysis, error) {
	const q = `
INSERT INTO skin_analyses (customer_id, status, skin_type, concerns, score)
VALUES ($1, 'pending', $2, $3, 0)
RETURNING ` + analysisCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanAnalysis(r.pool.QueryRow(ctx, q, customerID, skinType, concerns))
}

func (r *AnalysesRepoImpl) Complete(ctx context.Context, id int64, score int) (*domain.SkinAnalysis, error) {
	const q = `
UPDATE skin_analyses SET status='completed', score=$2, completed_at=now()
WHERE id=$1
RETURNING ` + analysisCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanAnalysis(r.pool.QueryRow(ctx, q, id, score))
}

func (r *AnalysesRepoImpl) GetByID(ctx context.Context, id int64) (*domain.SkinAnalysis, error) {
	const q = `SELECT ` + analysisCols + ` FROM skin_analyses WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	a, err := scanAnalysis(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AnalysesRepoImpl) ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.SkinAnalysis, error) {
	const q = `SELECT ` + analysisCols + `
FROM skin_analyses WHERE customer_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SkinAnalysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AnalysesRepoImpl) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	const q = `SELECT count(*) FROM skin_analyses WHERE customer_id=$1`
	return r.count(ctx, q, customerID)
}

func (r *AnalysesRepoImpl) CountCompleted(ctx context.Context, customerID int64) (int64, error) {
	const q = `SELECT count(*) FROM skin_analyses WHERE customer_id=$1 AND status='completed'`
	return r.count(ctx, q, customerID)
}

func (r *AnalysesRepoImpl) CountCompletedSince(ctx context.Context, customerID int64, since time.Time) (int64, error) {
	const q = `SELECT count(*) FROM skin_analyses WHERE customer_id=$1 AND status='completed' AND completed_at >= $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	if err := r.pool.QueryRow(ctx, q, customerID, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AnalysesRepoImpl) count(ctx context.Context, q string, customerID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int64
	if err := r.pool.QueryRow(ctx, q, customerID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
