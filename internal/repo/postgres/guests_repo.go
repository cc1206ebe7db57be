package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type GuestsRepo interface {
	Create(ctx context.Context, token, ip string, expiresAt time.Time) (*domain.GuestSession, error)
	FindByToken(ctx context.Context, token string) (*domain.GuestSession, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type GuestsRepoImpl struct{ pool *pgxpool.Pool }

func NewGuestsRepo(pool *pgxpool.Pool) *GuestsRepoImpl { return &GuestsRepoImpl{pool: pool} }

func (r *GuestsRepoImpl) Create(ctx context.Context, token, ip string, expiresAt time.Time) (*domain.GuestSession, error) {
	const q = `
INSERT INTO guest_sessions (token, ip, expires_at)
VALUES ($1,$2,$3)
RETURNING id, token, ip, expires_at, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s domain.GuestSession
	if err := r.pool.QueryRow(ctx, q, token, ip, expiresAt).Scan(
		&s.ID, &s.Token, &s.IP, &s.ExpiresAt, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GuestsRepoImpl) FindByToken(ctx context.Context, token string) (*domain.GuestSession, error) {
	const q = `SELECT id, token, ip, expires_at, created_at FROM guest_sessions WHERE token=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var s domain.GuestSession
	if err := r.pool.QueryRow(ctx, q, token).Scan(
		&s.ID, &s.Token, &s.IP, &s.ExpiresAt, &s.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *GuestsRepoImpl) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM guest_sessions WHERE expires_at < now()`
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
