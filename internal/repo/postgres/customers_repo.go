package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumiskin/lumiskin-api/internal/domain"
)

type CustomersRepo interface {
	Create(ctx context.Context, email, hash, firstName, lastName, phone string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type CustomersRepoImpl struct{ pool *pgxpool.Pool }

func NewCustomersRepo(pool *pgxpool.Pool) *CustomersRepoImpl { return &CustomersRepoImpl{pool: pool} }

func (r *CustomersRepoImpl) Create(ctx context.Context, email, hash, firstName, lastName, phone string) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, password_hash, first_name, last_name, phone)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, email, password_hash, first_name, last_name, phone, created_at, updated_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, q, email, hash, firstName, lastName, phone).Scan(
		&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomersRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `SELECT id, email, password_hash, first_name, last_name, phone, created_at, updated_at
FROM customers WHERE email=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, q, email).Scan(
		&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomersRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `SELECT id, email, password_hash, first_name, last_name, phone, created_at, updated_at
FROM customers WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
