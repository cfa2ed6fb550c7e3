package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/domain/auth"
)

const (
	insertUserSQL = `INSERT INTO users (email, password_hash) VALUES ($1, $2)
		RETURNING id, created_at`

	getUserByEmailSQL = `SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1`
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

var _ auth.Repository = (*UserRepository)(nil)

// UserRepository implements auth.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user, mapping a duplicate email onto auth.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrEmailTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}

// GetByEmail looks up a user account. A missing row maps onto
// auth.ErrInvalidCredentials so the caller cannot distinguish unknown emails
// from wrong passwords.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := r.pool.QueryRow(ctx, getUserByEmailSQL, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("getting user %q: %w", email, err)
	}
	return &u, nil
}
