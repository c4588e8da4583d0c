package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/user/webstat/internal/domain"
)

// UserRepository implements domain.UserRepository for PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// FindFallbackOwner returns the oldest user account. Lazily created sites
// are assigned to it when an event arrives for an unseen domain.
func (r *UserRepository) FindFallbackOwner(ctx context.Context) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users ORDER BY created_at LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
