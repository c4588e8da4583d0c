package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
)

// SiteRepository implements domain.SiteRepository for PostgreSQL.
type SiteRepository struct {
	db *sql.DB
}

// NewSiteRepository creates a new PostgreSQL site repository.
func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

const siteColumns = `id, user_id, domain, name, created_at`

func (r *SiteRepository) FindByDomain(ctx context.Context, d string) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE domain = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, d))
}

func (r *SiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SiteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var s domain.Site
		if err := rows.Scan(&s.ID, &s.UserID, &s.Domain, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	query := `
		INSERT INTO sites (id, user_id, domain, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, site.ID, site.UserID, site.Domain, site.Name, site.CreatedAt)
	if err != nil {
		return fmt.Errorf("create site: %w", err)
	}
	return nil
}

func (r *SiteRepository) scanOne(row *sql.Row) (*domain.Site, error) {
	var s domain.Site
	err := row.Scan(&s.ID, &s.UserID, &s.Domain, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan site: %w", err)
	}
	return &s, nil
}
