package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/domain"
)

// EventRepository implements domain.EventRepository for PostgreSQL.
type EventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewEventRepository creates a new PostgreSQL event repository.
func NewEventRepository(db *sql.DB, logger *slog.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// Insert appends one tracking event row.
func (r *EventRepository) Insert(ctx context.Context, event domain.TrackingEvent) error {
	query := `
		INSERT INTO tracking_events (id, site_id, event_type, event_data, ip_address, user_agent, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.SiteID,
		string(event.Type),
		[]byte(event.Payload),
		event.IPAddress,
		event.UserAgent,
		nullable(event.URL),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

// ListBySiteAndRange returns events with created_at in [from, to), most
// recent first. The descending order is load-bearing: the aggregator's
// latest-value and tie-break semantics depend on it.
func (r *EventRepository) ListBySiteAndRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]domain.TrackingEvent, error) {
	query := `
		SELECT id, site_id, event_type, event_data, ip_address, user_agent, COALESCE(url, ''), created_at
		FROM tracking_events
		WHERE site_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, siteID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.TrackingEvent
	for rows.Next() {
		var e domain.TrackingEvent
		var eventType string
		var payload []byte
		if err := rows.Scan(&e.ID, &e.SiteID, &eventType, &payload, &e.IPAddress, &e.UserAgent, &e.URL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = domain.EventType(eventType)
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CountDistinctAddresses counts distinct non-empty client addresses among
// events created at or after since.
func (r *EventRepository) CountDistinctAddresses(ctx context.Context, siteID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ip_address)
		FROM tracking_events
		WHERE site_id = $1 AND created_at > $2 AND ip_address <> ''
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, siteID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count distinct addresses: %w", err)
	}
	return count, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
