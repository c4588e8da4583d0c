package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventRepository defines the interface for the tracking-event store.
// This abstracts away the concrete backend (PostgreSQL in production).
type EventRepository interface {
	// Insert appends a single tracking event. Events are never updated.
	Insert(ctx context.Context, event TrackingEvent) error

	// ListBySiteAndRange returns events for a site with created_at in
	// [from, to), ordered by descending recency.
	ListBySiteAndRange(ctx context.Context, siteID uuid.UUID, from, to time.Time) ([]TrackingEvent, error)

	// CountDistinctAddresses counts distinct non-empty client addresses
	// among events created at or after since.
	CountDistinctAddresses(ctx context.Context, siteID uuid.UUID, since time.Time) (int, error)
}

// SiteRepository defines the interface for site persistence.
type SiteRepository interface {
	FindByDomain(ctx context.Context, domain string) (*Site, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Site, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Site, error)
	Create(ctx context.Context, site *Site) error
}

// UserRepository defines the interface for dashboard-account persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindFallbackOwner returns the user that lazily created sites are
	// assigned to when an event arrives for an unseen domain. Returns
	// ErrNotFound when no user exists at all.
	FindFallbackOwner(ctx context.Context) (*User, error)
}

// PresenceRepository tracks which client addresses were recently seen per
// site, backing the "active now" indicator.
type PresenceRepository interface {
	// Touch records that addr was seen for the site at the given time.
	Touch(ctx context.Context, siteID uuid.UUID, addr string, at time.Time) error

	// CountActive returns the number of distinct addresses seen within the
	// trailing window.
	CountActive(ctx context.Context, siteID uuid.UUID, window time.Duration) (int, error)
}

// EventWAL is the local write-ahead log the collector falls back to when the
// event store is unreachable.
type EventWAL interface {
	// Write appends a tracking event to the local WAL file.
	Write(ctx context.Context, event TrackingEvent) error

	// Replay reads events from the WAL and sends them to a handler function.
	// The handler is responsible for re-inserting the event into the store.
	Replay(ctx context.Context, handler func(event TrackingEvent) error) error

	// Truncate removes WAL segments that have been successfully replayed.
	Truncate(ctx context.Context) error
}
