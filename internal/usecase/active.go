package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/adapter/metrics"
	"github.com/user/webstat/internal/domain"
)

// ActiveWindow is the trailing window a visitor counts as "active" within.
const ActiveWindow = 5 * time.Minute

// ActiveVisitorsUseCase answers the "active now" liveness indicator: distinct
// client addresses seen within the trailing window. Redis presence is the
// fast path; the event store answers when Redis is down; the last known
// value is served when both fail.
type ActiveVisitorsUseCase struct {
	presence domain.PresenceRepository
	events   domain.EventRepository
	window   time.Duration
	metrics  *metrics.DashboardMetrics
	logger   *slog.Logger

	mu        sync.Mutex
	lastKnown map[uuid.UUID]int
}

// NewActiveVisitorsUseCase creates a new ActiveVisitorsUseCase. presence and
// m may be nil; window <= 0 falls back to ActiveWindow.
func NewActiveVisitorsUseCase(
	presence domain.PresenceRepository,
	events domain.EventRepository,
	window time.Duration,
	m *metrics.DashboardMetrics,
	logger *slog.Logger,
) *ActiveVisitorsUseCase {
	if window <= 0 {
		window = ActiveWindow
	}
	return &ActiveVisitorsUseCase{
		presence:  presence,
		events:    events,
		window:    window,
		metrics:   m,
		logger:    logger.With("component", "active_visitors"),
		lastKnown: make(map[uuid.UUID]int),
	}
}

// Count returns the number of distinct active addresses for the site. Errors
// are swallowed; the result degrades to the event store and then to the last
// known value (zero before any success).
func (uc *ActiveVisitorsUseCase) Count(ctx context.Context, siteID uuid.UUID) int {
	if uc.presence != nil {
		n, err := uc.presence.CountActive(ctx, siteID, uc.window)
		if err == nil {
			uc.remember(siteID, n)
			uc.count("redis")
			return n
		}
		uc.logger.Warn("presence lookup failed, falling back to event store", "error", err, "site_id", siteID)
	}

	since := time.Now().UTC().Add(-uc.window)
	n, err := uc.events.CountDistinctAddresses(ctx, siteID, since)
	if err == nil {
		uc.remember(siteID, n)
		uc.count("postgres")
		return n
	}
	uc.logger.Error("active-visitor lookup failed, serving last known value", "error", err, "site_id", siteID)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.count("last_known")
	return uc.lastKnown[siteID]
}

func (uc *ActiveVisitorsUseCase) remember(siteID uuid.UUID, n int) {
	uc.mu.Lock()
	uc.lastKnown[siteID] = n
	uc.mu.Unlock()
}

func (uc *ActiveVisitorsUseCase) count(source string) {
	if uc.metrics != nil {
		uc.metrics.ActiveLookupsTotal.WithLabelValues(source).Inc()
	}
}
