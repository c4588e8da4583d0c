package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/adapter/metrics"
	"github.com/user/webstat/internal/domain"
	"github.com/user/webstat/internal/useragent"
)

// ErrMalformedEvent marks an envelope the collector cannot process. The HTTP
// layer maps it to a generic server error without leaking detail.
var ErrMalformedEvent = errors.New("malformed tracking event")

// StorePinger is the subset of *sql.DB the health check needs.
type StorePinger interface {
	PingContext(ctx context.Context) error
}

// CollectUseCase handles one inbound tracking event: client-address
// enrichment, lazy site resolution, and the append into the event store,
// with a file WAL as the fallback when the store is down.
type CollectUseCase struct {
	events   domain.EventRepository
	sites    domain.SiteRepository
	users    domain.UserRepository
	presence domain.PresenceRepository
	wal      domain.EventWAL
	pinger   StorePinger
	metrics  *metrics.CollectorMetrics
	logger   *slog.Logger

	storeAvailable atomic.Bool
}

// NewCollectUseCase creates a new CollectUseCase. presence, wal, pinger and
// m may be nil; the corresponding behavior is skipped.
func NewCollectUseCase(
	events domain.EventRepository,
	sites domain.SiteRepository,
	users domain.UserRepository,
	presence domain.PresenceRepository,
	wal domain.EventWAL,
	pinger StorePinger,
	m *metrics.CollectorMetrics,
	logger *slog.Logger,
) *CollectUseCase {
	uc := &CollectUseCase{
		events:   events,
		sites:    sites,
		users:    users,
		presence: presence,
		wal:      wal,
		pinger:   pinger,
		metrics:  m,
		logger:   logger.With("component", "collector"),
	}
	uc.storeAvailable.Store(true)
	return uc
}

// Collect processes one event envelope. clientAddr is the address resolved
// from proxy headers, userAgent the raw User-Agent header. A nil return
// means the caller should acknowledge success; per the documented fallback,
// that includes events that were silently dropped or parked in the WAL.
func (uc *CollectUseCase) Collect(ctx context.Context, env domain.Envelope, clientAddr, userAgent string) error {
	if !env.EventType.Valid() {
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedEvent, env.EventType)
	}

	payload := make(map[string]interface{})
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	// The snippet sends ip as "" so the server can fill it in.
	if ip, ok := payload["ip"].(string); ok && ip == "" {
		payload["ip"] = clientAddr
	}

	// The snippet detects the OS client side; senders that skipped that get
	// a server-side guess from the User-Agent header.
	if os, _ := payload["os"].(string); os == "" {
		if os, version := useragent.Detect(userAgent); os != "unknown" {
			payload["os"] = os
			if version != "" {
				payload["osVersion"] = version
			}
		}
	}

	siteDomain, _ := payload["siteId"].(string)
	if siteDomain == "" {
		siteDomain = "unknown"
	}
	pageURL, _ := payload["url"].(string)

	site, err := uc.resolveSite(ctx, siteDomain)
	if err != nil {
		if errors.Is(err, errSiteFallbackFailed) {
			// The caller still gets a success acknowledgment when the lazy
			// site-creation fallback fails; the event is silently dropped.
			uc.logger.Warn("dropping event, site fallback failed", "error", err, "domain", siteDomain)
			if uc.metrics != nil {
				uc.metrics.DroppedTotal.Inc()
				uc.metrics.EventsTotal.WithLabelValues(string(env.EventType), "dropped").Inc()
			}
			return nil
		}
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := domain.TrackingEvent{
		ID:        uuid.New(),
		SiteID:    site.ID,
		Type:      env.EventType,
		Payload:   data,
		IPAddress: clientAddr,
		UserAgent: userAgent,
		URL:       pageURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.storeEvent(ctx, event); err != nil {
		if uc.metrics != nil {
			uc.metrics.EventsTotal.WithLabelValues(string(env.EventType), "error").Inc()
		}
		return err
	}

	// Presence is a liveness hint only, never worth failing the request.
	if uc.presence != nil && clientAddr != "" && clientAddr != "unknown" {
		if err := uc.presence.Touch(ctx, site.ID, clientAddr, event.CreatedAt); err != nil {
			uc.logger.Warn("failed to record presence", "error", err, "site_id", site.ID)
		}
	}

	return nil
}

// errSiteFallbackFailed marks failures of the lazy site-creation fallback:
// the event is dropped while the caller is still acknowledged.
var errSiteFallbackFailed = errors.New("site fallback failed")

// resolveSite finds the site for a domain, creating it lazily under the
// fallback owner on first sight.
func (uc *CollectUseCase) resolveSite(ctx context.Context, siteDomain string) (*domain.Site, error) {
	site, err := uc.sites.FindByDomain(ctx, siteDomain)
	if err == nil {
		return site, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find site by domain: %w", err)
	}

	owner, err := uc.users.FindFallbackOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: no fallback owner: %v", errSiteFallbackFailed, err)
	}

	site = &domain.Site{
		ID:        uuid.New(),
		UserID:    owner.ID,
		Domain:    siteDomain,
		Name:      siteDomain,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.sites.Create(ctx, site); err != nil {
		// Another collector instance may have won the race; re-read.
		if existing, findErr := uc.sites.FindByDomain(ctx, siteDomain); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: create site: %v", errSiteFallbackFailed, err)
	}

	uc.logger.Info("lazily created site for unseen domain", "domain", siteDomain, "owner", owner.ID)
	return site, nil
}

// storeEvent inserts the event, parking it in the WAL when the store is
// unreachable. A WAL write still counts as accepted.
func (uc *CollectUseCase) storeEvent(ctx context.Context, event domain.TrackingEvent) error {
	if !uc.storeAvailable.Load() && uc.wal != nil {
		uc.logger.Warn("event store unavailable, writing to WAL", "event_id", event.ID)
		if uc.metrics != nil {
			uc.metrics.EventsTotal.WithLabelValues(string(event.Type), "walled").Inc()
		}
		return uc.wal.Write(ctx, event)
	}

	if err := uc.events.Insert(ctx, event); err != nil {
		if uc.wal == nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if uc.storeAvailable.CompareAndSwap(true, false) {
			uc.logger.Error("event store became unavailable", "error", err)
			if uc.metrics != nil {
				uc.metrics.WALActive.Set(1)
			}
		}
		if uc.metrics != nil {
			uc.metrics.EventsTotal.WithLabelValues(string(event.Type), "walled").Inc()
		}
		return uc.wal.Write(ctx, event)
	}

	if uc.metrics != nil {
		uc.metrics.EventsTotal.WithLabelValues(string(event.Type), "stored").Inc()
	}
	return nil
}

// StartHealthCheck monitors the event store and replays the WAL once the
// store recovers. Blocks until ctx is done.
func (uc *CollectUseCase) StartHealthCheck(ctx context.Context, interval time.Duration) {
	if uc.wal == nil || uc.pinger == nil {
		uc.logger.Info("WAL is not configured, skipping store health check")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	uc.logger.Info("starting event-store health check and WAL replayer")

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping event-store health check")
			return
		case <-ticker.C:
			err := uc.pinger.PingContext(ctx)
			if err != nil {
				if uc.storeAvailable.CompareAndSwap(true, false) {
					uc.logger.Error("event store connection lost", "error", err)
					if uc.metrics != nil {
						uc.metrics.WALActive.Set(1)
					}
				}
				continue
			}
			if uc.storeAvailable.CompareAndSwap(false, true) {
				uc.logger.Info("event store connection recovered")
				if err := uc.replayWAL(ctx); err != nil {
					uc.logger.Error("failed to replay WAL after store recovery", "error", err)
					uc.storeAvailable.Store(false)
					continue
				}
				if uc.metrics != nil {
					uc.metrics.WALActive.Set(0)
				}
			}
		}
	}
}

func (uc *CollectUseCase) replayWAL(ctx context.Context) error {
	uc.logger.Info("attempting to replay WAL into event store")
	if err := uc.wal.Replay(ctx, func(event domain.TrackingEvent) error {
		return uc.events.Insert(ctx, event)
	}); err != nil {
		return fmt.Errorf("WAL replay failed: %w", err)
	}
	if err := uc.wal.Truncate(ctx); err != nil {
		return fmt.Errorf("failed to truncate WAL after successful replay: %w", err)
	}
	uc.logger.Info("WAL replay completed")
	return nil
}
