package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/webstat/internal/adapter/metrics"
	"github.com/user/webstat/internal/domain"
)

// NoDataSentinel is shown for every field when a fetch fails before any
// summary was ever computed. Never synthesized values.
const NoDataSentinel = "no data"

const unknownValue = "Unknown"

// StatsSummary is the aggregated view of a site over one reporting window.
type StatsSummary struct {
	IPAddress       string    `json:"ip"`
	Browser         string    `json:"browser"`
	Provider        string    `json:"provider"`
	ConnectionType  string    `json:"connection_type"`
	OS              string    `json:"os"`
	ScreenSize      string    `json:"screen_size"`
	PhoneClicks     int       `json:"phone_clicks"`
	ZaloClicks      int       `json:"zalo_clicks"`
	MessengerClicks int       `json:"messenger_clicks"`
	LastUpdated     time.Time `json:"last_updated"`
}

// AggregateUseCase reduces stored event rows into per-window metrics. It is
// a pure function of the rows plus a per-site cache of the last good summary
// used only when the fetch itself fails.
type AggregateUseCase struct {
	events  domain.EventRepository
	metrics *metrics.DashboardMetrics
	logger  *slog.Logger

	mu       sync.Mutex
	lastGood map[uuid.UUID]StatsSummary
}

// NewAggregateUseCase creates a new AggregateUseCase. m may be nil.
func NewAggregateUseCase(events domain.EventRepository, m *metrics.DashboardMetrics, logger *slog.Logger) *AggregateUseCase {
	return &AggregateUseCase{
		events:   events,
		metrics:  m,
		logger:   logger.With("component", "aggregator"),
		lastGood: make(map[uuid.UUID]StatsSummary),
	}
}

// Summarize computes the stats for a site over [from, to). On fetch failure
// it returns the last successfully computed summary for the site, or the
// "no data" sentinels when none exists yet; the error is never surfaced as
// synthetic data.
func (uc *AggregateUseCase) Summarize(ctx context.Context, siteID uuid.UUID, from, to time.Time) StatsSummary {
	rows, err := uc.events.ListBySiteAndRange(ctx, siteID, from, to)
	if err != nil {
		uc.logger.Error("failed to fetch events for aggregation", "error", err, "site_id", siteID)
		return uc.staleOrSentinel(siteID)
	}

	summary := reduce(rows)
	summary.LastUpdated = time.Now().UTC()

	uc.mu.Lock()
	uc.lastGood[siteID] = summary
	uc.mu.Unlock()

	if uc.metrics != nil {
		uc.metrics.AggregationsTotal.WithLabelValues("ok").Inc()
	}
	return summary
}

func (uc *AggregateUseCase) staleOrSentinel(siteID uuid.UUID) StatsSummary {
	uc.mu.Lock()
	last, ok := uc.lastGood[siteID]
	uc.mu.Unlock()

	if ok {
		last.LastUpdated = time.Now().UTC()
		if uc.metrics != nil {
			uc.metrics.AggregationsTotal.WithLabelValues("stale").Inc()
		}
		return last
	}

	if uc.metrics != nil {
		uc.metrics.AggregationsTotal.WithLabelValues("sentinel").Inc()
	}
	return StatsSummary{
		IPAddress:      NoDataSentinel,
		Browser:        NoDataSentinel,
		Provider:       NoDataSentinel,
		ConnectionType: NoDataSentinel,
		OS:             NoDataSentinel,
		ScreenSize:     NoDataSentinel,
		LastUpdated:    time.Now().UTC(),
	}
}

// reduce folds event rows, ordered most recent first, into a summary in a
// single pass.
func reduce(rows []domain.TrackingEvent) StatsSummary {
	var s StatsSummary

	providers := newOrderedCounter()
	connections := newOrderedCounter()
	systems := newOrderedCounter()
	screens := newOrderedCounter()

	for _, row := range rows {
		if row.Type == domain.EventClick {
			var click domain.ClickPayload
			if err := json.Unmarshal(row.Payload, &click); err == nil {
				switch click.Type {
				case domain.ClickPhone:
					s.PhoneClicks++
				case domain.ClickZalo:
					s.ZaloClicks++
				case domain.ClickMessenger:
					s.MessengerClicks++
				}
			}
		}

		// Rows arrive most recent first, so the first non-empty value is
		// the latest known one.
		if s.IPAddress == "" && row.IPAddress != "" {
			s.IPAddress = row.IPAddress
		}
		if s.Browser == "" && row.UserAgent != "" {
			s.Browser = row.UserAgent
		}

		var attrs domain.PageviewPayload
		if err := json.Unmarshal(row.Payload, &attrs); err != nil {
			attrs = domain.PageviewPayload{}
		}
		providers.add(orUnknown(attrs.Provider))
		connections.add(orUnknown(attrs.ConnectionType))
		systems.add(orUnknown(attrs.OS))
		if attrs.ScreenWidth > 0 && attrs.ScreenHeight > 0 {
			screens.add(fmt.Sprintf("%d x %d", attrs.ScreenWidth, attrs.ScreenHeight))
		}
	}

	s.Provider = providers.mostCommon()
	s.ConnectionType = connections.mostCommon()
	s.OS = systems.mostCommon()
	s.ScreenSize = screens.mostCommon()

	if s.IPAddress == "" {
		s.IPAddress = unknownValue
	}
	if s.Browser == "" {
		s.Browser = unknownValue
	}
	return s
}

func orUnknown(v string) string {
	if v == "" {
		return unknownValue
	}
	return v
}

// orderedCounter is a frequency map that remembers insertion order, so that
// most-common ties resolve to the value seen first during the scan instead
// of depending on map iteration order.
type orderedCounter struct {
	keys   []string
	counts map[string]int
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// mostCommon returns the entry with the strictly highest count, walking keys
// in first-seen order. An empty counter yields "Unknown".
func (c *orderedCounter) mostCommon() string {
	best := unknownValue
	bestCount := 0
	for _, key := range c.keys {
		if c.counts[key] > bestCount {
			bestCount = c.counts[key]
			best = key
		}
	}
	return best
}
