package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CollectorMetrics holds all Prometheus metrics for the collector service.
type CollectorMetrics struct {
	EventsTotal      *prometheus.CounterVec
	DroppedTotal     prometheus.Counter
	RateLimitedTotal prometheus.Counter
	WALActive        prometheus.Gauge
}

// NewCollectorMetrics initializes and registers the collector metrics.
func NewCollectorMetrics() *CollectorMetrics {
	return &CollectorMetrics{
		EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstat",
			Subsystem: "collector",
			Name:      "events_total",
			Help:      "Total number of received tracking events by type and outcome.",
		}, []string{"type", "status"}), // status: stored, walled, dropped, error
		DroppedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "webstat",
			Subsystem: "collector",
			Name:      "dropped_events_total",
			Help:      "Events acknowledged but not stored because no fallback site owner exists.",
		}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "webstat",
			Subsystem: "collector",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the global track rate limiter.",
		}),
		WALActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "webstat",
			Subsystem: "collector",
			Name:      "wal_active_gauge",
			Help:      "Indicates if the event-store WAL fallback is currently active (1 for active, 0 for inactive).",
		}),
	}
}

// DashboardMetrics holds all Prometheus metrics for the dashboard service.
type DashboardMetrics struct {
	AggregationsTotal  *prometheus.CounterVec
	ActiveLookupsTotal *prometheus.CounterVec
}

// NewDashboardMetrics initializes and registers the dashboard metrics.
func NewDashboardMetrics() *DashboardMetrics {
	return &DashboardMetrics{
		AggregationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstat",
			Subsystem: "dashboard",
			Name:      "aggregations_total",
			Help:      "Stats summaries computed, by outcome.",
		}, []string{"status"}), // status: ok, stale, sentinel
		ActiveLookupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webstat",
			Subsystem: "dashboard",
			Name:      "active_lookups_total",
			Help:      "Active-visitor lookups, by source answering them.",
		}, []string{"source"}), // source: redis, postgres, last_known
	}
}
