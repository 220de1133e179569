package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters and histograms for availability resolution.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups   *prometheus.CounterVec
	fetchAttempts  *prometheus.CounterVec
	resolveLatency prometheus.Histogram
	invalidations  *prometheus.CounterVec
	eventsConsumed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nailbook",
			Subsystem: "slots",
			Name:      "cache_lookups_total",
			Help:      "Slot cache lookups by result (hit, miss, bypass)",
		}, []string{"result"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nailbook",
			Subsystem: "slots",
			Name:      "fetch_attempts_total",
			Help:      "Snapshot fetch attempts by outcome",
		}, []string{"outcome"}),
		resolveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nailbook",
			Subsystem: "slots",
			Name:      "resolve_duration_seconds",
			Help:      "Time to fetch and resolve one designer day on a cache miss",
			Buckets:   prometheus.DefBuckets,
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nailbook",
			Subsystem: "slots",
			Name:      "invalidations_total",
			Help:      "Cache invalidations by change kind",
		}, []string{"kind"}),
		eventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nailbook",
			Subsystem: "events",
			Name:      "consumed_total",
			Help:      "Kafka events consumed by type and status",
		}, []string{"event_type", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cacheLookups, m.fetchAttempts, m.resolveLatency, m.invalidations, m.eventsConsumed)
	return m
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) FetchAttempt(outcome string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveResolve(d time.Duration) {
	if m == nil {
		return
	}
	m.resolveLatency.Observe(d.Seconds())
}

func (m *Metrics) Invalidation(kind string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(kind).Inc()
}

func (m *Metrics) EventConsumed(eventType, status string) {
	if m == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(eventType, status).Inc()
}
