package metrics

import (
	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RetrievalMetrics tracks retrieval index performance (C7).
//
// Metrics:
//   - screenrecall_retrieval_hits_total: Total index lookups that resolved
//   - screenrecall_retrieval_misses_total: Total index lookups that found nothing
//   - screenrecall_retrieval_entries: Current number of entries in an index
//   - screenrecall_retrieval_evictions_total: Total index entry evictions
type RetrievalMetrics struct {
	hitsTotal      *prometheus.CounterVec
	missesTotal    *prometheus.CounterVec
	entries        *prometheus.GaugeVec
	evictionsTotal *prometheus.CounterVec
}

// NewRetrievalMetrics creates and registers retrieval metrics with the provided registry.
func NewRetrievalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RetrievalMetrics {
	rm := &RetrievalMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrieval_hits_total",
				Help:      "Total number of index lookups that resolved",
			},
			[]string{"index"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrieval_misses_total",
				Help:      "Total number of index lookups that found nothing",
			},
			[]string{"index"},
		),

		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrieval_entries",
				Help:      "Current number of entries in an index",
			},
			[]string{"index"},
		),

		evictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrieval_evictions_total",
				Help:      "Total number of index entry evictions",
			},
			[]string{"index"},
		),
	}

	registry.MustRegister(
		rm.hitsTotal,
		rm.missesTotal,
		rm.entries,
		rm.evictionsTotal,
	)

	return rm
}

// RecordHit records a resolved index lookup.
//
// Parameters:
//   - index: index name (e.g., "lexical", "vector", "time")
func (rm *RetrievalMetrics) RecordHit(index string) {
	rm.hitsTotal.WithLabelValues(index).Inc()
}

// RecordMiss records an index lookup that found nothing.
func (rm *RetrievalMetrics) RecordMiss(index string) {
	rm.missesTotal.WithLabelValues(index).Inc()
}

// UpdateSize updates the current entry count of an index.
func (rm *RetrievalMetrics) UpdateSize(index string, size int) {
	rm.entries.WithLabelValues(index).Set(float64(size))
}

// RecordEviction records an index entry eviction.
func (rm *RetrievalMetrics) RecordEviction(index string) {
	rm.evictionsTotal.WithLabelValues(index).Inc()
}
