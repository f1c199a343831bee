package metrics

import (
	"time"

	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExtractMetrics tracks metrics related to the Stage-2 extractor pipeline (C6).
//
// Metrics:
//   - screenrecall_extract_jobs_total: Total extraction jobs by extractor and status
//   - screenrecall_extract_job_duration_seconds: Job duration histogram
//   - screenrecall_extract_queue_lag_seconds: Backlog age per extractor
type ExtractMetrics struct {
	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	queueLagSecs *prometheus.GaugeVec
}

// NewExtractMetrics creates and registers extract metrics with the provided registry.
func NewExtractMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExtractMetrics {
	em := &ExtractMetrics{
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extract_jobs_total",
				Help:      "Total number of Stage-2 extraction jobs by extractor and status",
			},
			[]string{"extractor_id", "status"},
		),

		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extract_job_duration_seconds",
				Help:      "Duration of a Stage-2 extraction job in seconds",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"extractor_id"},
		),

		queueLagSecs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "extract_queue_lag_seconds",
				Help:      "Age of the oldest unextracted frame in the queue, by extractor",
			},
			[]string{"extractor_id"},
		),
	}

	registry.MustRegister(
		em.jobsTotal,
		em.jobDuration,
		em.queueLagSecs,
	)

	return em
}

// RecordJob records a completed extraction job.
//
// Parameters:
//   - extractorID: extractor plugin identifier
//   - status: "success", "retry", or "failed"
//   - duration: job duration
func (em *ExtractMetrics) RecordJob(extractorID, status string, duration time.Duration) {
	em.jobsTotal.WithLabelValues(extractorID, status).Inc()
	em.jobDuration.WithLabelValues(extractorID).Observe(duration.Seconds())
}

// UpdateQueueLag updates the backlog age for an extractor's queue.
// A lag approaching the retention horizon should trigger the
// lag-warn-ratio alerting spec.md §4.9 describes.
func (em *ExtractMetrics) UpdateQueueLag(extractorID string, lagSeconds float64) {
	em.queueLagSecs.WithLabelValues(extractorID).Set(lagSeconds)
}
