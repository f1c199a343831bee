package metrics

import (
	"time"

	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// GovernorMetrics tracks metrics related to resource-governor admission
// decisions (C5).
//
// Metrics:
//   - screenrecall_governor_admissions_total: Total admission checks by mode and decision
//   - screenrecall_governor_admission_duration_seconds: Admission check duration
//   - screenrecall_governor_admits_total: Number of heavy jobs admitted
//   - screenrecall_governor_preempts_total: Number of in-flight jobs preempted
type GovernorMetrics struct {
	admissionsTotal   *prometheus.CounterVec
	admissionDuration *prometheus.HistogramVec
	admitsTotal       *prometheus.CounterVec
	preemptsTotal     *prometheus.CounterVec
}

// NewGovernorMetrics creates and registers governor metrics with the provided registry.
func NewGovernorMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *GovernorMetrics {
	gm := &GovernorMetrics{
		admissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "governor_admissions_total",
				Help:      "Total number of governor admission checks",
			},
			[]string{"mode", "decision"},
		),

		admissionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "governor_admission_duration_seconds",
				Help:      "Duration of a governor admission check in seconds",
				// Admission checks should be fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"mode"},
		),

		admitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "governor_admits_total",
				Help:      "Total number of heavy jobs admitted",
			},
			[]string{"mode"},
		),

		preemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "governor_preempts_total",
				Help:      "Total number of in-flight jobs preempted",
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		gm.admissionsTotal,
		gm.admissionDuration,
		gm.admitsTotal,
		gm.preemptsTotal,
	)

	return gm
}

// RecordAdmission records an admission check.
//
// Parameters:
//   - mode: governor mode at decision time ("normal", "throttled", "critical")
//   - decision: "admit", "defer", or "preempt"
func (gm *GovernorMetrics) RecordAdmission(mode, decision string, duration time.Duration) {
	gm.admissionsTotal.WithLabelValues(mode, decision).Inc()
	gm.admissionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordAdmit records a heavy job admitted under the given mode.
func (gm *GovernorMetrics) RecordAdmit(mode string) {
	gm.admitsTotal.WithLabelValues(mode).Inc()
}

// RecordPreempt records an in-flight job preempted under the given mode.
func (gm *GovernorMetrics) RecordPreempt(mode string) {
	gm.preemptsTotal.WithLabelValues(mode).Inc()
}
