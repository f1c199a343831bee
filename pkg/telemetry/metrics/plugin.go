package metrics

import (
	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PluginMetrics tracks metrics related to capability plugin health and
// performance (C4).
//
// Metrics:
//   - screenrecall_plugin_health: Plugin health status (1=healthy, 0=unhealthy)
//   - screenrecall_plugin_latency_seconds: Plugin invocation latency
//   - screenrecall_plugin_errors_total: Plugin error count by type
//   - screenrecall_plugin_invocations_total: Total invocations of each plugin
type PluginMetrics struct {
	health      *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	invocations *prometheus.CounterVec
}

// NewPluginMetrics creates and registers plugin metrics with the provided registry.
func NewPluginMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PluginMetrics {
	pm := &PluginMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plugin_health",
				Help:      "Plugin health status (1=healthy, 0=unhealthy)",
			},
			[]string{"plugin_id"},
		),

		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plugin_latency_seconds",
				Help:      "Plugin invocation latency in seconds",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"plugin_id", "job_type"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plugin_errors_total",
				Help:      "Total number of plugin errors by type",
			},
			[]string{"plugin_id", "error_type"},
		),

		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plugin_invocations_total",
				Help:      "Total number of invocations of each plugin",
			},
			[]string{"plugin_id", "job_type"},
		),
	}

	registry.MustRegister(
		pm.health,
		pm.latency,
		pm.errors,
		pm.invocations,
	)

	return pm
}

// UpdateHealth updates the health status of a plugin.
// The health metric is a gauge where 1=healthy, 0=unhealthy.
func (pm *PluginMetrics) UpdateHealth(pluginID string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(pluginID).Set(value)
}

// RecordLatency records the latency of a plugin invocation.
func (pm *PluginMetrics) RecordLatency(pluginID, jobType string, latencySeconds float64) {
	pm.latency.WithLabelValues(pluginID, jobType).Observe(latencySeconds)
}

// RecordError records an error from a plugin.
//
// Common error types: "timeout", "crash", "capability_denied", "schema_mismatch".
func (pm *PluginMetrics) RecordError(pluginID, errorType string) {
	pm.errors.WithLabelValues(pluginID, errorType).Inc()
}

// RecordInvocation records an invocation of a plugin.
func (pm *PluginMetrics) RecordInvocation(pluginID, jobType string) {
	pm.invocations.WithLabelValues(pluginID, jobType).Inc()
}
