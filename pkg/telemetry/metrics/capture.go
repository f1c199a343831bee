package metrics

import (
	"time"

	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CaptureMetrics tracks metrics related to the capture scheduler (C2).
//
// Metrics:
//   - screenrecall_frames_total: Total capture attempts by source and outcome
//   - screenrecall_capture_duration_seconds: Time spent per capture attempt
//   - screenrecall_frame_size_bytes: Size of captured frame thumbnails
type CaptureMetrics struct {
	framesTotal     *prometheus.CounterVec
	captureDuration *prometheus.HistogramVec
	frameSizeBytes  *prometheus.HistogramVec
}

// NewCaptureMetrics creates and registers capture metrics with the provided registry.
func NewCaptureMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CaptureMetrics {
	cm := &CaptureMetrics{
		framesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frames_total",
				Help:      "Total number of capture attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),

		captureDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "capture_duration_seconds",
				Help:      "Duration of a single capture attempt in seconds",
				Buckets:   cfg.LatencyBuckets,
			},
			[]string{"source"},
		),

		frameSizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "frame_size_bytes",
				Help:      "Size of captured frame thumbnails in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 10), // 1KB to 512KB
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		cm.framesTotal,
		cm.captureDuration,
		cm.frameSizeBytes,
	)

	return cm
}

// RecordCapture records a single capture attempt.
//
// Parameters:
//   - source: capture source ID (e.g., "primary")
//   - outcome: "kept", "duplicate", or "error"
//   - duration: time spent on the capture attempt
func (cm *CaptureMetrics) RecordCapture(source, outcome string, duration time.Duration) {
	cm.framesTotal.WithLabelValues(source, outcome).Inc()
	cm.captureDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFrameSize records the thumbnail size of a kept frame.
func (cm *CaptureMetrics) RecordFrameSize(source string, sizeBytes int) {
	if sizeBytes > 0 {
		cm.frameSizeBytes.WithLabelValues(source).Observe(float64(sizeBytes))
	}
}
