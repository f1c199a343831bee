package metrics

import (
	"fmt"
	"sync"
	"time"

	"screenrecall/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in the
// screen-memory evidence engine. It manages metric registration, collection,
// and provides a unified interface for recording metrics across all
// components (C2 capture, C4 plugins, C5 governor, C6 extraction, C7
// retrieval).
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	captureMetrics   *CaptureMetrics
	pluginMetrics    *PluginMetrics
	governorMetrics  *GovernorMetrics
	extractMetrics   *ExtractMetrics
	retrievalMetrics *RetrievalMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, the default Prometheus registry
// is used.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "screenrecall"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "evidence"
	}
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(10000), // Max 10K unique label sets
	}

	c.captureMetrics = NewCaptureMetrics(cfg, registry)
	c.pluginMetrics = NewPluginMetrics(cfg, registry)
	c.governorMetrics = NewGovernorMetrics(cfg, registry)
	c.extractMetrics = NewExtractMetrics(cfg, registry)
	c.retrievalMetrics = NewRetrievalMetrics(cfg, registry)

	return c
}

// RecordCapture records metrics for a completed capture attempt.
//
// Parameters:
//   - source: capture source ID
//   - outcome: "kept", "duplicate", or "error"
//   - duration: total capture duration
//   - sizeBytes: thumbnail size in bytes (0 if not kept)
func (c *Collector) RecordCapture(source, outcome string, duration time.Duration, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("capture:%s:%s", source, outcome)
	if !c.cardinalityLimiter.Allow(labelSet) {
		source = "other"
	}

	c.captureMetrics.RecordCapture(source, outcome, duration)
	if sizeBytes > 0 {
		c.captureMetrics.RecordFrameSize(source, sizeBytes)
	}
}

// RecordPluginLatency records the latency for a plugin invocation.
func (c *Collector) RecordPluginLatency(pluginID, jobType string, latencySeconds float64) {
	if !c.config.Enabled {
		return
	}
	c.pluginMetrics.RecordLatency(pluginID, jobType, latencySeconds)
	c.pluginMetrics.RecordInvocation(pluginID, jobType)
}

// UpdatePluginHealth updates the health status of a plugin.
func (c *Collector) UpdatePluginHealth(pluginID string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.pluginMetrics.UpdateHealth(pluginID, healthy)
}

// RecordPluginError records an error from a plugin.
func (c *Collector) RecordPluginError(pluginID, errorType string) {
	if !c.config.Enabled {
		return
	}
	c.pluginMetrics.RecordError(pluginID, errorType)
}

// RecordGovernorAdmission records a governor admission decision.
func (c *Collector) RecordGovernorAdmission(mode, decision string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.governorMetrics.RecordAdmission(mode, decision, duration)
}

// RecordGovernorAdmit records a heavy job admitted under the given mode.
func (c *Collector) RecordGovernorAdmit(mode string) {
	if !c.config.Enabled {
		return
	}
	c.governorMetrics.RecordAdmit(mode)
}

// RecordGovernorPreempt records an in-flight job preempted under the given mode.
func (c *Collector) RecordGovernorPreempt(mode string) {
	if !c.config.Enabled {
		return
	}
	c.governorMetrics.RecordPreempt(mode)
}

// RecordExtractJob records a completed Stage-2 extraction job.
func (c *Collector) RecordExtractJob(extractorID, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.extractMetrics.RecordJob(extractorID, status, duration)
}

// UpdateExtractQueueLag updates the extraction backlog age for an extractor.
func (c *Collector) UpdateExtractQueueLag(extractorID string, lagSeconds float64) {
	if !c.config.Enabled {
		return
	}
	c.extractMetrics.UpdateQueueLag(extractorID, lagSeconds)
}

// RecordRetrievalHit records a resolved retrieval index lookup.
func (c *Collector) RecordRetrievalHit(index string) {
	if !c.config.Enabled {
		return
	}
	c.retrievalMetrics.RecordHit(index)
}

// RecordRetrievalMiss records a retrieval index lookup that found nothing.
func (c *Collector) RecordRetrievalMiss(index string) {
	if !c.config.Enabled {
		return
	}
	c.retrievalMetrics.RecordMiss(index)
}

// UpdateRetrievalSize updates the current entry count of a retrieval index.
func (c *Collector) UpdateRetrievalSize(index string, size int) {
	if !c.config.Enabled {
		return
	}
	c.retrievalMetrics.UpdateSize(index, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
// Returns false if adding this label set would exceed the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
