// Package extract implements the Stage-2 extractor pipeline (SPEC_FULL.md
// §4.6, C6): bounded-parallel extraction jobs over Stage-1-complete frames,
// with dedupe-on-hash reuse and a throughput guard.
package extract

import (
	"encoding/json"
	"time"
)

// Job is one Stage-2 extraction unit: invoke an extractor plugin on a
// Stage-1-complete frame and produce a derived record.
type Job struct {
	FrameID          string
	FrameHash        string
	ExtractorID      string
	ExtractorVersion string
	PromptFingerprint string
	ConfigHash       string
	RecordType       string // the derived.* record_type this job produces
}

// Extractor is the narrow interface a Stage-2 job invokes via the plugin
// host (C4). Isolated so the worker pool never depends on pkg/plugin's
// subprocess concerns directly.
type Extractor interface {
	Extract(job Job) (payload json.RawMessage, quality QualityCounters, err error)
}

// QualityCounters mirrors evidence.ExtractorQuality; kept separate here so
// extract doesn't need to import the payload-construction side of
// pkg/evidence for its own internal bookkeeping.
type QualityCounters struct {
	Elements           int
	Windows            int
	Facts              int
	Retries            int
	SchemaCompletenessPct int
}

// Config bounds the worker pool and retry/backoff behavior.
type Config struct {
	// Parallelism is the number of concurrent extractor workers.
	// Default: 2
	Parallelism int

	// MaxParallelism is the hard ceiling the throughput guard may request
	// up to, but never exceed (spec.md §4.6).
	MaxParallelism int

	// MaxRetries bounds the retry-with-backoff loop per job.
	// Default: 3
	MaxRetries int

	// RetryBackoff is the base delay between retries, doubled each attempt.
	// Default: 500ms
	RetryBackoff time.Duration

	// RetentionHorizonHours and LagWarnRatio parameterize the throughput
	// guard's projected-lag estimator (spec.md §4.6). Defaults: 144, 0.8.
	RetentionHorizonHours float64
	LagWarnRatio          float64
}

// DefaultConfig returns spec.md's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Parallelism:           2,
		MaxParallelism:        8,
		MaxRetries:            3,
		RetryBackoff:          500 * time.Millisecond,
		RetentionHorizonHours: 144,
		LagWarnRatio:          0.8,
	}
}
