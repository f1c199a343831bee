package config

import (
	"time"

	"screenrecall/pkg/security/tls"
)

// Config is the root configuration structure for the screen-memory evidence
// engine. It contains all configuration sections for capture scheduling,
// the governor, the plugin host, Stage-2 extraction, retrieval, retention,
// the query orchestrator, evidence storage, and telemetry.
type Config struct {
	// Capture contains capture-scheduler configuration (active/idle cadence,
	// thumbnail size).
	Capture CaptureConfig `yaml:"capture"`

	// Governor contains resource-governor configuration (CPU/RAM caps,
	// telemetry staleness).
	Governor GovernorConfig `yaml:"governor"`

	// PluginHost contains plugin-host and capability-broker configuration.
	PluginHost PluginHostConfig `yaml:"plugin_host"`

	// Extract contains the Stage-2 extractor pipeline's worker pool and
	// throughput-guard configuration.
	Extract ExtractConfig `yaml:"extract"`

	// Retrieval contains retrieval-index configuration (lexical, vector).
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Retention contains retention & reap-safety gate configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query-orchestrator configuration.
	Query QueryConfig `yaml:"query"`

	// Evidence contains configuration for evidence storage and the
	// hash-chained ledger.
	Evidence EvidenceConfig `yaml:"evidence"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CaptureConfig contains configuration for the capture scheduler (C2).
type CaptureConfig struct {
	// ActiveIntervalS is the capture attempt interval, in seconds, while the
	// activity signal reports ACTIVE.
	// Default: 0.5
	ActiveIntervalS float64 `yaml:"active_interval_s"`

	// IdleIntervalS is the capture attempt interval, in seconds, while the
	// activity signal reports IDLE. A forced store occurs if no write has
	// happened within this interval, even on a static screen.
	// Default: 60
	IdleIntervalS float64 `yaml:"idle_interval_s"`

	// ActiveWindowS is the idle-seconds threshold below which the activity
	// signal is considered ACTIVE.
	// Default: 3.0
	ActiveWindowS float64 `yaml:"active_window_s"`

	// AssumeActiveWhenMissing controls the fallback state when the external
	// activity signal is unavailable.
	// Default: true
	AssumeActiveWhenMissing bool `yaml:"assume_active_when_missing"`

	// ThumbSize is the stored thumbnail size. One of "64x64", "96x54".
	// Recorded per-frame so legacy records remain parseable across
	// thumbnail-size changes.
	// Default: "64x64"
	ThumbSize string `yaml:"thumb_size"`
}

// GovernorConfig contains configuration for the resource governor (C5).
type GovernorConfig struct {
	// CPUCapPct is the CPU utilization ceiling, as a percentage, above which
	// the governor denies heavy-job admission and flags running heavy jobs
	// for preemption.
	// Default: 50
	CPUCapPct float64 `yaml:"cpu_cap_pct"`

	// RAMCapPct is the RAM utilization ceiling, as a percentage, above which
	// the governor denies heavy-job admission and flags running heavy jobs
	// for preemption.
	// Default: 50
	RAMCapPct float64 `yaml:"ram_cap_pct"`

	// TelemetryStaleS is the age, in seconds, beyond which a resource
	// telemetry sample is considered stale; while the latest sample is stale
	// the governor denies heavy-job admission and flags running heavy jobs
	// for preemption.
	// Default: 3
	TelemetryStaleS float64 `yaml:"telemetry_stale_s"`
}

// PluginHostConfig contains configuration for the plugin host and
// capability broker (C4).
type PluginHostConfig struct {
	// RPCTimeoutS is the per-call timeout, in seconds, for plugin RPCs. It is
	// validated and defaulted but pkg/plugin does not read it: a call uses the
	// manifest's timeout_sec, or plugin.DefaultTimeout (30s) when that is unset.
	// Default: 30
	RPCTimeoutS float64 `yaml:"rpc_timeout_s"`

	// MaxMsgBytes is validated and defaulted but pkg/plugin does not read it:
	// its RPC framing bounds every envelope by the fixed plugin.MaxMessageSize
	// (16MiB) in both directions.
	// Default: 8388608 (8MiB)
	MaxMsgBytes int `yaml:"max_msg_bytes"`

	// MaxConcurrentProcesses is the maximum number of plugin subprocesses
	// the host will run simultaneously.
	// Default: 4
	MaxConcurrentProcesses int `yaml:"max_concurrent_processes"`

	// ManifestDir is the directory scanned at startup for plugin manifest
	// YAML files (one per extractor/OCR/VLM plugin). Empty disables plugin
	// loading: the daemon runs with no Stage-2 extractor plugins registered.
	// Default: ""
	ManifestDir string `yaml:"manifest_dir"`
}

// ExtractConfig contains configuration for the Stage-2 extractor pipeline
// (C6).
type ExtractConfig struct {
	// Parallelism is the worker pool's starting size.
	// Default: 2
	Parallelism int `yaml:"parallelism"`

	// MaxParallelism is the hard ceiling the throughput guard will never
	// exceed when growing the pool.
	// Default: 8
	MaxParallelism int `yaml:"max_parallelism"`

	// MaxRetries is the maximum number of retry attempts for a transient
	// extractor failure.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the initial backoff between retry attempts; each
	// retry doubles it.
	// Default: 500ms
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// RetrievalConfig contains configuration for the retrieval indexes (C7).
type RetrievalConfig struct {
	// LexicalDBPath is the path to the FTS5-backed lexical index database.
	// Use ":memory:" for an ephemeral, process-local index.
	// Default: "data/lexical.db"
	LexicalDBPath string `yaml:"lexical_db_path"`
}

// RetentionConfig contains configuration for the retention & reap-safety
// gate (C9).
type RetentionConfig struct {
	// HorizonHours sets the throughput guard's lag budget. retention.eligible
	// markers do not use it: their horizon_hint is "default".
	// Default: 144
	HorizonHours float64 `yaml:"horizon_hours"`

	// LagWarnRatio is the fraction of HorizonHours at which a projected
	// extraction lag triggers a parallelism increase request.
	// Default: 0.8
	LagWarnRatio float64 `yaml:"lag_warn_ratio"`

	// RevalidateSchedule is a cron expression for the periodic marker
	// revalidation sweep. Empty disables periodic revalidation.
	// Default: "0 3 * * *" (daily at 3 AM)
	RevalidateSchedule string `yaml:"revalidate_schedule"`
}

// QueryConfig contains configuration for the query orchestrator (C8).
type QueryConfig struct {
	// P95LatencyMSBudget is the target p95 response-time budget, in
	// milliseconds, for POST /v1/query.
	// Default: 2000
	P95LatencyMSBudget int `yaml:"p95_latency_ms_budget"`

	// ListenAddress is the address the query API listens on. Validation
	// only requires it to be non-empty; it is not checked to be loopback.
	// Default: "127.0.0.1:8787"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a query request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a query response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLS configures optional TLS for the query API. It does not change
	// the bound address, which is ListenAddress either way.
	// Default: disabled
	TLS tls.Config `yaml:"tls"`
}

// EvidenceConfig contains configuration for evidence storage and the
// hash-chained ledger.
type EvidenceConfig struct {
	// SQLite contains SQLite-specific configuration for the primary
	// polymorphic records table.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// LedgerPath is the file path for the append-only hash-chained ledger.
	// Default: "data/ledger.log"
	LedgerPath string `yaml:"ledger_path"`

	// BlobDir is the directory for the content-addressed blob store.
	// Default: "data/blobs"
	BlobDir string `yaml:"blob_dir"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/evidence.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic PII redaction in logs (prompts, file
	// paths, extracted text).
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// BufferSize is the size of the async log buffer.
	// Default: 10000
	BufferSize int `yaml:"buffer_size"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Port is an optional separate port for metrics (0 = use query API
	// port).
	// Default: 0
	Port int `yaml:"port"`

	// Namespace is the metric name prefix.
	// Default: "screenrecall"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "evidence"
	Subsystem string `yaml:"subsystem"`

	// LatencyBuckets defines histogram buckets for query-response duration
	// (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0]
	LatencyBuckets []float64 `yaml:"latency_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0). Only
	// used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp", "jaeger"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the trace collector endpoint.
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to every span.
	// Default: "screenrecall"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`

	// Jaeger contains Jaeger exporter specific configuration.
	Jaeger JaegerConfig `yaml:"jaeger"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// JaegerConfig contains Jaeger exporter configuration.
type JaegerConfig struct {
	// AgentHost is the Jaeger agent hostname.
	// Default: "localhost"
	AgentHost string `yaml:"agent_host"`

	// AgentPort is the Jaeger agent port.
	// Default: 6831
	AgentPort int `yaml:"agent_port"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
