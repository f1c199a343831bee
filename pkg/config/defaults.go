package config

import "time"

// Default values for configuration fields, per SPEC_FULL.md §6.
const (
	// Capture defaults
	DefaultActiveIntervalS         = 0.5
	DefaultIdleIntervalS           = 60.0
	DefaultActiveWindowS           = 3.0
	DefaultAssumeActiveWhenMissing = true
	DefaultThumbSize               = "64x64"

	// Governor defaults
	DefaultCPUCapPct       = 50.0
	DefaultRAMCapPct       = 50.0
	DefaultTelemetryStaleS = 3.0

	// Plugin host defaults
	DefaultRPCTimeoutS             = 30.0
	DefaultMaxMsgBytes             = 8 * 1024 * 1024
	DefaultMaxConcurrentProcesses  = 4

	// Extract defaults
	DefaultExtractParallelism    = 2
	DefaultExtractMaxParallelism = 8
	DefaultExtractMaxRetries     = 3
	DefaultExtractRetryBackoff   = 500 * time.Millisecond

	// Retrieval defaults
	DefaultLexicalDBPath = "data/lexical.db"

	// Retention defaults
	DefaultHorizonHours       = 144.0
	DefaultLagWarnRatio       = 0.8
	DefaultRevalidateSchedule = "0 3 * * *"

	// Query defaults
	DefaultP95LatencyMSBudget = 2000
	DefaultQueryListenAddress = "127.0.0.1:8787"
	DefaultQueryReadTimeout   = 10 * time.Second
	DefaultQueryWriteTimeout  = 10 * time.Second
	DefaultQueryShutdownTime  = 10 * time.Second

	// Evidence defaults
	DefaultEvidenceSQLitePath         = "data/evidence.db"
	DefaultEvidenceSQLiteMaxOpenConns = 10
	DefaultEvidenceSQLiteMaxIdleConns = 5
	DefaultEvidenceSQLiteWALMode      = true
	DefaultEvidenceSQLiteBusyTimeout  = 5 * time.Second
	DefaultLedgerPath                 = "data/ledger.log"
	DefaultBlobDir                    = "data/blobs"

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "json"
	DefaultLoggingBufferSz = 10000
	DefaultMetricsEnabled  = true
	DefaultMetricsPath     = "/metrics"
	DefaultMetricsNS       = "screenrecall"
	DefaultMetricsSubsys   = "evidence"
	DefaultTracingEnabled  = false
	DefaultTracingSampler  = "ratio"
	DefaultTracingRatio    = 0.1
	DefaultTracingExporter = "otlp"
	DefaultServiceName     = "screenrecall"
	DefaultHealthEnabled   = true
	DefaultLivenessPath    = "/health"
	DefaultReadinessPath   = "/ready"
	DefaultHealthTimeout   = 5 * time.Second
)

// DefaultConfig returns a Config with every field set to its documented
// default.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct for any fields
// that have zero values. It is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Capture.ActiveIntervalS == 0 {
		cfg.Capture.ActiveIntervalS = DefaultActiveIntervalS
	}
	if cfg.Capture.IdleIntervalS == 0 {
		cfg.Capture.IdleIntervalS = DefaultIdleIntervalS
	}
	if cfg.Capture.ActiveWindowS == 0 {
		cfg.Capture.ActiveWindowS = DefaultActiveWindowS
	}
	if cfg.Capture.ThumbSize == "" {
		cfg.Capture.ThumbSize = DefaultThumbSize
	}

	if cfg.Governor.CPUCapPct == 0 {
		cfg.Governor.CPUCapPct = DefaultCPUCapPct
	}
	if cfg.Governor.RAMCapPct == 0 {
		cfg.Governor.RAMCapPct = DefaultRAMCapPct
	}
	if cfg.Governor.TelemetryStaleS == 0 {
		cfg.Governor.TelemetryStaleS = DefaultTelemetryStaleS
	}

	if cfg.PluginHost.RPCTimeoutS == 0 {
		cfg.PluginHost.RPCTimeoutS = DefaultRPCTimeoutS
	}
	if cfg.PluginHost.MaxMsgBytes == 0 {
		cfg.PluginHost.MaxMsgBytes = DefaultMaxMsgBytes
	}
	if cfg.PluginHost.MaxConcurrentProcesses == 0 {
		cfg.PluginHost.MaxConcurrentProcesses = DefaultMaxConcurrentProcesses
	}

	if cfg.Extract.Parallelism == 0 {
		cfg.Extract.Parallelism = DefaultExtractParallelism
	}
	if cfg.Extract.MaxParallelism == 0 {
		cfg.Extract.MaxParallelism = DefaultExtractMaxParallelism
	}
	if cfg.Extract.MaxRetries == 0 {
		cfg.Extract.MaxRetries = DefaultExtractMaxRetries
	}
	if cfg.Extract.RetryBackoff == 0 {
		cfg.Extract.RetryBackoff = DefaultExtractRetryBackoff
	}

	if cfg.Retrieval.LexicalDBPath == "" {
		cfg.Retrieval.LexicalDBPath = DefaultLexicalDBPath
	}

	if cfg.Retention.HorizonHours == 0 {
		cfg.Retention.HorizonHours = DefaultHorizonHours
	}
	if cfg.Retention.LagWarnRatio == 0 {
		cfg.Retention.LagWarnRatio = DefaultLagWarnRatio
	}
	if cfg.Retention.RevalidateSchedule == "" {
		cfg.Retention.RevalidateSchedule = DefaultRevalidateSchedule
	}

	if cfg.Query.P95LatencyMSBudget == 0 {
		cfg.Query.P95LatencyMSBudget = DefaultP95LatencyMSBudget
	}
	if cfg.Query.ListenAddress == "" {
		cfg.Query.ListenAddress = DefaultQueryListenAddress
	}
	if cfg.Query.ReadTimeout == 0 {
		cfg.Query.ReadTimeout = DefaultQueryReadTimeout
	}
	if cfg.Query.WriteTimeout == 0 {
		cfg.Query.WriteTimeout = DefaultQueryWriteTimeout
	}
	if cfg.Query.ShutdownTimeout == 0 {
		cfg.Query.ShutdownTimeout = DefaultQueryShutdownTime
	}

	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = DefaultEvidenceSQLiteMaxOpenConns
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = DefaultEvidenceSQLiteMaxIdleConns
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceSQLiteBusyTimeout
	}
	if !cfg.Evidence.SQLite.WALMode {
		cfg.Evidence.SQLite.WALMode = DefaultEvidenceSQLiteWALMode
	}
	if cfg.Evidence.LedgerPath == "" {
		cfg.Evidence.LedgerPath = DefaultLedgerPath
	}
	if cfg.Evidence.BlobDir == "" {
		cfg.Evidence.BlobDir = DefaultBlobDir
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.BufferSize == 0 {
		cfg.Telemetry.Logging.BufferSize = DefaultLoggingBufferSz
	}
	if !cfg.Telemetry.Logging.RedactPII {
		cfg.Telemetry.Logging.RedactPII = true
	}
	if !cfg.Telemetry.Metrics.Enabled {
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNS
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsys
	}
	if len(cfg.Telemetry.Metrics.LatencyBuckets) == 0 {
		cfg.Telemetry.Metrics.LatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = 10 * time.Second
	}
	if cfg.Telemetry.Tracing.Jaeger.AgentHost == "" {
		cfg.Telemetry.Tracing.Jaeger.AgentHost = "localhost"
	}
	if cfg.Telemetry.Tracing.Jaeger.AgentPort == 0 {
		cfg.Telemetry.Tracing.Jaeger.AgentPort = 6831
	}
	if !cfg.Telemetry.Health.Enabled {
		cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthTimeout
	}
}
