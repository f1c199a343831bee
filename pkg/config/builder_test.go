package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in
// tests. It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for
// testing. The resulting configuration is valid and can be used
// immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithActiveIntervalS sets the capture active-state interval.
func (b *ConfigBuilder) WithActiveIntervalS(s float64) *ConfigBuilder {
	b.cfg.Capture.ActiveIntervalS = s
	return b
}

// WithThumbSize sets the capture thumbnail size.
func (b *ConfigBuilder) WithThumbSize(size string) *ConfigBuilder {
	b.cfg.Capture.ThumbSize = size
	return b
}

// WithCPUCapPct sets the governor's CPU utilization ceiling.
func (b *ConfigBuilder) WithCPUCapPct(pct float64) *ConfigBuilder {
	b.cfg.Governor.CPUCapPct = pct
	return b
}

// WithMaxConcurrentProcesses sets the plugin host's process ceiling.
func (b *ConfigBuilder) WithMaxConcurrentProcesses(n int) *ConfigBuilder {
	b.cfg.PluginHost.MaxConcurrentProcesses = n
	return b
}

// WithExtractParallelism sets the extractor pool's starting parallelism.
func (b *ConfigBuilder) WithExtractParallelism(n int) *ConfigBuilder {
	b.cfg.Extract.Parallelism = n
	return b
}

// WithExtractMaxParallelism sets the extractor pool's hard ceiling.
func (b *ConfigBuilder) WithExtractMaxParallelism(n int) *ConfigBuilder {
	b.cfg.Extract.MaxParallelism = n
	return b
}

// WithLexicalDBPath sets the lexical retrieval index path.
func (b *ConfigBuilder) WithLexicalDBPath(path string) *ConfigBuilder {
	b.cfg.Retrieval.LexicalDBPath = path
	return b
}

// WithHorizonHours sets the retention horizon.
func (b *ConfigBuilder) WithHorizonHours(hours float64) *ConfigBuilder {
	b.cfg.Retention.HorizonHours = hours
	return b
}

// WithRevalidateSchedule sets the retention revalidation cron schedule.
func (b *ConfigBuilder) WithRevalidateSchedule(schedule string) *ConfigBuilder {
	b.cfg.Retention.RevalidateSchedule = schedule
	return b
}

// WithQueryListenAddress sets the query API's listen address.
func (b *ConfigBuilder) WithQueryListenAddress(addr string) *ConfigBuilder {
	b.cfg.Query.ListenAddress = addr
	return b
}

// WithP95LatencyBudget sets the query API's p95 latency budget.
func (b *ConfigBuilder) WithP95LatencyBudget(ms int) *ConfigBuilder {
	b.cfg.Query.P95LatencyMSBudget = ms
	return b
}

// WithSQLitePath sets the evidence store's SQLite database path.
func (b *ConfigBuilder) WithSQLitePath(path string) *ConfigBuilder {
	b.cfg.Evidence.SQLite.Path = path
	return b
}

// WithLedgerPath sets the hash-chained ledger's file path.
func (b *ConfigBuilder) WithLedgerPath(path string) *ConfigBuilder {
	b.cfg.Evidence.LedgerPath = path
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics are enabled.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = enabled
	return b
}

// WithTracingEnabled sets whether tracing is enabled.
func (b *ConfigBuilder) WithTracingEnabled(enabled bool, endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = enabled
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	if b.cfg.Telemetry.Tracing.SampleRatio == 0 {
		b.cfg.Telemetry.Tracing.SampleRatio = DefaultTracingRatio
	}
	return b
}

// WithRetryBackoff sets the extractor pool's initial retry backoff.
func (b *ConfigBuilder) WithRetryBackoff(d time.Duration) *ConfigBuilder {
	b.cfg.Extract.RetryBackoff = d
	return b
}

// MinimalConfig returns a minimal valid configuration for testing. This is
// useful for tests that don't care about most configuration values.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
