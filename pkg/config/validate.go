package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g.,
	// "capture.active_interval_s").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is
// valid. All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCapture(&cfg.Capture)...)
	errs = append(errs, validateGovernor(&cfg.Governor)...)
	errs = append(errs, validatePluginHost(&cfg.PluginHost)...)
	errs = append(errs, validateExtract(&cfg.Extract)...)
	errs = append(errs, validateRetrieval(&cfg.Retrieval)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateQuery(&cfg.Query)...)
	errs = append(errs, validateEvidence(&cfg.Evidence)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateCapture(c *CaptureConfig) []FieldError {
	var errs []FieldError
	if c.ActiveIntervalS <= 0 {
		errs = append(errs, FieldError{"capture.active_interval_s", "must be positive"})
	}
	if c.IdleIntervalS <= 0 {
		errs = append(errs, FieldError{"capture.idle_interval_s", "must be positive"})
	}
	if c.ActiveWindowS <= 0 {
		errs = append(errs, FieldError{"capture.active_window_s", "must be positive"})
	}
	switch c.ThumbSize {
	case "64x64", "96x54":
	default:
		errs = append(errs, FieldError{"capture.thumb_size", fmt.Sprintf("must be one of 64x64, 96x54, got %q", c.ThumbSize)})
	}
	return errs
}

func validateGovernor(g *GovernorConfig) []FieldError {
	var errs []FieldError
	if g.CPUCapPct <= 0 || g.CPUCapPct > 100 {
		errs = append(errs, FieldError{"governor.cpu_cap_pct", "must be in (0, 100]"})
	}
	if g.RAMCapPct <= 0 || g.RAMCapPct > 100 {
		errs = append(errs, FieldError{"governor.ram_cap_pct", "must be in (0, 100]"})
	}
	if g.TelemetryStaleS <= 0 {
		errs = append(errs, FieldError{"governor.telemetry_stale_s", "must be positive"})
	}
	return errs
}

func validatePluginHost(p *PluginHostConfig) []FieldError {
	var errs []FieldError
	if p.RPCTimeoutS <= 0 {
		errs = append(errs, FieldError{"plugin_host.rpc_timeout_s", "must be positive"})
	}
	if p.MaxMsgBytes <= 0 {
		errs = append(errs, FieldError{"plugin_host.max_msg_bytes", "must be positive"})
	}
	if p.MaxConcurrentProcesses <= 0 {
		errs = append(errs, FieldError{"plugin_host.max_concurrent_processes", "must be positive"})
	}
	return errs
}

func validateExtract(e *ExtractConfig) []FieldError {
	var errs []FieldError
	if e.Parallelism <= 0 {
		errs = append(errs, FieldError{"extract.parallelism", "must be positive"})
	}
	if e.MaxParallelism < e.Parallelism {
		errs = append(errs, FieldError{"extract.max_parallelism", "must be >= parallelism"})
	}
	if e.MaxRetries < 0 {
		errs = append(errs, FieldError{"extract.max_retries", "must be non-negative"})
	}
	if e.RetryBackoff <= 0 {
		errs = append(errs, FieldError{"extract.retry_backoff", "must be positive"})
	}
	return errs
}

func validateRetrieval(r *RetrievalConfig) []FieldError {
	var errs []FieldError
	if r.LexicalDBPath == "" {
		errs = append(errs, FieldError{"retrieval.lexical_db_path", "must not be empty"})
	}
	return errs
}

func validateRetention(r *RetentionConfig) []FieldError {
	var errs []FieldError
	if r.HorizonHours <= 0 {
		errs = append(errs, FieldError{"retention.horizon_hours", "must be positive"})
	}
	if r.LagWarnRatio <= 0 || r.LagWarnRatio > 1 {
		errs = append(errs, FieldError{"retention.lag_warn_ratio", "must be in (0, 1]"})
	}
	if r.RevalidateSchedule != "" {
		if _, err := cron.ParseStandard(r.RevalidateSchedule); err != nil {
			errs = append(errs, FieldError{"retention.revalidate_schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateQuery(q *QueryConfig) []FieldError {
	var errs []FieldError
	if q.P95LatencyMSBudget <= 0 {
		errs = append(errs, FieldError{"query.p95_latency_ms_budget", "must be positive"})
	}
	if q.ListenAddress == "" {
		errs = append(errs, FieldError{"query.listen_address", "must not be empty"})
	}
	return errs
}

func validateEvidence(e *EvidenceConfig) []FieldError {
	var errs []FieldError
	if e.SQLite.Path == "" {
		errs = append(errs, FieldError{"evidence.sqlite.path", "must not be empty"})
	}
	if e.SQLite.MaxOpenConns <= 0 {
		errs = append(errs, FieldError{"evidence.sqlite.max_open_conns", "must be positive"})
	}
	if e.SQLite.MaxIdleConns < 0 {
		errs = append(errs, FieldError{"evidence.sqlite.max_idle_conns", "must be non-negative"})
	}
	if e.LedgerPath == "" {
		errs = append(errs, FieldError{"evidence.ledger_path", "must not be empty"})
	}
	if e.BlobDir == "" {
		errs = append(errs, FieldError{"evidence.blob_dir", "must not be empty"})
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", t.Logging.Level)})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("must be one of json, text, got %q", t.Logging.Format)})
	}
	if t.Tracing.Enabled {
		switch t.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{"telemetry.tracing.sampler", fmt.Sprintf("must be one of always, never, ratio, got %q", t.Tracing.Sampler)})
		}
		if t.Tracing.Sampler == "ratio" && (t.Tracing.SampleRatio < 0 || t.Tracing.SampleRatio > 1) {
			errs = append(errs, FieldError{"telemetry.tracing.sample_ratio", "must be in [0, 1]"})
		}
	}
	return errs
}
