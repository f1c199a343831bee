package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention SCREENRECALL_SECTION_FIELD (e.g.,
// SCREENRECALL_CAPTURE_ACTIVE_INTERVAL_S). Environment variables always
// take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// SCREENRECALL_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SCREENRECALL_CAPTURE_ACTIVE_INTERVAL_S"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Capture.ActiveIntervalS = f
		}
	}
	if val := os.Getenv("SCREENRECALL_CAPTURE_IDLE_INTERVAL_S"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Capture.IdleIntervalS = f
		}
	}
	if val := os.Getenv("SCREENRECALL_CAPTURE_ACTIVE_WINDOW_S"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Capture.ActiveWindowS = f
		}
	}
	if val := os.Getenv("SCREENRECALL_CAPTURE_ASSUME_ACTIVE_WHEN_MISSING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Capture.AssumeActiveWhenMissing = b
		}
	}
	if val := os.Getenv("SCREENRECALL_CAPTURE_THUMB_SIZE"); val != "" {
		cfg.Capture.ThumbSize = val
	}

	if val := os.Getenv("SCREENRECALL_GOVERNOR_CPU_CAP_PCT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.CPUCapPct = f
		}
	}
	if val := os.Getenv("SCREENRECALL_GOVERNOR_RAM_CAP_PCT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.RAMCapPct = f
		}
	}
	if val := os.Getenv("SCREENRECALL_GOVERNOR_TELEMETRY_STALE_S"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Governor.TelemetryStaleS = f
		}
	}

	if val := os.Getenv("SCREENRECALL_PLUGIN_HOST_RPC_TIMEOUT_S"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.PluginHost.RPCTimeoutS = f
		}
	}
	if val := os.Getenv("SCREENRECALL_PLUGIN_HOST_MAX_MSG_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.PluginHost.MaxMsgBytes = i
		}
	}
	if val := os.Getenv("SCREENRECALL_PLUGIN_HOST_MAX_CONCURRENT_PROCESSES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.PluginHost.MaxConcurrentProcesses = i
		}
	}

	if val := os.Getenv("SCREENRECALL_EXTRACT_PARALLELISM"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Extract.Parallelism = i
		}
	}
	if val := os.Getenv("SCREENRECALL_EXTRACT_MAX_PARALLELISM"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Extract.MaxParallelism = i
		}
	}
	if val := os.Getenv("SCREENRECALL_EXTRACT_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Extract.MaxRetries = i
		}
	}
	if val := os.Getenv("SCREENRECALL_EXTRACT_RETRY_BACKOFF"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Extract.RetryBackoff = d
		}
	}

	if val := os.Getenv("SCREENRECALL_RETRIEVAL_LEXICAL_DB_PATH"); val != "" {
		cfg.Retrieval.LexicalDBPath = val
	}

	if val := os.Getenv("SCREENRECALL_RETENTION_HORIZON_HOURS"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Retention.HorizonHours = f
		}
	}
	if val := os.Getenv("SCREENRECALL_RETENTION_LAG_WARN_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Retention.LagWarnRatio = f
		}
	}
	if val := os.Getenv("SCREENRECALL_RETENTION_REVALIDATE_SCHEDULE"); val != "" {
		cfg.Retention.RevalidateSchedule = val
	}

	if val := os.Getenv("SCREENRECALL_QUERY_P95_LATENCY_MS_BUDGET"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Query.P95LatencyMSBudget = i
		}
	}
	if val := os.Getenv("SCREENRECALL_QUERY_LISTEN_ADDRESS"); val != "" {
		cfg.Query.ListenAddress = val
	}

	if val := os.Getenv("SCREENRECALL_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLite.Path = val
	}
	if val := os.Getenv("SCREENRECALL_EVIDENCE_LEDGER_PATH"); val != "" {
		cfg.Evidence.LedgerPath = val
	}
	if val := os.Getenv("SCREENRECALL_EVIDENCE_BLOB_DIR"); val != "" {
		cfg.Evidence.BlobDir = val
	}

	if val := os.Getenv("SCREENRECALL_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("SCREENRECALL_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
