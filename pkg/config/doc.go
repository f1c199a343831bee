// Package config provides configuration management for the screen-memory
// evidence engine.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention
// SCREENRECALL_SECTION_FIELD. For example:
//
//   - SCREENRECALL_CAPTURE_ACTIVE_INTERVAL_S overrides capture.active_interval_s
//   - SCREENRECALL_GOVERNOR_CPU_CAP_PCT overrides governor.cpu_cap_pct
//   - SCREENRECALL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based
// configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Capture.ThumbSize)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	capture:
//	  active_interval_s: 0.5
//	  idle_interval_s: 60
//	  thumb_size: "64x64"
//
//	governor:
//	  cpu_cap_pct: 70
//	  ram_cap_pct: 80
//
//	retention:
//	  horizon_hours: 144
//	  revalidate_schedule: "0 3 * * *"
//
//	query:
//	  p95_latency_ms_budget: 2000
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
