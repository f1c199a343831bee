// Package metrics provides Prometheus metrics collection for the
// screen-memory evidence engine.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring the
// capture pipeline, plugin health, governor admission decisions, extraction
// throughput, and retrieval index performance. It provides high-performance
// metric collection with minimal overhead.
//
// # Metrics Categories
//
//   - Capture Metrics: frame counts, capture duration, thumbnail sizes (C2)
//   - Plugin Metrics: plugin health, latency, and error rates (C4)
//   - Governor Metrics: admission decisions, admits, and preemptions (C5)
//   - Extract Metrics: extraction job counts, duration, and queue lag (C6)
//   - Retrieval Metrics: index hits, misses, and sizes (C7)
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Record capture metrics
//	collector.RecordCapture("primary", "kept", 40*time.Millisecond, 4096)
//
//	// Record plugin metrics
//	collector.RecordPluginLatency("ocr-tesseract", "stage2", 0.85)
//	collector.UpdatePluginHealth("ocr-tesseract", true)
//
//	// Record governor metrics
//	collector.RecordGovernorAdmission("normal", "admit", 2*time.Millisecond)
//
// # Cardinality Management
//
// The collector implements cardinality limits to prevent memory issues:
//
//   - Maximum 10,000 unique label combinations per metric
//   - Low-frequency labels aggregated into "other"
package metrics
