// Package extract implements the Stage-2 extractor pipeline (SPEC_FULL.md
// §4.6, C6): a bounded worker pool that invokes extractor plugins on
// Stage-1-complete frames, deduplicates by (frame_hash, extractor_version,
// prompt_fingerprint, config_hash), retries transient failures with bounded
// backoff, and exposes a throughput guard that recommends raising
// parallelism when the pending backlog threatens the retention horizon.
package extract
