// Package ingest implements the Stage-1 normalizer (SPEC_FULL.md §4.3, C3):
// the reap-safe completeness gate and atomic record-batch emission for a
// surviving capture candidate.
package ingest
