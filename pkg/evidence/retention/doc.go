// Package retention implements the retention & reap-safety gate (SPEC_FULL.md
// §4.9, C9).
//
// # Reap-safety, not deletion
//
// retention.eligible markers are emitted exclusively by the Stage-1
// normalizer (pkg/ingest) through IsReapSafeComplete — this package never
// decides eligibility itself. Its job is revalidation: on a schema upgrade
// that changes what "reap-safe complete" means, Gate.Revalidate re-audits
// every existing marker and writes a compensating audit.quarantine ledger
// entry for any that no longer pass. No record, marker, or blob is ever
// deleted by this package; external reapers consuming the eligibility
// stream may remove raw blobs, but metadata removal is out of scope here
// by design.
//
// # Scheduling
//
// Gate.scheduler runs Revalidate on a cron schedule (e.g. "0 3 * * *" for
// daily at 3 AM). An empty schedule disables periodic revalidation; callers
// may still invoke Revalidate directly.
package retention
