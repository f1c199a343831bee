// Package evidence and its subpackages implement the append-only evidence
// store: record types and the closed validator registry (this package),
// SQLite/in-memory backends (storage), the hash-chained audit ledger
// (ledger), the content-addressed blob store (blob), deterministic ID
// derivation (ids), and the retention/reap-safety gate (retention).
package evidence
