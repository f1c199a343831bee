// Package governor implements the scheduler/governor described in
// SPEC_FULL.md §4.5 (C5): three-mode tick derivation, heavy-job admission,
// and preemption.
package governor
