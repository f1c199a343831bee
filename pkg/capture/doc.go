// Package capture implements the activity-aware capture scheduler described
// in SPEC_FULL.md §4.2 (C2): ACTIVE/IDLE cadence switching, thumbnail-based
// dedupe, and forced-idle writes.
package capture
