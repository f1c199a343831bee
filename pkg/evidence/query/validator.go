// Package query validates and defaults evidence.Query values before they
// reach a Storage backend's Scan/Count. Grounded on the teacher's
// pkg/evidence/query/validator.go (field checks wrapped in a typed error),
// generalized from the teacher's fixed request-log fields (cost/tokens/
// status/sort-by-column) to the polymorphic Record model's filters
// (record types, time range, run id, input ref, sort order).
package query

import (
	"fmt"

	"screenrecall/pkg/evidence"
)

const (
	// DefaultLimit is the default number of records to return if not specified.
	DefaultLimit = 100

	// MaxLimit is the maximum number of records returnable in a single scan.
	MaxLimit = 10000
)

var validSortOrders = map[string]bool{"": true, "asc": true, "desc": true}

// Validate checks q for structurally invalid parameters, returning a
// descriptive error for the first problem found.
func Validate(q *evidence.Query) error {
	if q.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0, got %d", q.Limit)
	}
	if q.Limit > MaxLimit {
		return fmt.Errorf("query: limit must be <= %d, got %d", MaxLimit, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("query: offset must be >= 0, got %d", q.Offset)
	}
	if !validSortOrders[q.SortOrder] {
		return fmt.Errorf("query: invalid sort order %q (must be 'asc' or 'desc')", q.SortOrder)
	}
	if !q.Range.Start.IsZero() && !q.Range.End.IsZero() && q.Range.Start.After(q.Range.End) {
		return fmt.Errorf("query: range start must be before end")
	}
	for _, t := range q.RecordTypes {
		if t == "" {
			return fmt.Errorf("query: record type filter must not contain an empty type")
		}
	}
	return nil
}

// ApplyDefaults fills zero-value fields with their documented defaults.
func ApplyDefaults(q *evidence.Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortOrder == "" {
		q.SortOrder = "asc"
	}
}
