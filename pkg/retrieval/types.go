// Package retrieval implements the retrieval & citation resolver (SPEC_FULL.md
// §4.7, C7): a time index, a lexical index, an optional vector index, and a
// citation resolver that verifies a claimed evidence pointer still holds.
package retrieval

import (
	"screenrecall/pkg/evidence"
)

// Candidate is one retrieval hit. Ties resolve by (score desc, record_id
// asc, span_id asc), per spec.md §4.7.
type Candidate struct {
	RecordID               string
	RecordType             evidence.RecordType
	SpanID                 string
	SpanOffsets            [2]int
	ContentHashAtIndexTime string
	Score                  float64
}

// QueryPlan selects candidates across the indices C8 has access to. At most
// one of TextQuery/Embedding is expected to be set per plan; both may be
// empty for a pure time-range scan.
type QueryPlan struct {
	RecordTypes []evidence.RecordType
	Range       evidence.TimeRange
	TextQuery   string
	Embedding   []float32
	Limit       int
}

// Citation is a resolvable pointer into the evidence store: spec.md §4.7's
// (record_id, span_id, optional time_range, stable_locator) tuple.
type Citation struct {
	RecordID      string
	SpanID        string
	TimeRange     *evidence.TimeRange
	StableLocator string
}

// Index is the narrow interface each retrieval backend (time/lexical/vector)
// implements, so the orchestrator (C8) can compose them without depending on
// their concrete storage.
type Index interface {
	Retrieve(plan QueryPlan) ([]Candidate, error)
}
