package retrieval

import (
	"fmt"
	"sort"
)

// MultiIndex composes the time, lexical, and vector backends behind one
// Index, routing each QueryPlan to whichever backend(s) its fields select
// (spec.md §4.7). This is the composition TimeIndex's own doc comment
// defers to C7 rather than duplicating: the time index alone answers a
// pure time-range scan, but a plan carrying TextQuery or Embedding needs
// the lexical or vector backend to actually rank by relevance instead of
// degrading to "everything in the window."
type MultiIndex struct {
	time    Index
	lexical Index
	vector  Index
}

// NewMultiIndex composes time, lexical, and vector into one Index. lexical
// and vector may be nil when that backend isn't configured (e.g. no
// lexical_db_path set); time must not be nil, since it's the fallback for a
// plan with neither TextQuery nor Embedding set.
func NewMultiIndex(time, lexical, vector Index) *MultiIndex {
	return &MultiIndex{time: time, lexical: lexical, vector: vector}
}

// Retrieve routes plan to the backend(s) appropriate for its fields:
//   - TextQuery set: the lexical (FTS5) index
//   - Embedding set: the vector (cosine) index
//   - neither set: the time index, for a pure time-range scan
//
// If both TextQuery and Embedding are set, both backends fire and their
// candidates are merged and re-sorted by (score desc, record_id asc,
// span_id asc), then truncated to plan.Limit.
func (m *MultiIndex) Retrieve(plan QueryPlan) ([]Candidate, error) {
	var candidates []Candidate
	routed := false

	if plan.TextQuery != "" && m.lexical != nil {
		routed = true
		hits, err := m.lexical.Retrieve(plan)
		if err != nil {
			return nil, fmt.Errorf("lexical retrieve: %w", err)
		}
		candidates = append(candidates, hits...)
	}
	if len(plan.Embedding) > 0 && m.vector != nil {
		routed = true
		hits, err := m.vector.Retrieve(plan)
		if err != nil {
			return nil, fmt.Errorf("vector retrieve: %w", err)
		}
		candidates = append(candidates, hits...)
	}
	if !routed {
		return m.time.Retrieve(plan)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].RecordID != candidates[j].RecordID {
			return candidates[i].RecordID < candidates[j].RecordID
		}
		return candidates[i].SpanID < candidates[j].SpanID
	})

	limit := plan.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
