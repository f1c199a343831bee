package retrieval

import (
	"context"
	"sort"

	"screenrecall/pkg/evidence"
)

// TimeIndex answers QueryPlans by delegating straight to evidence.Storage's
// (ts_utc, record_id) ordering — no separate engine, per DESIGN.md: C1's
// store already maintains this index, so C7 reuses it rather than
// duplicating it.
type TimeIndex struct {
	storage evidence.Storage
}

// NewTimeIndex wraps storage.
func NewTimeIndex(storage evidence.Storage) *TimeIndex {
	return &TimeIndex{storage: storage}
}

// Retrieve scans storage for plan.RecordTypes within plan.Range in (ts_utc
// asc, record_id asc) order, truncated to plan.Limit. Every candidate scores
// 1.0, so the final (score desc, record_id asc, span_id asc) sort returns
// them in record_id order, not time order.
func (t *TimeIndex) Retrieve(plan QueryPlan) ([]Candidate, error) {
	limit := plan.Limit
	if limit <= 0 {
		limit = 100
	}
	q := &evidence.Query{
		RecordTypes: plan.RecordTypes,
		Range:       plan.Range,
		Limit:       limit,
		SortOrder:   "asc",
	}
	recs, err := t.storage.Scan(context.Background(), q)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(recs))
	for _, r := range recs {
		candidates = append(candidates, Candidate{
			RecordID:               r.RecordID,
			RecordType:             r.RecordType,
			SpanID:                 "full",
			SpanOffsets:            [2]int{0, len(r.Payload)},
			ContentHashAtIndexTime: r.ContentHash,
			Score:                  1.0,
		})
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
	return candidates, nil
}
