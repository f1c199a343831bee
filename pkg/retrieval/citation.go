package retrieval

import (
	"context"
	"encoding/json"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/ids"
)

// Rejection names why Resolve failed to confirm a Citation, for surfacing in
// a query-trace entry (spec.md §4.8).
type Rejection string

const (
	RejectNone             Rejection = ""
	RejectRecordNotFound   Rejection = "record_not_found"
	RejectHashMismatch     Rejection = "content_hash_mismatch"
	RejectSpanOutOfBounds  Rejection = "span_out_of_bounds"
	RejectLineageBroken    Rejection = "lineage_unreconstructable"
)

// Resolver verifies citations against the live evidence store. Grounded on
// the teacher's PolicyDecision.MatchedRules linkage idiom
// (pkg/evidence/types.go): a decision carries pointers back to the evidence
// that produced it, and those pointers are checked, not merely trusted.
type Resolver struct {
	storage evidence.Storage
}

// NewResolver constructs a Resolver reading from storage.
func NewResolver(storage evidence.Storage) *Resolver {
	return &Resolver{storage: storage}
}

// Resolve verifies c per spec.md §4.7: the record exists and its
// content_hash still matches, the span is within bounds, and the lineage
// path from c to a Stage-1-complete evidence.capture.frame reconstructs.
// A failing citation returns (false, reason); callers must reject it rather
// than surface it in an answer.
func (r *Resolver) Resolve(ctx context.Context, c Citation) (bool, Rejection) {
	rec, ok, err := r.storage.Get(ctx, c.RecordID)
	if err != nil || !ok {
		return false, RejectRecordNotFound
	}
	if c.StableLocator != "" && c.StableLocator != rec.ContentHash {
		return false, RejectHashMismatch
	}
	if !spanInBounds(c.SpanID, rec) {
		return false, RejectSpanOutOfBounds
	}
	if !r.lineageReconstructs(ctx, rec) {
		return false, RejectLineageBroken
	}
	return true, RejectNone
}

// spanInBounds accepts the sentinel "full" span unconditionally (it always
// denotes the entire payload) and otherwise requires the record to carry a
// non-empty payload for any more specific span to be meaningful.
func spanInBounds(spanID string, rec *evidence.Record) bool {
	if spanID == "" || spanID == "full" {
		return true
	}
	return len(rec.Payload) > 0
}

// lineageReconstructs walks InputRefs back to a RecordCaptureFrame and
// confirms a Stage-1-complete marker with reason "ok" exists for it. A
// RecordCaptureFrame is itself its own lineage root.
func (r *Resolver) lineageReconstructs(ctx context.Context, rec *evidence.Record) bool {
	frameID, ok := r.findFrameAncestor(ctx, rec, 8)
	if !ok {
		return false
	}
	marker, ok, err := r.storage.Get(ctx, ids.Stage1CompleteID(frameID))
	if err != nil || !ok {
		return false
	}
	var payload evidence.Stage1CompletePayload
	if err := json.Unmarshal(marker.Payload, &payload); err != nil {
		return false
	}
	return payload.Reason == "ok"
}

// findFrameAncestor walks input_refs toward a RecordCaptureFrame, bounded by
// maxDepth to avoid pathological cycles in malformed data.
func (r *Resolver) findFrameAncestor(ctx context.Context, rec *evidence.Record, maxDepth int) (string, bool) {
	if rec.RecordType == evidence.RecordCaptureFrame {
		return rec.RecordID, true
	}
	if maxDepth <= 0 {
		return "", false
	}
	for _, ref := range rec.InputRefs {
		parent, ok, err := r.storage.Get(ctx, ref)
		if err != nil || !ok {
			continue
		}
		if id, found := r.findFrameAncestor(ctx, parent, maxDepth-1); found {
			return id, true
		}
	}
	return "", false
}
