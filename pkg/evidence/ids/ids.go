// Package ids derives deterministic record IDs. A record_id is a pure
// function of (record_type, parent refs, stable ordinal): identical inputs
// across reruns produce identical IDs (spec.md invariant I2). This is new
// surface, not adapted from the teacher — the teacher assigns evidence IDs
// with google/uuid.New() (pkg/evidence/recorder/recorder.go), which is
// exactly the non-determinism I2 forbids here. uuid is still the right tool
// for genuinely non-deterministic identifiers (run_id), just not for
// record_id.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Derive computes record_id = H(record_type, sorted(parentRefs), ordinal).
// Sorting parentRefs makes the ID independent of caller-supplied ordering,
// which matters because input_refs is conceptually a set (spec.md §3).
func Derive(recordType string, parentRefs []string, ordinal string) string {
	sorted := append([]string(nil), parentRefs...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(recordType))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))
	h.Write([]byte{0})
	h.Write([]byte(ordinal))
	return hex.EncodeToString(h.Sum(nil))
}

// FrameID derives the id for an evidence.capture.frame record:
// (segment_id, frame_index, image_sha256) per spec.md §4.3.
func FrameID(segmentID string, frameIndex int64, imageSHA256 string) string {
	return Derive("evidence.capture.frame", nil, fmt.Sprintf("%s|%d|%s", segmentID, frameIndex, imageSHA256))
}

// UIAProjectionID derives the id for an obs.uia.* record:
// (uia_ref.record_id, section, node_index) per spec.md §4.3.
func UIAProjectionID(uiaRefRecordID, section string, nodeIndex int) string {
	return Derive("obs.uia."+section, []string{uiaRefRecordID}, fmt.Sprintf("%s|%d", section, nodeIndex))
}

// DerivedRecordID derives the id for a derived.* extraction record, keyed
// on (frame_hash, extractor_version, prompt_fingerprint, config_hash) so
// the dedupe-on-hash reuse rule in spec.md §4.6 holds: byte-identical
// inputs always produce the same id and therefore the same PutNew outcome.
func DerivedRecordID(recordType, frameHash, extractorVersion, promptFingerprint, configHash string) string {
	ordinal := strings.Join([]string{frameHash, extractorVersion, promptFingerprint, configHash}, "|")
	return Derive(recordType, nil, ordinal)
}

// Stage1CompleteID derives the id for a derived.ingest.stage1.complete
// marker: one per frame, so the ordinal is just the frame id.
func Stage1CompleteID(frameID string) string {
	return Derive("derived.ingest.stage1.complete", []string{frameID}, frameID)
}

// PluginCompletionID derives the id for a derived.ingest.plugin.completion
// vector: one per frame.
func PluginCompletionID(frameID string) string {
	return Derive("derived.ingest.plugin.completion", []string{frameID}, frameID)
}

// RetentionEligibleID derives the id for a retention.eligible marker: one
// per frame.
func RetentionEligibleID(frameID string) string {
	return Derive("retention.eligible", []string{frameID}, frameID)
}
