// Package ingest implements the Stage-1 normalizer (C3): it turns a
// surviving capture candidate into the reap-safe record set and gates
// retention-eligibility marker emission on completeness.
package ingest

import (
	"screenrecall/pkg/evidence"
)

// ReasonCode is a machine-readable reason is_reap_safe_complete failed.
type ReasonCode string

const (
	ReasonMissingFrame       ReasonCode = "missing_frame"
	ReasonMissingContentHash ReasonCode = "missing_content_hash"
	ReasonInvalidBBox        ReasonCode = "invalid_bbox"
	ReasonMissingLinkage     ReasonCode = "missing_linkage"
	ReasonIncompletePlugins  ReasonCode = "incomplete_plugin_completion"
)

// FrameMetadata is the metadata-only view is_reap_safe_complete reads. It
// never touches pixel/text payloads, only envelope and linkage shape.
type FrameMetadata struct {
	FrameRecordID     string
	ContentHash       string
	HasUIARef         bool
	UIANodeCount      int // must be 3 when HasUIARef (spec: "zero or three")
	LinkageAvailable  bool
	LinkagePresent    bool
	PluginCompletions []evidence.PluginAttempt
}

// IsReapSafeComplete is the single source of truth for retention-eligible
// marker emission and Stage-2 admission (spec.md §4.3 "Completeness gate").
// It is a pure function over metadata, grounded on the teacher's
// pkg/evidence/query/validator.Validate idiom of explicit field checks,
// generalized from a single returned error to a slice of reason codes so
// every violation is reported at once rather than stopping at the first.
func IsReapSafeComplete(m *FrameMetadata) (bool, []ReasonCode) {
	var reasons []ReasonCode

	if m.FrameRecordID == "" {
		reasons = append(reasons, ReasonMissingFrame)
	}
	if m.ContentHash == "" {
		reasons = append(reasons, ReasonMissingContentHash)
	}
	if m.HasUIARef && m.UIANodeCount != 3 {
		reasons = append(reasons, ReasonInvalidBBox)
	}
	if m.LinkageAvailable && !m.LinkagePresent {
		reasons = append(reasons, ReasonMissingLinkage)
	}
	for _, p := range m.PluginCompletions {
		if p.Status == "" {
			reasons = append(reasons, ReasonIncompletePlugins)
			break
		}
	}

	return len(reasons) == 0, reasons
}
