package evidence

import "encoding/json"

// CaptureFramePayload is the payload for RecordCaptureFrame.
type CaptureFramePayload struct {
	ImageSHA256 string `json:"image_sha256"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	SegmentID   string `json:"segment_id"`
	FrameIndex  int64  `json:"frame_index"`
	UIARef      string `json:"uia_ref,omitempty"`
	ThumbSHA256 string `json:"thumb_sha256"`
	ThumbSize   string `json:"thumb_size"` // "64x64" or "96x54"
	BlobID      string `json:"blob_id"`
}

// UIANode is one element of a UIA snapshot's node array.
type UIANode struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	BBoxX      int    `json:"bbox_x"`
	BBoxY      int    `json:"bbox_y"`
	BBoxW      int    `json:"bbox_w"`
	BBoxH      int    `json:"bbox_h"`
	Enabled    bool   `json:"enabled"`
	Focusable  bool   `json:"focusable"`
}

// UIASnapshotPayload is the payload for RecordUIASnapshot.
type UIASnapshotPayload struct {
	Nodes []UIANode `json:"nodes"`
}

// UIAProjectionPayload is the payload shared by obs.uia.focus/context/operable.
type UIAProjectionPayload struct {
	Section   string `json:"section"` // "focus" | "context" | "operable"
	NodeIndex int    `json:"node_index"`
	Data      json.RawMessage `json:"data"`
}

// ExtractorQuality carries the quality counters spec.md requires on every
// derived.* record.
type ExtractorQuality struct {
	Elements           int `json:"elements"`
	Windows            int `json:"windows"`
	Facts              int `json:"facts"`
	Retries            int `json:"retries"`
	SchemaCompleteness int `json:"schema_completeness_pct"`
}

// ExtractedTextPayload is the payload for derived.text.ocr / derived.text.vlm
// / derived.sst.text.extra.
type ExtractedTextPayload struct {
	SourceFrameID    string           `json:"source_frame_id"`
	ExtractorID      string           `json:"extractor_id"`
	ModelVersion     string           `json:"model_version"`
	PromptFingerprint string          `json:"prompt_fingerprint"`
	Text             string           `json:"text"`
	Quality          ExtractorQuality `json:"quality"`
}

// Stage1CompletePayload is the payload for derived.ingest.stage1.complete.
type Stage1CompletePayload struct {
	FrameID      string   `json:"frame_id"`
	Reason       string   `json:"reason"` // "ok"
	MandatoryRefs []string `json:"mandatory_refs"`
}

// PluginAttempt records one plugin's outcome within a completion vector.
type PluginAttempt struct {
	PluginID string `json:"plugin_id"`
	Status   string `json:"status"` // "attempted"|"succeeded"|"failed"|"skipped"
	Reason   string `json:"reason,omitempty"`
}

// PluginCompletionPayload is the payload for derived.ingest.plugin.completion.
type PluginCompletionPayload struct {
	FrameID  string          `json:"frame_id"`
	Attempts []PluginAttempt `json:"attempts"`
}

// RetentionEligiblePayload is the payload for retention.eligible.
type RetentionEligiblePayload struct {
	FrameID     string `json:"frame_id"`
	ReasonCode  string `json:"reason_code"`
	HorizonHint string `json:"horizon_hint"`
}

// AuditPayload is the payload for audit.* entries (ledger-only).
type AuditPayload struct {
	Action  string            `json:"action"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func init() {
	RegisterValidator(RecordCaptureFrame, validateJSON[CaptureFramePayload])
	RegisterValidator(RecordUIASnapshot, validateJSON[UIASnapshotPayload])
	RegisterValidator(RecordUIAFocus, validateJSON[UIAProjectionPayload])
	RegisterValidator(RecordUIAContext, validateJSON[UIAProjectionPayload])
	RegisterValidator(RecordUIAOperable, validateJSON[UIAProjectionPayload])
	RegisterValidator(RecordTextOCR, validateJSON[ExtractedTextPayload])
	RegisterValidator(RecordTextVLM, validateJSON[ExtractedTextPayload])
	RegisterValidator(RecordSSTTextExtra, validateJSON[ExtractedTextPayload])
	RegisterValidator(RecordStage1Complete, validateJSON[Stage1CompletePayload])
	RegisterValidator(RecordPluginCompletion, validateJSON[PluginCompletionPayload])
	RegisterValidator(RecordRetentionEligible, validateJSON[RetentionEligiblePayload])
	RegisterValidator(RecordAuditEntry, validateJSON[AuditPayload])
}

// validateJSON is a generic structural check: the payload must unmarshal
// into T. Per-field semantic checks beyond "well-formed JSON of the right
// shape" live in pkg/ingest's is_reap_safe_complete, not here — this
// registry's job is closed-enumeration enforcement (spec.md Design Notes:
// "tagged variants with a schema-per-type validator; unknown types are
// rejected at write time"), not full contract validation.
func validateJSON[T any](payload json.RawMessage) error {
	var v T
	return json.Unmarshal(payload, &v)
}
