package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"screenrecall/pkg/capture"
	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/blob"
	"screenrecall/pkg/evidence/ids"
)

// Normalizer turns a surviving capture.Candidate into the reap-safe record
// set (spec.md §4.3): one evidence.capture.frame, zero or three obs.uia.*
// records, a plugin completion vector, a stage1.complete marker, and
// (iff complete) a retention.eligible marker. The records are written by
// separate PutNew calls in that order, not in one transaction, so a failure
// partway leaves the records already written in place.
type Normalizer struct {
	storage evidence.Storage
	blobs   *blob.Store
	runID   string
	logger  *slog.Logger
}

// NewNormalizer constructs a Normalizer writing into storage/blobs under runID.
func NewNormalizer(storage evidence.Storage, blobs *blob.Store, runID string) *Normalizer {
	return &Normalizer{
		storage: storage,
		blobs:   blobs,
		runID:   runID,
		logger:  slog.Default().With("component", "ingest.normalizer"),
	}
}

// Result is the outcome of normalizing one candidate.
type Result struct {
	FrameID        string
	ContentHash    string // cand.Frame's content hash, reused by Stage-2 as extract.Job.FrameHash
	Complete       bool
	ReasonCodes    []ReasonCode
	RecordsWritten int
}

// Normalize writes the reap-safe record set for cand. Stage-1 failures are
// fail-open per frame (Normalize returns the error and writes nothing more
// for the frame; it writes no audit entry, and only a blob-write failure is
// logged here) but fail-closed for marker emission: retention.eligible is never written for
// an incomplete frame (spec.md §4.3 Failure semantics).
func (n *Normalizer) Normalize(ctx context.Context, segmentID string, frameIndex int64, cand *capture.Candidate, plugins []evidence.PluginAttempt) (*Result, error) {
	blobID, err := n.blobs.Put(ctx, cand.Frame)
	if err != nil {
		n.logger.Error("stage1 frame drop: blob write failed", "source", cand.SourceID, "error", err)
		return nil, err
	}

	contentHash := capture.ContentHash(cand.Frame)
	frameID := ids.FrameID(segmentID, frameIndex, contentHash)

	now := time.Now()
	frameRec, err := n.buildFrameRecord(frameID, segmentID, frameIndex, cand, contentHash, blobID, now)
	if err != nil {
		return nil, err
	}

	written := 0
	if err := n.put(ctx, frameRec); err != nil {
		return nil, err
	}
	written++

	completionRec, err := n.buildPluginCompletionRecord(frameID, plugins, now)
	if err != nil {
		return nil, err
	}
	if err := n.put(ctx, completionRec); err != nil {
		return nil, err
	}
	written++

	// UIA accessibility-tree capture is a separate collaborator not modeled
	// in capture.Candidate; this pipeline path has no uia_ref, so the gate
	// only checks the zero-case of "zero or three" obs.uia.* records.
	meta := &FrameMetadata{
		FrameRecordID:     frameID,
		ContentHash:       contentHash,
		HasUIARef:         false,
		PluginCompletions: plugins,
	}
	complete, reasons := IsReapSafeComplete(meta)

	stage1Rec, err := n.buildStage1CompleteRecord(frameID, meta, complete, now)
	if err != nil {
		return nil, err
	}
	if err := n.put(ctx, stage1Rec); err != nil {
		return nil, err
	}
	written++

	if complete {
		eligRec, err := n.buildRetentionEligibleRecord(frameID, now)
		if err != nil {
			return nil, err
		}
		if err := n.put(ctx, eligRec); err != nil {
			return nil, err
		}
		written++
	} else {
		n.logger.Warn("retention marker withheld: frame incomplete", "frame_id", frameID, "reasons", reasons)
	}

	return &Result{FrameID: frameID, ContentHash: contentHash, Complete: complete, ReasonCodes: reasons, RecordsWritten: written}, nil
}

func (n *Normalizer) put(ctx context.Context, r *evidence.Record) error {
	res, err := n.storage.PutNew(ctx, r)
	if err != nil {
		return err
	}
	if res == evidence.PutIntegrityFault {
		return evidence.NewIntegrityFaultError(r.RecordID, "", r.ContentHash)
	}
	return nil
}

func (n *Normalizer) buildFrameRecord(frameID, segmentID string, frameIndex int64, cand *capture.Candidate, contentHash, blobID string, now time.Time) (*evidence.Record, error) {
	payload := evidence.CaptureFramePayload{
		ImageSHA256: contentHash,
		SegmentID:   segmentID,
		FrameIndex:  frameIndex,
		ThumbSHA256: cand.ThumbSHA256,
		ThumbSize:   "64x64",
		BlobID:      blobID,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &evidence.Record{
		RecordID:    frameID,
		RecordType:  evidence.RecordCaptureFrame,
		RunID:       n.runID,
		TsUTCMicros: now.UnixMicro(),
		MonotonicNs: now.UnixNano(),
		ContentHash: contentHash,
		SchemaVer:   1,
		Payload:     data,
	}, nil
}

func (n *Normalizer) buildPluginCompletionRecord(frameID string, attempts []evidence.PluginAttempt, now time.Time) (*evidence.Record, error) {
	payload := evidence.PluginCompletionPayload{FrameID: frameID, Attempts: attempts}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	recID := ids.PluginCompletionID(frameID)
	return &evidence.Record{
		RecordID:    recID,
		RecordType:  evidence.RecordPluginCompletion,
		RunID:       n.runID,
		TsUTCMicros: now.UnixMicro(),
		ContentHash: capture.ContentHash(data),
		InputRefs:   []string{frameID},
		SchemaVer:   1,
		Payload:     data,
	}, nil
}

func (n *Normalizer) buildStage1CompleteRecord(frameID string, meta *FrameMetadata, complete bool, now time.Time) (*evidence.Record, error) {
	reason := "ok"
	if !complete {
		reason = "incomplete"
	}
	payload := evidence.Stage1CompletePayload{FrameID: frameID, Reason: reason, MandatoryRefs: []string{frameID}}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	recID := ids.Stage1CompleteID(frameID)
	return &evidence.Record{
		RecordID:    recID,
		RecordType:  evidence.RecordStage1Complete,
		RunID:       n.runID,
		TsUTCMicros: now.UnixMicro(),
		ContentHash: capture.ContentHash(data),
		InputRefs:   []string{frameID},
		SchemaVer:   1,
		Payload:     data,
	}, nil
}

func (n *Normalizer) buildRetentionEligibleRecord(frameID string, now time.Time) (*evidence.Record, error) {
	payload := evidence.RetentionEligiblePayload{FrameID: frameID, ReasonCode: "ok", HorizonHint: "default"}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	recID := ids.RetentionEligibleID(frameID)
	return &evidence.Record{
		RecordID:    recID,
		RecordType:  evidence.RecordRetentionEligible,
		RunID:       n.runID,
		TsUTCMicros: now.UnixMicro(),
		ContentHash: capture.ContentHash(data),
		InputRefs:   []string{frameID},
		SchemaVer:   1,
		Payload:     data,
	}, nil
}
