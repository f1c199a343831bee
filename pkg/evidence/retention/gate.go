package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/ids"
	"screenrecall/pkg/evidence/ledger"
	equery "screenrecall/pkg/evidence/query"
	"screenrecall/pkg/ingest"
)

// Config configures the retention/reap-safety gate. Directly adapted from
// the teacher's pruner Config, with the deletion-oriented fields
// (ArchiveBeforeDelete, ArchivePath, MaxRecords) dropped: spec.md §4.9
// forbids metadata deletion outright, so there is nothing left to archive
// before.
type Config struct {
	// RevalidateSchedule is a cron expression for the periodic revalidation
	// sweep. Example: "0 3 * * *" (daily at 3 AM).
	RevalidateSchedule string

	// HorizonHours is the retention horizon in hours. Default: 144
	// (spec.md §4.6/§4.9). The gate does not read it, and retention.eligible
	// markers carry horizon_hint "default" rather than a value derived from it.
	HorizonHours float64
}

// DefaultConfig returns spec.md's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		RevalidateSchedule: "0 3 * * *",
		HorizonHours:       144,
	}
}

// quarantineAction is the ledger action name for a compensating entry
// written when a legacy retention.eligible marker fails re-audit.
const quarantineAction = "audit.quarantine"

// Gate is the retention & reap-safety gate (spec.md §4.9). It does not emit
// retention.eligible markers (the Stage-1 normalizer does, through
// IsReapSafeComplete); on schema upgrade it re-audits existing markers,
// writing a compensating audit.quarantine ledger entry for any that no
// longer pass — it never deletes records. Adapted from the teacher's Pruner/Scheduler pair
// (pruner.go/scheduler.go); the only semantic inversion is "never delete
// metadata," required by spec.md §4.9 (DESIGN.md).
type Gate struct {
	storage   evidence.Storage
	ledger    *ledger.Ledger
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler

	mu              sync.Mutex
	schemaVersion   int
	lastRevalidated int
}

// NewGate constructs a Gate writing compensating entries to l and reading
// markers from storage.
func NewGate(storage evidence.Storage, l *ledger.Ledger, config *Config, schemaVersion int) *Gate {
	if config == nil {
		config = DefaultConfig()
	}
	g := &Gate{
		storage:       storage,
		ledger:        l,
		config:        config,
		logger:        slog.Default().With("component", "evidence.retention"),
		schemaVersion: schemaVersion,
	}
	g.scheduler = NewScheduler(g)
	return g
}

// RevalidationResult summarizes one sweep.
type RevalidationResult struct {
	Reaudited   int
	Quarantined int
}

// Revalidate re-runs ingest.IsReapSafeComplete over every retention.eligible
// marker in storage and writes a compensating audit.quarantine ledger entry
// for any marker whose underlying frame no longer passes — without removing
// the marker or any other record. Intended to run after a schema upgrade
// changes what "reap-safe complete" means.
func (g *Gate) Revalidate(ctx context.Context) (*RevalidationResult, error) {
	markers, err := g.storage.Scan(ctx, &evidence.Query{
		RecordTypes: []evidence.RecordType{evidence.RecordRetentionEligible},
		Limit:       equery.MaxLimit,
	})
	if err != nil {
		return nil, evidence.NewStorageError("retention_gate", "scan_markers", err)
	}

	result := &RevalidationResult{}
	for _, marker := range markers {
		var payload evidence.RetentionEligiblePayload
		if err := json.Unmarshal(marker.Payload, &payload); err != nil {
			g.logger.Warn("malformed retention.eligible marker, skipping", "record_id", marker.RecordID, "error", err)
			continue
		}
		result.Reaudited++

		ok, reasons, err := g.reauditFrame(ctx, payload.FrameID)
		if err != nil {
			g.logger.Warn("revalidation read failed", "frame_id", payload.FrameID, "error", err)
			continue
		}
		if ok {
			continue
		}

		if err := g.quarantine(ctx, payload.FrameID, marker.RecordID, reasons); err != nil {
			return result, fmt.Errorf("quarantine frame %s: %w", payload.FrameID, err)
		}
		result.Quarantined++
	}

	g.mu.Lock()
	g.lastRevalidated = g.schemaVersion
	g.mu.Unlock()

	g.logger.Info("retention revalidation sweep completed",
		"reaudited", result.Reaudited, "quarantined", result.Quarantined)
	return result, nil
}

// reauditFrame rebuilds the FrameMetadata view for frameID from current
// storage state and re-runs IsReapSafeComplete.
func (g *Gate) reauditFrame(ctx context.Context, frameID string) (bool, []ingest.ReasonCode, error) {
	frame, ok, err := g.storage.Get(ctx, frameID)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, []ingest.ReasonCode{ingest.ReasonMissingFrame}, nil
	}

	var framePayload evidence.CaptureFramePayload
	if err := json.Unmarshal(frame.Payload, &framePayload); err != nil {
		return false, []ingest.ReasonCode{ingest.ReasonMissingFrame}, nil
	}

	completion, ok, err := g.storage.Get(ctx, ids.PluginCompletionID(frameID))
	if err != nil {
		return false, nil, err
	}
	var attempts []evidence.PluginAttempt
	if ok {
		var completionPayload evidence.PluginCompletionPayload
		if err := json.Unmarshal(completion.Payload, &completionPayload); err == nil {
			attempts = completionPayload.Attempts
		}
	}

	meta := &ingest.FrameMetadata{
		FrameRecordID:     frame.RecordID,
		ContentHash:       frame.ContentHash,
		HasUIARef:         framePayload.UIARef != "",
		LinkageAvailable:  framePayload.UIARef != "",
		LinkagePresent:    framePayload.UIARef != "",
		PluginCompletions: attempts,
	}
	pass, reasons := ingest.IsReapSafeComplete(meta)
	return pass, reasons, nil
}

// quarantine writes a compensating audit.quarantine ledger entry. It never
// touches the record store: metadata is never deleted (spec.md §4.9).
func (g *Gate) quarantine(ctx context.Context, frameID, markerID string, reasons []ingest.ReasonCode) error {
	reasonStrs := make([]string, len(reasons))
	for i, r := range reasons {
		reasonStrs[i] = string(r)
	}
	_, err := g.ledger.AppendJSON(ctx, quarantineAction, map[string]any{
		"frame_id":  frameID,
		"marker_id": markerID,
		"reasons":   reasonStrs,
	}, time.Now().UnixMicro())
	if err != nil {
		return evidence.NewStorageError("retention_gate", "quarantine", err)
	}
	g.logger.Warn("quarantined stale retention marker", "frame_id", frameID, "marker_id", markerID, "reasons", reasonStrs)
	return nil
}
