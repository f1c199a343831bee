package governor

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ConcurrencyLimiter is the narrow slice of pkg/plugin.Broker the governor
// needs for the global process cap, mirroring AcquireConcurrent/
// ReleaseConcurrent.
type ConcurrencyLimiter interface {
	AcquireSlot(ctx context.Context) error
	ReleaseSlot()
}

// Governor derives the scheduling Mode each tick and admits/preempts heavy
// jobs against it (spec.md §4.5).
type Governor struct {
	cfg    *Config
	limits ConcurrencyLimiter
	logger *slog.Logger

	mu           sync.Mutex
	mode         Mode
	modeSince    time.Time
	lastSample   *Sample
	queryIntent  bool
	running      map[string]time.Time // job id -> admitted-at
}

// New constructs a Governor. limits may be nil if no process-cap check is
// desired (e.g. in tests).
func New(cfg *Config, limits ConcurrencyLimiter) *Governor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Governor{
		cfg:       cfg,
		limits:    limits,
		logger:    slog.Default().With("component", "governor"),
		mode:      ModeActiveCaptureOnly,
		modeSince: time.Now(),
		running:   make(map[string]time.Time),
	}
}

// Sample records a resource reading for the 1s telemetry cadence.
func (g *Governor) Sample(s Sample) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSample = &s
}

// SetActivity updates the mode from user activity and query-intent signals.
// queryIntent=true sets USER_QUERY (spec.md §4.5: "operator-forced flow...
// sets query_intent=true").
func (g *Governor) SetActivity(userActive bool, queryIntent bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.queryIntent = queryIntent
	var next Mode
	switch {
	case queryIntent:
		next = ModeUserQuery
	case userActive:
		next = ModeActiveCaptureOnly
	default:
		next = ModeIdleDrain
	}
	if next != g.mode {
		g.logger.Info("governor mode transition", "from", g.mode, "to", next)
		g.mode = next
		g.modeSince = time.Now()
	}
}

// Mode returns the current scheduling mode.
func (g *Governor) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// staleLocked reports whether the last sample is older than StaleAfter, or
// absent. Stale samples fail-safe by disabling heavy admission.
func (g *Governor) staleLocked() bool {
	if g.lastSample == nil {
		return true
	}
	return time.Since(g.lastSample.At) > g.cfg.StaleAfter
}

// AdmitHeavy decides whether job may run, mirroring Manager.CheckLimits:
// mode ∈ {IDLE_DRAIN, USER_QUERY} AND CPU/RAM headroom within caps AND the
// global plugin-process cap is not exceeded (spec.md §4.5 Admission rule).
func (g *Governor) AdmitHeavy(ctx context.Context, job Job) AdmitResult {
	g.mu.Lock()
	mode := g.mode
	stale := g.staleLocked()
	var sample Sample
	if g.lastSample != nil {
		sample = *g.lastSample
	}
	g.mu.Unlock()

	if mode == ModeActiveCaptureOnly {
		return AdmitResult{Allowed: false, Reason: "mode is ACTIVE_CAPTURE_ONLY"}
	}
	if stale {
		return AdmitResult{Allowed: false, Reason: "resource sample stale, failing safe"}
	}
	if sample.CPUPercent > g.cfg.CPUCapPercent {
		return AdmitResult{Allowed: false, Reason: "cpu headroom exceeded"}
	}
	if sample.RAMPercent > g.cfg.RAMCapPercent {
		return AdmitResult{Allowed: false, Reason: "ram headroom exceeded"}
	}

	if g.limits != nil {
		if err := g.limits.AcquireSlot(ctx); err != nil {
			return AdmitResult{Allowed: false, Reason: "global plugin-process cap exceeded"}
		}
	}

	g.mu.Lock()
	g.running[job.ID] = time.Now()
	g.mu.Unlock()

	return AdmitResult{Allowed: true}
}

// Release returns job's admitted slot.
func (g *Governor) Release(job Job) {
	g.mu.Lock()
	delete(g.running, job.ID)
	g.mu.Unlock()
	if g.limits != nil {
		g.limits.ReleaseSlot()
	}
}

// ShouldPreempt reports whether a running job should be preempted: budget
// exceeded, or a mode transition to ACTIVE_CAPTURE_ONLY (and mode is not
// USER_QUERY) after the configured grace window (spec.md §4.5 Preemption
// rule).
func (g *Governor) ShouldPreempt(job Job) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.staleLocked() {
		return true
	}
	if g.lastSample != nil && (g.lastSample.CPUPercent > g.cfg.CPUCapPercent || g.lastSample.RAMPercent > g.cfg.RAMCapPercent) {
		return true
	}
	if g.mode == ModeActiveCaptureOnly && time.Since(g.modeSince) > g.cfg.PreemptGrace {
		return true
	}
	return false
}

// ScheduleOrder returns jobs sorted by the deterministic
// (priority, enqueue_ts, job_id) tuple, stable (spec.md §4.5). This uses
// sort.SliceStable rather than reproducing the teacher's own
// pkg/evidence/retention/pruner.go sortRecordsByTime bubble sort, whose
// comment explicitly points at sort.Slice as the better choice.
func ScheduleOrder(jobs []Job) []Job {
	out := append([]Job(nil), jobs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority // higher priority first
		}
		if !out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
