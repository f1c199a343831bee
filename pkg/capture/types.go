// Package capture implements the activity-aware capture scheduler (C2):
// an ACTIVE/IDLE ticking task that grabs frames, deduplicates them against
// the last-stored thumbnail fingerprint, and hands surviving candidates to
// the Stage-1 normalizer. Grounded on the teacher's
// pkg/policy/manager/watcher.go Watch(ctx, onReload) run-loop shape, with
// file-event debouncing replaced by activity-signal-driven tick cadence.
package capture

import (
	"time"
)

// State is the scheduler's activity mode.
type State int

const (
	StateActive State = iota
	StateIdle
)

func (s State) String() string {
	if s == StateActive {
		return "ACTIVE"
	}
	return "IDLE"
}

// ActivitySignal reports user activity. Injected as a narrow interface,
// mirroring the teacher's ProviderManager collaborator injected into
// server.Server: the scheduler never binds to a concrete OS API directly.
type ActivitySignal interface {
	// IdleSeconds returns how long the user has been idle.
	IdleSeconds() float64
	// IsActive reports whether the signal source itself is reachable. When
	// false, the scheduler fails open to ACTIVE (spec.md §4.2 fail-open rule).
	IsActive() bool
}

// Frame is a raw grab from ScreenGrabber, prior to dedupe or persistence.
type Frame struct {
	SourceID string // logical capture source (e.g. monitor id)
	Encoded  []byte // full encoded frame bytes
	Width    int
	Height   int
	Captured time.Time
}

// ScreenGrabber produces a single Frame for sourceID. Injected as a narrow
// interface for the same reason as ActivitySignal.
type ScreenGrabber interface {
	Grab(sourceID string) (*Frame, error)
}

// Candidate is a frame that survived dedupe and is ready for Stage-1.
type Candidate struct {
	SourceID    string
	Frame       []byte
	ThumbSHA256 string // fingerprint over the downscaled, canonicalized thumbnail
	Forced      bool   // true if written only because the forced-idle deadline elapsed
	Captured    time.Time
}

// Config controls capture cadence and thresholds (spec.md §4.2).
type Config struct {
	// ActiveWindowSeconds: idle_seconds below this means ACTIVE.
	// Default: 3.0
	ActiveWindowSeconds float64

	// ActiveIntervalSeconds: attempt cadence while ACTIVE.
	// Default: 0.5
	ActiveIntervalSeconds float64

	// IdleIntervalSeconds: attempt cadence while IDLE, and the forced-store
	// deadline if no write has happened in this long.
	// Default: 60
	IdleIntervalSeconds float64

	// ThumbSize is the fixed downscale size the fingerprint is computed
	// over: "64x64" or "96x54" (spec.md §4.2 allows either). Stored verbatim
	// on each frame record so a future change is detectable rather than
	// silently reinterpreted (DESIGN.md Open Question resolution).
	ThumbSize string

	Sources []string
}

// DefaultConfig returns the spec's documented default cadence.
func DefaultConfig() *Config {
	return &Config{
		ActiveWindowSeconds:   3.0,
		ActiveIntervalSeconds: 0.5,
		IdleIntervalSeconds:   60,
		ThumbSize:             "64x64",
	}
}

// thumbDims resolves a ThumbSize string to pixel dimensions.
func thumbDims(size string) (w, h int) {
	if size == "96x54" {
		return 96, 54
	}
	return 64, 64
}
