package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"
	"time"
)

// sourceState tracks the last stored fingerprint and the forced-idle
// deadline per logical capture source.
type sourceState struct {
	lastThumb   string
	lastWriteAt time.Time
}

// Scheduler is the C2 activity-aware capture loop: a ticking task that
// grabs frames, applies the dedupe algorithm, and emits surviving
// Candidates on Candidates(). Grounded on the teacher's
// pkg/policy/manager/watcher.go FileWatcher.Watch run-loop (ctx.Done/stopCh
// select, debounce-on-event), here driving a tick-based cadence instead of
// an fsnotify event stream.
type Scheduler struct {
	cfg     *Config
	signal  ActivitySignal
	grabber ScreenGrabber
	logger  *slog.Logger

	mu      sync.Mutex
	state   map[string]*sourceState
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	candidates chan *Candidate
}

// NewScheduler constructs a Scheduler for cfg.Sources, consulting signal for
// ACTIVE/IDLE mode and grabber for frame capture.
func NewScheduler(cfg *Config, signal ActivitySignal, grabber ScreenGrabber) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Scheduler{
		cfg:        cfg,
		signal:     signal,
		grabber:    grabber,
		logger:     slog.Default().With("component", "capture.scheduler"),
		state:      make(map[string]*sourceState),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		candidates: make(chan *Candidate, 64),
	}
	for _, src := range cfg.Sources {
		s.state[src] = &sourceState{}
	}
	return s
}

// Candidates returns the channel of frames that survived dedupe.
func (s *Scheduler) Candidates() <-chan *Candidate {
	return s.candidates
}

// CurrentState derives the scheduler's activity mode from signal, failing
// open to ACTIVE if the signal is unreachable (spec.md §4.2 fail-open rule).
func (s *Scheduler) CurrentState() State {
	if s.signal == nil || !s.signal.IsActive() {
		return StateActive
	}
	if s.signal.IdleSeconds() < s.cfg.ActiveWindowSeconds {
		return StateActive
	}
	return StateIdle
}

// Run drives the capture loop until ctx is canceled or Stop is called. It
// blocks; callers typically run it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("capture: scheduler already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.doneCh)
	}()

	s.logger.Info("capture scheduler started", "sources", s.cfg.Sources)

	timer := time.NewTimer(s.intervalFor(s.CurrentState()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("capture scheduler stopped (context canceled)")
			return nil
		case <-s.stopCh:
			s.logger.Info("capture scheduler stopped")
			return nil
		case <-timer.C:
			state := s.CurrentState()
			for _, src := range s.cfg.Sources {
				s.attempt(src, state)
			}
			timer.Reset(s.intervalFor(state))
		}
	}
}

// Stop signals Run to exit and waits for it to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) intervalFor(state State) time.Duration {
	if state == StateActive {
		return time.Duration(s.cfg.ActiveIntervalSeconds * float64(time.Second))
	}
	return time.Duration(s.cfg.IdleIntervalSeconds * float64(time.Second))
}

// attempt runs one dedupe pass for src: grab, fingerprint the thumbnail,
// compare, and either drop or emit (spec.md §4.2 steps 1-4).
func (s *Scheduler) attempt(src string, state State) {
	frame, err := s.grabber.Grab(src)
	if err != nil {
		s.logger.Warn("grab failed", "source", src, "error", err)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(frame.Encoded))
	if err != nil {
		s.logger.Warn("decode failed", "source", src, "error", err)
		return
	}
	thumb := thumbFingerprint(img, s.cfg.ThumbSize)

	s.mu.Lock()
	st, ok := s.state[src]
	if !ok {
		st = &sourceState{}
		s.state[src] = st
	}
	forceDeadline := st.lastWriteAt.Add(time.Duration(s.cfg.IdleIntervalSeconds * float64(time.Second)))
	forced := state == StateIdle && time.Now().After(forceDeadline)
	unchanged := thumb == st.lastThumb && st.lastThumb != ""

	if unchanged && !forced {
		s.mu.Unlock()
		s.logger.Debug("candidate dropped (unchanged thumbnail)", "source", src)
		return // no full-frame hashing on a dropped candidate (invariant)
	}

	st.lastThumb = thumb
	st.lastWriteAt = time.Now()
	s.mu.Unlock()

	cand := &Candidate{
		SourceID:    src,
		Frame:       frame.Encoded,
		ThumbSHA256: thumb,
		Forced:      forced,
		Captured:    frame.Captured,
	}

	select {
	case s.candidates <- cand:
	default:
		s.logger.Error("candidate channel full, dropping candidate", "source", src)
	}
}
