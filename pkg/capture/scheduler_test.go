package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

type fakeSignal struct {
	idle   float64
	active bool
}

func (f *fakeSignal) IdleSeconds() float64 { return f.idle }
func (f *fakeSignal) IsActive() bool       { return f.active }

type fakeGrabber struct {
	mu     chan struct{}
	pixel  color.RGBA
	width  int
	height int
}

func newFakeGrabber(pixel color.RGBA) *fakeGrabber {
	return &fakeGrabber{pixel: pixel, width: 8, height: 8}
}

func (g *fakeGrabber) Grab(sourceID string) (*Frame, error) {
	img := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			img.Set(x, y, g.pixel)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &Frame{SourceID: sourceID, Encoded: buf.Bytes(), Width: g.width, Height: g.height, Captured: time.Now()}, nil
}

func TestCurrentStateFailsOpenWhenSignalUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScheduler(cfg, &fakeSignal{active: false}, newFakeGrabber(color.RGBA{R: 1, A: 255}))
	if s.CurrentState() != StateActive {
		t.Fatalf("expected fail-open to ACTIVE, got %v", s.CurrentState())
	}
}

func TestCurrentStateThresholds(t *testing.T) {
	cfg := DefaultConfig()
	s := NewScheduler(cfg, &fakeSignal{active: true, idle: 1.0}, newFakeGrabber(color.RGBA{A: 255}))
	if s.CurrentState() != StateActive {
		t.Fatalf("expected ACTIVE below threshold, got %v", s.CurrentState())
	}
	s.signal = &fakeSignal{active: true, idle: 10.0}
	if s.CurrentState() != StateIdle {
		t.Fatalf("expected IDLE above threshold, got %v", s.CurrentState())
	}
}

func TestAttemptDropsUnchangedThumbnail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"monitor-0"}
	grabber := newFakeGrabber(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	s := NewScheduler(cfg, &fakeSignal{active: true, idle: 0}, grabber)

	s.attempt("monitor-0", StateActive)
	select {
	case <-s.candidates:
	default:
		t.Fatal("expected first attempt to emit a candidate")
	}

	s.attempt("monitor-0", StateActive)
	select {
	case c := <-s.candidates:
		t.Fatalf("expected unchanged frame to be dropped, got candidate %+v", c)
	default:
	}
}

func TestAttemptForcesWriteAfterIdleDeadline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"monitor-0"}
	cfg.IdleIntervalSeconds = 0 // deadline always elapsed
	grabber := newFakeGrabber(color.RGBA{R: 5, G: 5, B: 5, A: 255})
	s := NewScheduler(cfg, &fakeSignal{active: true, idle: 100}, grabber)

	s.attempt("monitor-0", StateIdle)
	<-s.candidates

	s.attempt("monitor-0", StateIdle)
	select {
	case c := <-s.candidates:
		if !c.Forced {
			t.Fatal("expected second identical capture to be forced")
		}
	default:
		t.Fatal("expected forced-idle write even with unchanged thumbnail")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []string{"monitor-0"}
	cfg.ActiveIntervalSeconds = 0.01
	s := NewScheduler(cfg, &fakeSignal{active: true, idle: 0}, newFakeGrabber(color.RGBA{A: 255}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}
