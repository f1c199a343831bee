package retention

import (
	"context"
	"testing"
	"time"

	"screenrecall/pkg/evidence/ledger"
	"screenrecall/pkg/evidence/storage"
)

func newTestGate(t *testing.T, schedule string) *Gate {
	t.Helper()
	memStorage := storage.NewMemoryStorage()
	l, err := ledger.Open(t.TempDir() + "/ledger.log")
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return NewGate(memStorage, l, &Config{RevalidateSchedule: schedule, HorizonHours: 144}, 1)
}

func TestSchedulerStartValidSchedule(t *testing.T) {
	gate := newTestGate(t, "0 3 * * *")
	scheduler := NewScheduler(gate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !scheduler.IsRunning() {
		t.Fatal("expected scheduler running after Start()")
	}
	if next := scheduler.NextRun(); next == nil {
		t.Fatal("expected non-nil NextRun() for running scheduler")
	}

	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Fatal("expected scheduler stopped after Stop()")
	}
}

func TestSchedulerStartEmptySchedule(t *testing.T) {
	gate := newTestGate(t, "")
	scheduler := NewScheduler(gate)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() with empty schedule should not error: %v", err)
	}
	if scheduler.IsRunning() {
		t.Fatal("expected scheduler not running with empty schedule")
	}
}

func TestSchedulerStartInvalidSchedule(t *testing.T) {
	gate := newTestGate(t, "not a cron expression")
	scheduler := NewScheduler(gate)

	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestSchedulerGracefulShutdownOnContextCancel(t *testing.T) {
	gate := newTestGate(t, "0 3 * * *")
	scheduler := NewScheduler(gate)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	cancel()
	time.Sleep(100 * time.Millisecond)

	if scheduler.IsRunning() {
		t.Fatal("expected scheduler stopped after context cancellation")
	}
}

func TestSchedulerNextRunNilBeforeStart(t *testing.T) {
	gate := newTestGate(t, "0 3 * * *")
	scheduler := NewScheduler(gate)

	if next := scheduler.NextRun(); next != nil {
		t.Fatalf("expected nil NextRun() before Start(), got %v", next)
	}
}

func TestSchedulerMultipleStartStop(t *testing.T) {
	gate := newTestGate(t, "0 * * * *")
	scheduler := NewScheduler(gate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := scheduler.Start(ctx); err != nil {
			t.Fatalf("Start() iteration %d failed: %v", i, err)
		}
		if !scheduler.IsRunning() {
			t.Fatalf("expected running after Start() iteration %d", i)
		}
		scheduler.Stop()
		if scheduler.IsRunning() {
			t.Fatalf("expected stopped after Stop() iteration %d", i)
		}
	}
}
