package query

import (
	"context"
	"testing"
	"time"
)

func TestMemoryTraceStoreAppendAndRecent(t *testing.T) {
	s := NewMemoryTraceStore()
	for i := 0; i < 5; i++ {
		if err := s.Append(context.Background(), TraceEntry{QueryHash: "h", At: time.Now()}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	recent, err := s.Recent(context.Background(), 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
}

func TestMemoryTraceStoreRecentAllWhenLimitExceedsSize(t *testing.T) {
	s := NewMemoryTraceStore()
	s.Append(context.Background(), TraceEntry{QueryHash: "a"})
	s.Append(context.Background(), TraceEntry{QueryHash: "b"})

	recent, err := s.Recent(context.Background(), 100)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
}
