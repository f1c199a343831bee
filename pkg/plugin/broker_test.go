package plugin

import (
	"context"
	"path/filepath"
	"testing"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/ledger"
)

func newTestBroker(t *testing.T, maxConcurrent int) *Broker {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return NewBroker(maxConcurrent, l)
}

func TestBrokerDeniesUndeclaredCapability(t *testing.T) {
	b := newTestBroker(t, 4)
	err := b.Check(context.Background(), "ocr", "media.read", "stage1")
	if err == nil {
		t.Fatal("expected denial for undeclared capability")
	}
	var capErr *evidence.CapabilityDeniedError
	if !asCapabilityDeniedError(err, &capErr) {
		t.Fatalf("expected CapabilityDeniedError, got %T: %v", err, err)
	}
}

func TestBrokerAllowsDeclaredCapabilityForStage(t *testing.T) {
	b := newTestBroker(t, 4)
	b.Allow("media.read", "stage1")
	if err := b.Check(context.Background(), "ocr", "media.read", "stage1"); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	if err := b.Check(context.Background(), "ocr", "media.read", "stage2"); err == nil {
		t.Fatal("expected denial for wrong stage")
	}
}

func TestBrokerGlobalConcurrentCap(t *testing.T) {
	b := newTestBroker(t, 1)
	ctx := context.Background()

	if err := b.AcquireSlot(ctx); err != nil {
		t.Fatalf("first AcquireSlot: %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := b.AcquireSlot(cctx); err == nil {
		t.Fatal("expected second AcquireSlot to block/fail while cap is held")
	}

	b.ReleaseSlot()
	if err := b.AcquireSlot(ctx); err != nil {
		t.Fatalf("AcquireSlot after release: %v", err)
	}
}

func asCapabilityDeniedError(err error, target **evidence.CapabilityDeniedError) bool {
	if e, ok := err.(*evidence.CapabilityDeniedError); ok {
		*target = e
		return true
	}
	return false
}
