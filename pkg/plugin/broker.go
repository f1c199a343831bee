package plugin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/ledger"
)

// Broker is the capability broker: a map capability -> allowed stages,
// checked before every RPC. Grounded on the teacher's
// pkg/policy/engine/matcher.go declarative rule-matching idiom (a closed
// set of actions matched against a request), repurposed here from HTTP
// request policy to plugin capability policy.
type Broker struct {
	mu       sync.RWMutex
	allowed  map[string]map[string]bool // capability -> stage -> allowed
	ledger   *ledger.Ledger
	logger   *slog.Logger
	sem      chan struct{} // global concurrent-process cap
}

// NewBroker constructs a Broker with a global concurrent-plugin-process cap
// of maxConcurrent, the same buffered-channel-semaphore shape as the
// teacher's AcquireConcurrent/ReleaseConcurrent pair in pkg/limits/manager.go.
func NewBroker(maxConcurrent int, l *ledger.Ledger) *Broker {
	return &Broker{
		allowed: make(map[string]map[string]bool),
		ledger:  l,
		logger:  slog.Default().With("component", "plugin.broker"),
		sem:     make(chan struct{}, maxConcurrent),
	}
}

// Allow declares that capability may be used by plugins running in stage.
func (b *Broker) Allow(capability, stage string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allowed[capability] == nil {
		b.allowed[capability] = make(map[string]bool)
	}
	b.allowed[capability][stage] = true
}

// Check enforces the capability/stage policy before an RPC is issued. A
// denial writes an audit.capability_denied ledger entry and returns a
// CapabilityDeniedError (spec.md §4.4).
func (b *Broker) Check(ctx context.Context, pluginID, capability, stage string) error {
	b.mu.RLock()
	ok := b.allowed[capability] != nil && b.allowed[capability][stage]
	b.mu.RUnlock()

	if !ok {
		if b.ledger != nil {
			_, _ = b.ledger.AppendJSON(ctx, "audit.capability_denied", map[string]string{
				"plugin_id": pluginID, "capability": capability, "stage": stage,
			}, time.Now().UnixMicro())
		}
		return evidence.NewCapabilityDeniedError(pluginID, capability, stage)
	}
	return nil
}

// AcquireSlot blocks until a global process slot is available or ctx is
// canceled, mirroring the teacher's Manager.AcquireConcurrent lease
// semantics (pkg/limits/manager.go).
func (b *Broker) AcquireSlot(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseSlot returns a global process slot, mirroring
// Manager.ReleaseConcurrent.
func (b *Broker) ReleaseSlot() {
	select {
	case <-b.sem:
	default:
	}
}
