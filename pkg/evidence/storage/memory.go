package storage

import (
	"context"
	"sort"
	"sync"

	"screenrecall/pkg/evidence"
)

// MemoryStorage is an in-memory evidence.Storage implementation, adapted
// from the teacher's storage/memory.go, used in tests and for components
// that don't need durability (e.g. short-lived CLI invocations).
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*evidence.Record
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*evidence.Record)}
}

func (m *MemoryStorage) PutNew(ctx context.Context, r *evidence.Record) (evidence.PutResult, error) {
	if err := evidence.Validate(r); err != nil {
		return evidence.PutIntegrityFault, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[r.RecordID]
	if !ok {
		cp := *r
		m.records[r.RecordID] = &cp
		return evidence.PutOK, nil
	}
	if existing.ContentHash == r.ContentHash {
		return evidence.PutDuplicateOK, nil
	}
	return evidence.PutIntegrityFault, evidence.NewIntegrityFaultError(r.RecordID, existing.ContentHash, r.ContentHash)
}

func (m *MemoryStorage) Get(ctx context.Context, id string) (*evidence.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (m *MemoryStorage) Scan(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	m.mu.RLock()
	all := make([]*evidence.Record, 0, len(m.records))
	for _, rec := range m.records {
		if matches(rec, q) {
			cp := *rec
			all = append(all, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].TsUTCMicros != all[j].TsUTCMicros {
			if q.SortOrder == "desc" {
				return all[i].TsUTCMicros > all[j].TsUTCMicros
			}
			return all[i].TsUTCMicros < all[j].TsUTCMicros
		}
		if q.SortOrder == "desc" {
			return all[i].RecordID > all[j].RecordID
		}
		return all[i].RecordID < all[j].RecordID
	})

	offset := q.Offset
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStorage) ScanStream(ctx context.Context, q *evidence.Query) (<-chan *evidence.Record, <-chan error) {
	recordsCh := make(chan *evidence.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		records, err := m.Scan(ctx, q)
		if err != nil {
			errCh <- err
			return
		}
		for _, rec := range records {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- rec:
			}
		}
	}()

	return recordsCh, errCh
}

func (m *MemoryStorage) Count(ctx context.Context, q *evidence.Query) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rec := range m.records {
		if matches(rec, q) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStorage) Close() error { return nil }

func matches(rec *evidence.Record, q *evidence.Query) bool {
	if q == nil {
		return true
	}
	if len(q.RecordTypes) > 0 {
		found := false
		for _, t := range q.RecordTypes {
			if rec.RecordType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !q.Range.Start.IsZero() && rec.TsUTCMicros < q.Range.Start.UnixMicro() {
		return false
	}
	if !q.Range.End.IsZero() && rec.TsUTCMicros > q.Range.End.UnixMicro() {
		return false
	}
	if q.RunID != "" && rec.RunID != q.RunID {
		return false
	}
	if q.InputRef != "" {
		found := false
		for _, ref := range rec.InputRefs {
			if ref == q.InputRef {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
