package retrieval

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/storage"
)

func TestTimeIndexRetrieveOrdersByRecordIDAndFiltersByType(t *testing.T) {
	st := storage.NewMemoryStorage()
	base := time.Now()
	for i, hash := range []string{"h1", "h2", "h3"} {
		payload, _ := json.Marshal(evidence.CaptureFramePayload{ImageSHA256: hash, ThumbSHA256: "t", ThumbSize: "64x64", BlobID: "b"})
		rec := &evidence.Record{
			RecordID: hash, RecordType: evidence.RecordCaptureFrame,
			TsUTCMicros: base.Add(time.Duration(i) * time.Second).UnixMicro(),
			ContentHash: hash, SchemaVer: 1, Payload: payload,
		}
		if _, err := st.PutNew(context.Background(), rec); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	idx := NewTimeIndex(st)
	candidates, err := idx.Retrieve(QueryPlan{RecordTypes: []evidence.RecordType{evidence.RecordCaptureFrame}, Limit: 10})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].RecordID != "h1" || candidates[2].RecordID != "h3" {
		t.Fatalf("expected record_id-ascending order, got %v", candidates)
	}
}

func TestTimeIndexRespectsLimit(t *testing.T) {
	st := storage.NewMemoryStorage()
	base := time.Now()
	for i, hash := range []string{"h1", "h2", "h3"} {
		payload, _ := json.Marshal(evidence.CaptureFramePayload{ImageSHA256: hash, ThumbSHA256: "t", ThumbSize: "64x64", BlobID: "b"})
		rec := &evidence.Record{
			RecordID: hash, RecordType: evidence.RecordCaptureFrame,
			TsUTCMicros: base.Add(time.Duration(i) * time.Second).UnixMicro(),
			ContentHash: hash, SchemaVer: 1, Payload: payload,
		}
		st.PutNew(context.Background(), rec)
	}

	idx := NewTimeIndex(st)
	candidates, err := idx.Retrieve(QueryPlan{Limit: 2})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (limit), got %d", len(candidates))
	}
}
