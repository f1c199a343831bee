package blob

import (
	"bytes"
	"context"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	data := []byte("a captured frame's bytes")

	id, err := s.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %q want %q", got, data)
	}
}

func TestPutIsContentAddressedAndIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	data := []byte("same bytes")

	id1, err := s.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put 1: %v", err)
	}
	id2, err := s.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put 2: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("blob_id not content-addressed: %s != %s", id1, id2)
	}
}

func TestGetMissingBlob(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Get(context.Background(), "deadbeef"); err == nil {
		t.Fatal("expected error for missing blob")
	}
}
