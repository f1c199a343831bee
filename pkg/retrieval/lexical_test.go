package retrieval

import (
	"testing"

	"screenrecall/pkg/evidence"
)

func TestLexicalIndexMatchesIndexedBody(t *testing.T) {
	idx, err := NewLexicalIndex(":memory:")
	if err != nil {
		t.Fatalf("new lexical index: %v", err)
	}
	defer idx.Close()

	if err := idx.IndexRecord("rec-1", evidence.RecordTextOCR, "hash-1", "the quick brown fox"); err != nil {
		t.Fatalf("index record: %v", err)
	}
	if err := idx.IndexRecord("rec-2", evidence.RecordTextOCR, "hash-2", "a slow green turtle"); err != nil {
		t.Fatalf("index record: %v", err)
	}

	candidates, err := idx.Retrieve(QueryPlan{TextQuery: "fox", Limit: 10})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(candidates) != 1 || candidates[0].RecordID != "rec-1" {
		t.Fatalf("expected single match rec-1, got %v", candidates)
	}
}

func TestLexicalIndexReplacesOnReindex(t *testing.T) {
	idx, err := NewLexicalIndex(":memory:")
	if err != nil {
		t.Fatalf("new lexical index: %v", err)
	}
	defer idx.Close()

	idx.IndexRecord("rec-1", evidence.RecordTextOCR, "hash-1", "original content")
	idx.IndexRecord("rec-1", evidence.RecordTextOCR, "hash-2", "updated content")

	candidates, err := idx.Retrieve(QueryPlan{TextQuery: "original", Limit: 10})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected stale body no longer matched, got %v", candidates)
	}

	candidates, err = idx.Retrieve(QueryPlan{TextQuery: "updated", Limit: 10})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ContentHashAtIndexTime != "hash-2" {
		t.Fatalf("expected updated content hash, got %v", candidates)
	}
}

func TestLexicalIndexEmptyQueryReturnsNil(t *testing.T) {
	idx, err := NewLexicalIndex(":memory:")
	if err != nil {
		t.Fatalf("new lexical index: %v", err)
	}
	defer idx.Close()

	candidates, err := idx.Retrieve(QueryPlan{})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected nil for empty text query, got %v", candidates)
	}
}
