package capture

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps how many bytes of a large frame are hashed. Grounded on
// the teacher's pkg/evidence/recorder/hash.go HashContent, which hashes only
// the first MaxHashSize bytes of large bodies to bound memory use.
const MaxHashSize = 1024 * 1024 // 1MB

// ContentHash computes the hex-encoded SHA-256 hash of content, truncated to
// MaxHashSize bytes for very large frames. Used for the full-frame
// content_hash once a candidate survives dedupe (spec.md §4.2 step 4).
func ContentHash(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	toHash := content
	if len(toHash) > MaxHashSize {
		toHash = toHash[:MaxHashSize]
	}
	sum := sha256.Sum256(toHash)
	return hex.EncodeToString(sum[:])
}
