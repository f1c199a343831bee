package plugin

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// LockEntry pins one plugin's expected content hash.
type LockEntry struct {
	PluginID    string `json:"plugin_id"`
	ContentHash string `json:"content_hash"`
	Deprecated  bool   `json:"deprecated"`
}

// Lock is the signed pin list verified at boot, the way the teacher
// verifies PolicyVersionInfo git commit metadata (pkg/evidence/types.go):
// here the "signature" is an HMAC over the canonical entry bytes using a
// key sourced from pkg/security/secrets' provider chain, reused verbatim
// for key material rather than git commit trust.
type Lock struct {
	Entries   []LockEntry `json:"entries"`
	Signature string      `json:"signature"` // hex HMAC-SHA256
}

// SecretProvider is the narrow interface Lock verification needs from
// pkg/security/secrets.Manager.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// LoadLock reads and parses a lock file. It does not verify the signature;
// call Verify separately once the HMAC key is available.
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read lock %s: %w", path, err)
	}
	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("plugin: parse lock %s: %w", path, err)
	}
	return &l, nil
}

// Verify checks l.Signature against an HMAC computed over the canonical
// entries using key. A mismatch is a fatal boot error (spec.md §4.4).
func (l *Lock) Verify(key []byte) error {
	canonical, err := json.Marshal(l.Entries)
	if err != nil {
		return fmt.Errorf("plugin: canonicalize lock entries: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(l.Signature)) {
		return fmt.Errorf("plugin: lock signature mismatch")
	}
	return nil
}

// Sign computes and sets l.Signature over l.Entries using key. Used by the
// tooling that produces lock files, not by the runtime verifier.
func (l *Lock) Sign(key []byte) error {
	canonical, err := json.Marshal(l.Entries)
	if err != nil {
		return fmt.Errorf("plugin: canonicalize lock entries: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	l.Signature = hex.EncodeToString(mac.Sum(nil))
	return nil
}

// CheckManifest verifies m's artifact content hash matches the pinned entry
// for m.PluginID. A mismatch is a fatal boot error unless the plugin is
// marked deprecated in the lock (spec.md §4.4).
func (l *Lock) CheckManifest(m *Manifest) error {
	for _, e := range l.Entries {
		if e.PluginID != m.PluginID {
			continue
		}
		hash, err := m.ContentHash()
		if err != nil {
			return err
		}
		if hash != e.ContentHash && !e.Deprecated {
			return fmt.Errorf("plugin: content hash mismatch for %s: manifest=%s lock=%s", m.PluginID, hash, e.ContentHash)
		}
		return nil
	}
	return fmt.Errorf("plugin: no lock entry for %s", m.PluginID)
}
