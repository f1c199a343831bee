// Package plugin implements the out-of-process plugin host and capability
// broker (SPEC_FULL.md §4.4, C4): manifest/lock loading, length-prefixed
// subprocess RPC, capability gating, and a global concurrent-process cap.
package plugin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes one plugin's identity and declared capabilities,
// loaded from YAML the way the teacher's pkg/config loads its top-level
// configuration (yaml.v3 + struct tags).
type Manifest struct {
	PluginID     string   `yaml:"plugin_id"`
	Version      string   `yaml:"version"`
	Path         string   `yaml:"path"`
	Capabilities []string `yaml:"capabilities"`
	Stage        string   `yaml:"stage"` // "stage1" | "stage2"
	Deprecated   bool     `yaml:"deprecated"`
	TimeoutSec   int      `yaml:"timeout_sec"`

	// RecordType is the derived.* record_type a stage2 extractor plugin
	// produces (e.g. "derived.text.ocr"). Unused by stage1 plugins.
	RecordType string `yaml:"record_type"`
}

// LoadManifest reads and parses a plugin manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("plugin: parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// ContentHash returns the sha256 of the plugin binary at m.Path, used to
// verify against the signed Lock's pinned hash at boot (spec.md §4.4
// "plugin artifacts are content-hashed and pinned in a signed lock").
func (m *Manifest) ContentHash() (string, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return "", fmt.Errorf("plugin: hash artifact %s: %w", m.Path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// HasCapability reports whether m declares capability.
func (m *Manifest) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
