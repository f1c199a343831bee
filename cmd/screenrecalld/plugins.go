package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"screenrecall/pkg/evidence/ledger"
	"screenrecall/pkg/extract"
	"screenrecall/pkg/plugin"
)

// pluginExtractor adapts one running plugin subprocess (C4) into an
// extract.Extractor (C6): every call is gated by broker.Check before the
// RPC is issued, enforcing the capability/stage policy spec.md §4.4
// requires.
type pluginExtractor struct {
	proc       *plugin.Process
	broker     *plugin.Broker
	manifest   *plugin.Manifest
	capability string
}

func (e *pluginExtractor) Extract(job extract.Job) (json.RawMessage, extract.QualityCounters, error) {
	ctx := context.Background()
	if err := e.broker.Check(ctx, e.manifest.PluginID, e.capability, e.manifest.Stage); err != nil {
		return nil, extract.QualityCounters{}, err
	}

	params, err := json.Marshal(job)
	if err != nil {
		return nil, extract.QualityCounters{}, fmt.Errorf("plugin extractor: marshal job: %w", err)
	}

	resp, err := e.proc.Call(ctx, &plugin.Request{Capability: e.capability, Params: params})
	if err != nil {
		return nil, extract.QualityCounters{}, err
	}
	if !resp.OK {
		return nil, extract.QualityCounters{}, fmt.Errorf("plugin extractor %s: %s", e.manifest.PluginID, resp.Error)
	}

	var result struct {
		Payload json.RawMessage        `json:"payload"`
		Quality extract.QualityCounters `json:"quality"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, extract.QualityCounters{}, fmt.Errorf("plugin extractor %s: unmarshal result: %w", e.manifest.PluginID, err)
	}
	return result.Payload, result.Quality, nil
}

// multiExtractor routes a Job to whichever loaded plugin declared its
// ExtractorID, so extract.Pool can stay ignorant of plugin identity.
type multiExtractor struct {
	byID        map[string]extract.Extractor
	recordTypes map[string]string // plugin_id -> derived.* record_type it produces
}

func (m *multiExtractor) Extract(job extract.Job) (json.RawMessage, extract.QualityCounters, error) {
	e, ok := m.byID[job.ExtractorID]
	if !ok {
		return nil, extract.QualityCounters{}, fmt.Errorf("no extractor plugin registered for %s", job.ExtractorID)
	}
	return e.Extract(job)
}

// registeredIDs returns the extractor plugin IDs registered with m, sorted
// for deterministic job-submission order.
func (m *multiExtractor) registeredIDs() []string {
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// recordTypeFor reports the derived.* record_type the plugin registered for
// extractorID produces, for use by runCapturePipeline when building
// extract.Job. ok is false if no stage2 plugin is registered under that ID.
func (m *multiExtractor) recordTypeFor(extractorID string) (recordType string, ok bool) {
	_, registered := m.byID[extractorID]
	if !registered {
		return "", false
	}
	return m.recordTypes[extractorID], true
}

// loadExtractorPlugins scans dir for plugin manifest YAML files, starts each
// non-deprecated plugin's subprocess (plugin.Start), declares its
// capabilities on broker (Broker.Allow), and returns a multiExtractor
// routing Stage-2 jobs to the plugins that registered for them. dir == ""
// disables plugin loading: the daemon runs with zero extractor plugins and
// every Stage-2 job fails with "no extractor plugin registered." Callers
// must Stop() every returned *plugin.Process on shutdown.
func loadExtractorPlugins(dir string, broker *plugin.Broker, auditLedger *ledger.Ledger) (*multiExtractor, []*plugin.Process) {
	m := &multiExtractor{byID: make(map[string]extract.Extractor), recordTypes: make(map[string]string)}
	logger := slog.Default().With("component", "cmd.plugins")
	if dir == "" {
		logger.Info("no plugin manifest directory configured, running with no extractor plugins")
		return m, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("plugin manifest directory not found, running with no extractor plugins", "dir", dir)
			return m, nil
		}
		logger.Error("failed to read plugin manifest directory", "dir", dir, "error", err)
		return m, nil
	}

	var procs []*plugin.Process
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		manifest, err := plugin.LoadManifest(path)
		if err != nil {
			logger.Warn("failed to load plugin manifest", "file", path, "error", err)
			continue
		}
		if manifest.Deprecated {
			logger.Info("skipping deprecated plugin manifest", "plugin_id", manifest.PluginID)
			continue
		}
		if manifest.Stage != "stage2" {
			continue
		}

		proc, err := plugin.Start(manifest, auditLedger)
		if err != nil {
			logger.Warn("failed to start plugin subprocess", "plugin_id", manifest.PluginID, "error", err)
			continue
		}
		procs = append(procs, proc)

		for _, capability := range manifest.Capabilities {
			broker.Allow(capability, manifest.Stage)
		}
		capability := "extract"
		if len(manifest.Capabilities) > 0 {
			capability = manifest.Capabilities[0]
		}

		m.byID[manifest.PluginID] = &pluginExtractor{proc: proc, broker: broker, manifest: manifest, capability: capability}
		m.recordTypes[manifest.PluginID] = manifest.RecordType
		logger.Info("extractor plugin started", "plugin_id", manifest.PluginID, "version", manifest.Version, "record_type", manifest.RecordType)
	}
	return m, procs
}
