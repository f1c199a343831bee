package ingest

import (
	"fmt"
)

// stage1Allowlist is the closed set of import paths Stage-1 wiring code may
// reference. OCR/VLM/embedding extractor clients are deliberately absent:
// spec.md §4.3 requires Stage-1 to never import or invoke extractor code.
// Grounded on the teacher's pkg/policy/engine declarative allow/deny idiom,
// adapted from HTTP-request policy matching to a boot-time package check.
//
// This is a best-effort guard, not compiler-verified static analysis: Go
// has no portable runtime import-graph introspection API (DESIGN.md Open
// Question resolution). The capability broker's dynamic denial in
// pkg/plugin is what actually enforces this contract at runtime.
var stage1Allowlist = map[string]bool{
	"screenrecall/pkg/evidence":       true,
	"screenrecall/pkg/evidence/blob":  true,
	"screenrecall/pkg/evidence/ids":   true,
	"screenrecall/pkg/capture":        true,
	"screenrecall/pkg/ingest":         true,
	"screenrecall/pkg/plugin":         true,
}

// deniedStage1Imports names import paths that must never appear in Stage-1
// wiring code: anything that could construct an OCR/VLM/embedding client.
var deniedStage1Imports = map[string]string{
	"screenrecall/pkg/extract": "Stage-1 must not import or invoke extractor code (spec.md §4.3)",
}

// AuditImport panics if path is an import Stage-1 wiring is forbidden from
// using. AuditStartup calls it for every path in stage1Dependencies (the
// imports Stage-1's wiring code depends on at compile time), simulating a
// static audit that would otherwise require a Go import-graph analyzer.
func AuditImport(path string) {
	if reason, denied := deniedStage1Imports[path]; denied {
		panic(fmt.Sprintf("stage1 dependency audit: forbidden import %q: %s", path, reason))
	}
}

// IsAllowedStage1Import reports whether path is on the Stage-1 allowlist.
func IsAllowedStage1Import(path string) bool {
	return stage1Allowlist[path]
}

// stage1Dependencies lists every import path Stage-1 wiring (the capture
// scheduler and this package's normalizer) takes a compile-time dependency
// on. AuditStartup walks this list at boot, the way the teacher's
// pkg/policy/engine validates a rule set before serving traffic.
var stage1Dependencies = []string{
	"screenrecall/pkg/evidence",
	"screenrecall/pkg/evidence/blob",
	"screenrecall/pkg/evidence/ids",
	"screenrecall/pkg/capture",
	"screenrecall/pkg/ingest",
	"screenrecall/pkg/plugin",
}

// AuditStartup runs the Stage-1 dependency-graph audit spec.md §4.3 requires
// at boot: every entry in stage1Dependencies must be denial-free and on the
// allowlist. Call once from the daemon's startup path before the capture
// pipeline starts. Returns an error (rather than letting AuditImport's panic
// propagate) so the daemon can fail startup through its normal error path.
func AuditStartup() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage1 dependency audit: %v", r)
		}
	}()
	for _, path := range stage1Dependencies {
		AuditImport(path)
		if !IsAllowedStage1Import(path) {
			return fmt.Errorf("stage1 dependency audit: %q is not on the allowlist", path)
		}
	}
	return nil
}
