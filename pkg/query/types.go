// Package query implements the read-only query orchestrator (SPEC_FULL.md
// §4.8, C8): deterministic intent classification, retrieval via C7, citation
// enforcement, and an append-only query-trace log.
package query

import "time"

// Intent is a closed category a query_text is classified into.
type Intent string

const (
	IntentTemporal     Intent = "temporal"
	IntentFocus        Intent = "focus"
	IntentCounting     Intent = "counting"
	IntentCrossWindow  Intent = "cross_window"
	IntentUnknown      Intent = "unknown"
)

// State is the closed set of response states spec.md §6 requires.
type State string

const (
	StateOK               State = "OK"
	StateNotFound         State = "NOT_FOUND"
	StateNeedsClarification State = "NEEDS_CLARIFICATION"
)

// Request is the loopback query API's input: {query_text, options}.
type Request struct {
	QueryText string
	Options   map[string]string
}

// CitationRef is a resolved, answer-facing citation.
type CitationRef struct {
	RecordID      string
	SpanID        string
	StableLocator string
}

// Response is the loopback query API's output.
type Response struct {
	State         State
	Answer        string
	Citations     []CitationRef
	PluginsInPath []string
	QueryHash     string
}

// TraceEntry is one append-only query-trace record (spec.md §4.8 step 5).
type TraceEntry struct {
	QueryHash      string
	ModeUsed       string
	PluginsInPath  []string
	CitationIDs    []string
	ConfidenceBand string
	At             time.Time
}
