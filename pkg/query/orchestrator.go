package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"screenrecall/pkg/evidence"
	"screenrecall/pkg/retrieval"
)

// ContractCounters are the two counters spec.md §4.8 requires the query
// path to hold at zero by construction: nothing on this path may read raw
// media or request new extraction. They're wired into Orchestrator but
// never incremented by any method on it — orchestrator_test.go checks that
// both still read zero after several queries.
type ContractCounters struct {
	RawMediaReads           prometheus.Counter
	ScheduleExtractRequests prometheus.Counter
}

// NewContractCounters registers the two counters on registry (or the
// default registerer if nil).
func NewContractCounters(registry prometheus.Registerer) *ContractCounters {
	c := &ContractCounters{
		RawMediaReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "screenrecall", Subsystem: "query", Name: "raw_media_reads_total",
			Help: "Raw media reads performed by the query path. Must remain 0 by construction.",
		}),
		ScheduleExtractRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "screenrecall", Subsystem: "query", Name: "schedule_extract_requests_total",
			Help: "Extraction requests issued by the query path. Must remain 0 by construction.",
		}),
	}
	if registry != nil {
		registry.MustRegister(c.RawMediaReads, c.ScheduleExtractRequests)
	}
	return c
}

// ActivityNotifier is the narrow slice of pkg/governor.Governor the
// orchestrator needs to raise the operator-forced USER_QUERY signal
// (spec.md §4.5: "operator-forced flow... sets query_intent=true"). Kept as
// a local interface so query never imports governor directly.
type ActivityNotifier interface {
	SetActivity(userActive, queryIntent bool)
}

// Orchestrator implements the read-only query path (spec.md §4.8). storage
// is used only to read already-normalized text payloads for answer
// synthesis — never raw media — so it does not touch RawMediaReads.
type Orchestrator struct {
	index    retrieval.Index
	resolver *retrieval.Resolver
	storage  evidence.Storage
	traces   TraceStore
	counters *ContractCounters
	notifier ActivityNotifier
	logger   *slog.Logger
}

// NewOrchestrator wires an Orchestrator over a composed retrieval index,
// the citation resolver, normalized-record storage, the query-trace log,
// the contract counters, and (optionally) the governor's activity
// notifier. notifier may be nil, in which case every query's USER_QUERY
// signal is simply dropped (e.g. in tests with no governor).
func NewOrchestrator(index retrieval.Index, resolver *retrieval.Resolver, storage evidence.Storage, traces TraceStore, counters *ContractCounters, notifier ActivityNotifier) *Orchestrator {
	if counters == nil {
		counters = NewContractCounters(nil)
	}
	return &Orchestrator{
		index:    index,
		resolver: resolver,
		storage:  storage,
		traces:   traces,
		counters: counters,
		notifier: notifier,
		logger:   slog.Default().With("component", "query.orchestrator"),
	}
}

// Handle answers req per spec.md §4.8's five-step contract: classify,
// route, retrieve, enforce citation coverage, emit a trace entry. Every
// call raises the governor's query-intent signal first, regardless of
// outcome: an operator-forced query is itself the USER_QUERY trigger
// (spec.md §4.5), not just a successful one.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Response, error) {
	if o.notifier != nil {
		o.notifier.SetActivity(true, true)
	}

	queryHash := hashQuery(req)
	intent := Classify(req.QueryText)

	if intent == IntentUnknown {
		o.trace(ctx, queryHash, intent, nil, "none")
		return &Response{State: StateNeedsClarification, QueryHash: queryHash}, nil
	}

	recordTypes := toRecordTypes(RequiredRecordTypes(intent))
	plan := retrieval.QueryPlan{RecordTypes: recordTypes, TextQuery: req.QueryText, Limit: 20}

	candidates, err := o.index.Retrieve(plan)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	citations, texts := o.resolveCitations(ctx, candidates)
	if len(citations) == 0 {
		o.trace(ctx, queryHash, intent, nil, "none")
		return &Response{State: StateNotFound, QueryHash: queryHash}, nil
	}

	answer := synthesizeAnswer(texts)
	band := confidenceBand(len(citations))
	citationIDs := make([]string, len(citations))
	for i, c := range citations {
		citationIDs[i] = c.RecordID
	}

	o.trace(ctx, queryHash, intent, citationIDs, band)

	return &Response{
		State:     StateOK,
		Answer:    answer,
		Citations: citations,
		QueryHash: queryHash,
	}, nil
}

// resolveCitations verifies each candidate via the resolver, keeping only
// those that pass, in candidate order (already tie-broken by the index).
func (o *Orchestrator) resolveCitations(ctx context.Context, candidates []retrieval.Candidate) ([]CitationRef, []string) {
	var citations []CitationRef
	var texts []string
	for _, c := range candidates {
		ok, _ := o.resolver.Resolve(ctx, retrieval.Citation{
			RecordID:      c.RecordID,
			SpanID:        c.SpanID,
			StableLocator: c.ContentHashAtIndexTime,
		})
		if !ok {
			continue
		}
		citations = append(citations, CitationRef{RecordID: c.RecordID, SpanID: c.SpanID, StableLocator: c.ContentHashAtIndexTime})
		if text := o.extractText(ctx, c.RecordID); text != "" {
			texts = append(texts, text)
		}
	}
	return citations, texts
}

// extractText reads the already-normalized text field off a derived
// text-bearing record, for answer synthesis. Returns "" for record types
// that carry no text payload.
func (o *Orchestrator) extractText(ctx context.Context, recordID string) string {
	if o.storage == nil {
		return ""
	}
	rec, ok, err := o.storage.Get(ctx, recordID)
	if err != nil || !ok {
		return ""
	}
	switch rec.RecordType {
	case evidence.RecordTextOCR, evidence.RecordTextVLM, evidence.RecordSSTTextExtra:
		var payload evidence.ExtractedTextPayload
		if err := json.Unmarshal(rec.Payload, &payload); err != nil {
			return ""
		}
		return payload.Text
	default:
		return ""
	}
}

func (o *Orchestrator) trace(ctx context.Context, queryHash string, intent Intent, citationIDs []string, band string) {
	entry := TraceEntry{
		QueryHash:      queryHash,
		ModeUsed:       string(intent),
		PluginsInPath:  nil, // the query path never dispatches plugins; extraction already ran at ingest time
		CitationIDs:    citationIDs,
		ConfidenceBand: band,
		At:             time.Now(),
	}
	if err := o.traces.Append(ctx, entry); err != nil {
		o.logger.Warn("failed to append query trace", "error", err)
	}
}

func hashQuery(req Request) string {
	h := sha256.New()
	h.Write([]byte(req.QueryText))
	keys := make([]string, 0, len(req.Options))
	for k := range req.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(req.Options[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func toRecordTypes(types []string) []evidence.RecordType {
	out := make([]evidence.RecordType, len(types))
	for i, t := range types {
		out[i] = evidence.RecordType(t)
	}
	return out
}

func confidenceBand(citationCount int) string {
	switch {
	case citationCount >= 2:
		return "high"
	case citationCount == 1:
		return "medium"
	default:
		return "none"
	}
}

func synthesizeAnswer(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	return strings.Join(texts, " ")
}

