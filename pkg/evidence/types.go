// Package evidence defines the append-only record model shared by every
// component that reads or writes the evidence store: the closed record-type
// enumeration, the base Record envelope, and the Storage contract that
// storage backends (pkg/evidence/storage) implement.
package evidence

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// RecordType tags a Record with one of a closed set of schemas. Unknown
// values are rejected at write time by the Validator registry below.
type RecordType string

const (
	RecordCaptureFrame      RecordType = "evidence.capture.frame"
	RecordUIASnapshot       RecordType = "evidence.uia.snapshot"
	RecordUIAFocus          RecordType = "obs.uia.focus"
	RecordUIAContext        RecordType = "obs.uia.context"
	RecordUIAOperable       RecordType = "obs.uia.operable"
	RecordTextOCR           RecordType = "derived.text.ocr"
	RecordTextVLM           RecordType = "derived.text.vlm"
	RecordSSTTextExtra      RecordType = "derived.sst.text.extra"
	RecordStage1Complete    RecordType = "derived.ingest.stage1.complete"
	RecordPluginCompletion  RecordType = "derived.ingest.plugin.completion"
	RecordRetentionEligible RecordType = "retention.eligible"
	RecordAuditEntry        RecordType = "audit.*"
)

// Producer identifies the component or plugin that wrote a record.
type Producer struct {
	PluginID string `json:"plugin_id"`
	Version  string `json:"version"`
}

// Record is the base envelope for every row in the evidence store. Payload
// carries the type-specific fields (see pkg/evidence's *Payload structs)
// as canonical JSON so the store itself stays polymorphic.
type Record struct {
	RecordID     string          `json:"record_id"`
	RecordType   RecordType      `json:"record_type"`
	RunID        string          `json:"run_id"`
	TsUTCMicros  int64           `json:"ts_utc"`
	MonotonicNs  int64           `json:"monotonic_ns"`
	ContentHash  string          `json:"content_hash"`
	Producer     Producer        `json:"producer"`
	InputRefs    []string        `json:"input_refs"`
	SchemaVer    int             `json:"schema_version"`
	Payload      json.RawMessage `json:"payload"`
}

// Validator checks a type-specific payload for structural validity before
// the record is admitted to the store. Registered per RecordType in the
// closed registry below; an unregistered type is itself a rejection.
type Validator func(payload json.RawMessage) error

var validators = map[RecordType]Validator{}

// RegisterValidator installs the Validator for a RecordType. Called from
// each payload-defining file's init() so the registry stays next to the
// schema it validates.
func RegisterValidator(t RecordType, v Validator) {
	validators[t] = v
}

// Validate runs the registered Validator for r.RecordType, or rejects r if
// no validator is registered (closed-enumeration enforcement).
func Validate(r *Record) error {
	v, ok := validators[r.RecordType]
	if !ok {
		return NewSchemaMismatchError(string(r.RecordType), "no validator registered for record type")
	}
	return v(r.Payload)
}

// PutResult is the tri-state outcome of Storage.PutNew.
type PutResult int

const (
	PutOK PutResult = iota
	PutDuplicateOK
	PutIntegrityFault
)

func (r PutResult) String() string {
	switch r {
	case PutOK:
		return "OK"
	case PutDuplicateOK:
		return "DuplicateOK"
	case PutIntegrityFault:
		return "IntegrityFault"
	default:
		return "Unknown"
	}
}

// TimeRange bounds a scan by ts_utc, both ends inclusive. A zero value on
// either end means unbounded on that side.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Query selects records for Storage.Scan/Query. Mirrors the teacher's
// evidence.Query shape (time range, type filter, pagination, sort) adapted
// to the polymorphic record model.
type Query struct {
	RecordTypes []RecordType
	Range       TimeRange
	RunID       string
	InputRef    string // filter: records whose InputRefs contains this id
	Limit       int
	Offset      int
	SortOrder   string // "asc" or "desc" on (ts_utc, record_id)
}

// Storage is the contract every evidence backend (SQLite, in-memory)
// implements. Grounded on the teacher's pkg/evidence.Storage interface,
// generalized from a single fixed table to the polymorphic Record model.
type Storage interface {
	// PutNew inserts r if record_id is new. If record_id exists with an
	// identical content_hash, returns PutDuplicateOK. If it exists with a
	// differing content_hash, returns PutIntegrityFault and does not write.
	PutNew(ctx context.Context, r *Record) (PutResult, error)

	// Get returns the record for id, or ok=false if absent.
	Get(ctx context.Context, id string) (rec *Record, ok bool, err error)

	// Scan returns records matching q in (ts_utc, record_id) order.
	Scan(ctx context.Context, q *Query) ([]*Record, error)

	// ScanStream is Scan via a channel, for large result sets, mirroring the
	// teacher's QueryStream idiom.
	ScanStream(ctx context.Context, q *Query) (<-chan *Record, <-chan error)

	// Count returns the number of records matching q.
	Count(ctx context.Context, q *Query) (int, error)

	Close() error
}

// Exporter writes a set of records to w in some serialization format,
// mirroring the teacher's evidence.Exporter interface.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
