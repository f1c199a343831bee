package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"screenrecall/pkg/evidence"
)

// CSVExporter exports evidence records to CSV format. Nested fields
// (input_refs, payload) are flattened: input_refs becomes a semicolon-joined
// string, payload stays as its raw JSON text.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(e.headerRow()); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}

	for _, r := range records {
		if err := writer.Write(e.recordToRow(r)); err != nil {
			return evidence.NewExportError("csv", len(records), err)
		}
	}
	if err := writer.Error(); err != nil {
		return evidence.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream streams records from a channel to w in CSV format, flushing
// every 100 records to give progress feedback on long exports.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *evidence.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(e.headerRow()); err != nil {
			return evidence.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError("csv", count, err)
				}
				return nil
			}
			if err := writer.Write(e.recordToRow(r)); err != nil {
				return evidence.NewExportError("csv", count, err)
			}
			count++
			if count%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return evidence.NewExportError("csv", count, err)
				}
			}
		}
	}
}

func (e *CSVExporter) headerRow() []string {
	return []string{
		"record_id", "record_type", "run_id", "ts_utc", "monotonic_ns",
		"content_hash", "producer_plugin_id", "producer_version",
		"input_refs", "schema_version", "payload",
	}
}

func (e *CSVExporter) recordToRow(r *evidence.Record) []string {
	return []string{
		r.RecordID,
		string(r.RecordType),
		r.RunID,
		strconv.FormatInt(r.TsUTCMicros, 10),
		strconv.FormatInt(r.MonotonicNs, 10),
		r.ContentHash,
		r.Producer.PluginID,
		r.Producer.Version,
		strings.Join(r.InputRefs, ";"),
		strconv.Itoa(r.SchemaVer),
		string(r.Payload),
	}
}
