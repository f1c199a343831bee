package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"screenrecall/pkg/evidence"
)

func TestCSVExportWithHeader(t *testing.T) {
	exp := NewCSVExporter(true)
	var buf bytes.Buffer
	if err := exp.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse csv output: %v", err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "record_id" {
		t.Fatalf("expected header row, got %v", rows[0])
	}
	if rows[1][0] != "r1" || rows[2][0] != "r2" {
		t.Fatalf("unexpected record ids: %v / %v", rows[1][0], rows[2][0])
	}
}

func TestCSVExportInputRefsJoined(t *testing.T) {
	exp := NewCSVExporter(false)
	var buf bytes.Buffer
	if err := exp.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv output: %v", err)
	}
	if len(rows) != 2 || rows[1][8] != "r1" {
		t.Fatalf("expected second record's input_refs column to be r1, got %v", rows)
	}
}

func TestCSVExportStream(t *testing.T) {
	exp := NewCSVExporter(true)
	records := sampleRecords()

	ch := make(chan *evidence.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	if err := exp.ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse streamed csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
}
