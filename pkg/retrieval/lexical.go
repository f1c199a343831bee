package retrieval

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, FTS5-enabled build

	"screenrecall/pkg/evidence"
)

// LexicalIndex is a full-text index over text-bearing derived records,
// backed by an FTS5 virtual table. Deliberately separate from the primary
// mattn/go-sqlite3-backed record store (pkg/evidence/storage): this gives
// modernc.org/sqlite a real production role distinct from the teacher's,
// where it appeared only as an alternate driver exercised in tests
// (DESIGN.md).
type LexicalIndex struct {
	db *sql.DB
}

// NewLexicalIndex opens (creating if absent) an FTS5 table at path. Pass
// ":memory:" for an ephemeral index.
func NewLexicalIndex(path string) (*LexicalIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, evidence.NewStorageError("lexical_index", "open", err)
	}
	if _, err := db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS lexical USING fts5(record_id UNINDEXED, record_type UNINDEXED, content_hash UNINDEXED, body)`); err != nil {
		db.Close()
		return nil, evidence.NewStorageError("lexical_index", "create_table", err)
	}
	return &LexicalIndex{db: db}, nil
}

// Close releases the underlying database handle.
func (l *LexicalIndex) Close() error {
	return l.db.Close()
}

// IndexRecord adds or replaces the searchable text for a record. The
// daemon's ingest and extract pipeline does not call it, so the index holds
// only the records a caller adds through it.
func (l *LexicalIndex) IndexRecord(recordID string, recordType evidence.RecordType, contentHash, body string) error {
	if _, err := l.db.Exec(`DELETE FROM lexical WHERE record_id = ?`, recordID); err != nil {
		return evidence.NewStorageError("lexical_index", "delete", err)
	}
	if _, err := l.db.Exec(`INSERT INTO lexical (record_id, record_type, content_hash, body) VALUES (?, ?, ?, ?)`,
		recordID, string(recordType), contentHash, body); err != nil {
		return evidence.NewStorageError("lexical_index", "insert", err)
	}
	return nil
}

// Retrieve runs an FTS5 MATCH query that matches any whitespace-separated
// term of plan.TextQuery (each term quoted, so punctuation in the text is not
// read as FTS5 syntax), ranked by bm25() then (record_id asc, span_id asc)
// for deterministic tie-breaking.
func (l *LexicalIndex) Retrieve(plan QueryPlan) ([]Candidate, error) {
	terms := strings.Fields(plan.TextQuery)
	if len(terms) == 0 {
		return nil, nil
	}
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	limit := plan.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := l.db.Query(
		`SELECT record_id, record_type, content_hash, bm25(lexical) AS rank
		 FROM lexical WHERE lexical MATCH ?
		 ORDER BY rank ASC, record_id ASC
		 LIMIT ?`, strings.Join(terms, " OR "), limit)
	if err != nil {
		return nil, evidence.NewStorageError("lexical_index", "query", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var recordID, recordType, contentHash string
		var rank float64
		if err := rows.Scan(&recordID, &recordType, &contentHash, &rank); err != nil {
			return nil, fmt.Errorf("scan lexical row: %w", err)
		}
		candidates = append(candidates, Candidate{
			RecordID:               recordID,
			RecordType:             evidence.RecordType(recordType),
			SpanID:                 "full",
			ContentHashAtIndexTime: contentHash,
			Score:                  -rank, // bm25 is lower-is-better; invert so higher Score wins
		})
	}
	return candidates, rows.Err()
}
