// Package ledger implements the append-only, hash-chained audit log for
// privileged actions (spec.md §3 audit.*, invariant I5). Every teacher file
// in the pack writes audit-adjacent records (evidence rows, policy
// decisions) into a plain table; none chains them, so this package is new
// surface built from I5's own math. The single-writer append discipline
// and ORDER BY scan it needs are grounded on the teacher's buildWhereClause
// + "ORDER BY ts_utc, record_id" idiom from pkg/evidence/storage/sqlite.go.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"screenrecall/pkg/evidence"
)

// Entry is one row of the ledger: a privileged action plus its position in
// the hash chain.
type Entry struct {
	Seq             int64  `json:"seq"`
	Action          string `json:"action"`
	CanonicalPayload []byte `json:"-"`
	PayloadJSON     string `json:"payload"`
	PrevHash        string `json:"prev_hash"`
	EntryHash       string `json:"entry_hash"`
	TsUTCMicros     int64  `json:"ts_utc"`
}

// VerifyResult is the outcome of VerifyChain.
type VerifyResult struct {
	OK      bool
	BreakAt int64 // valid only when !OK
}

const schema = `
CREATE TABLE IF NOT EXISTS ledger (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    action      TEXT NOT NULL,
    payload     TEXT NOT NULL,
    prev_hash   TEXT NOT NULL,
    entry_hash  TEXT NOT NULL,
    ts_utc      INTEGER NOT NULL
);
`

// Ledger is a single-writer, SQLite-backed append log with a sha256 hash
// chain: entry[n].prev_hash == entry[n-1].entry_hash, where entry_hash =
// sha256(prev_hash || canonical_payload). prev_hash is therefore not the
// sha256 of the previous entry's canonical payload alone.
type Ledger struct {
	db     *sql.DB
	mu     sync.Mutex // enforces single-writer discipline (spec.md §4.1)
	logger *slog.Logger
}

// Open opens (creating if absent) a ledger database at path.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, evidence.NewStorageError("ledger", "open", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, evidence.NewStorageError("ledger", "enable_wal", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, evidence.NewStorageError("ledger", "create_schema", err)
	}
	return &Ledger{db: db, logger: slog.Default().With("component", "evidence.ledger")}, nil
}

// Append writes action/canonicalPayload as the next entry, chaining it to
// the previous entry's hash. Serialized by mu: the ledger is written by a
// single writer (spec.md §4.1, §5).
func (l *Ledger) Append(ctx context.Context, action string, canonicalPayload []byte, tsUTCMicros int64) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prevHash, err := l.lastHashLocked(ctx)
	if err != nil {
		return nil, err
	}

	entryHash := computeEntryHash(prevHash, canonicalPayload)
	res, err := l.db.ExecContext(ctx, `
		INSERT INTO ledger (action, payload, prev_hash, entry_hash, ts_utc) VALUES (?, ?, ?, ?, ?)
	`, action, string(canonicalPayload), prevHash, entryHash, tsUTCMicros)
	if err != nil {
		return nil, evidence.NewStorageError("ledger", "append", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, evidence.NewStorageError("ledger", "append", err)
	}

	l.logger.Debug("ledger entry appended", "seq", seq, "action", action)
	return &Entry{
		Seq: seq, Action: action, CanonicalPayload: canonicalPayload,
		PayloadJSON: string(canonicalPayload), PrevHash: prevHash, EntryHash: entryHash, TsUTCMicros: tsUTCMicros,
	}, nil
}

// AppendJSON canonicalizes v to JSON and appends it. A convenience wrapper
// over Append for structured audit payloads.
func (l *Ledger) AppendJSON(ctx context.Context, action string, v interface{}, tsUTCMicros int64) (*Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger payload: %w", err)
	}
	return l.Append(ctx, action, payload, tsUTCMicros)
}

func (l *Ledger) lastHashLocked(ctx context.Context) (string, error) {
	var hash string
	err := l.db.QueryRowContext(ctx, `SELECT entry_hash FROM ledger ORDER BY seq DESC LIMIT 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return genesisHash, nil
	}
	if err != nil {
		return "", evidence.NewStorageError("ledger", "last_hash", err)
	}
	return hash, nil
}

// genesisHash is entry[0]'s prev_hash: sha256 of the empty byte string,
// giving the chain a well-defined, reproducible root.
var genesisHash = computeHash(nil)

func computeHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func computeEntryHash(prevHash string, canonicalPayload []byte) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write(canonicalPayload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyChain walks entries [fromSeq, toSeq] (inclusive; toSeq<=0 means "to
// the end") recomputing each entry_hash from prev_hash+canonical_payload and
// comparing. Any break is reported with the seq at which it occurred
// (spec.md invariant I5, testable property "ledger hash chain verifies
// end-to-end across any prefix").
func (l *Ledger) VerifyChain(ctx context.Context, fromSeq, toSeq int64) (VerifyResult, error) {
	query := `SELECT seq, payload, prev_hash, entry_hash FROM ledger WHERE seq >= ?`
	args := []interface{}{fromSeq}
	if toSeq > 0 {
		query += ` AND seq <= ?`
		args = append(args, toSeq)
	}
	query += ` ORDER BY seq ASC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return VerifyResult{}, evidence.NewStorageError("ledger", "verify_chain", err)
	}
	defer rows.Close()

	expectedPrev := ""
	haveExpected := false
	if fromSeq > 1 {
		var prior string
		err := l.db.QueryRowContext(ctx, `SELECT entry_hash FROM ledger WHERE seq = ?`, fromSeq-1).Scan(&prior)
		if err == nil {
			expectedPrev = prior
			haveExpected = true
		}
	} else {
		expectedPrev = genesisHash
		haveExpected = true
	}

	for rows.Next() {
		var seq int64
		var payload, prevHash, entryHash string
		if err := rows.Scan(&seq, &payload, &prevHash, &entryHash); err != nil {
			return VerifyResult{}, evidence.NewStorageError("ledger", "verify_chain", err)
		}
		if haveExpected && prevHash != expectedPrev {
			return VerifyResult{OK: false, BreakAt: seq}, nil
		}
		if computeEntryHash(prevHash, []byte(payload)) != entryHash {
			return VerifyResult{OK: false, BreakAt: seq}, nil
		}
		expectedPrev = entryHash
		haveExpected = true
	}
	if err := rows.Err(); err != nil {
		return VerifyResult{}, evidence.NewStorageError("ledger", "verify_chain", err)
	}
	return VerifyResult{OK: true}, nil
}

// Close releases the underlying database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
