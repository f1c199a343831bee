// Package storage provides evidence.Storage backends: a SQLite-backed store
// for production use and an in-memory store for tests.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"screenrecall/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// EncryptionKey, when non-empty, is expected to be consumed by an
	// encrypted SQLite VFS/extension. When Encrypted is true and this is
	// empty, NewSQLiteStorage fails closed at boot rather than opening an
	// unencrypted store (spec.md §4.1 "encryption... required, failure to
	// unlock fails the process closed at boot").
	Encrypted     bool
	EncryptionKey []byte
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/evidence.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements evidence.Storage using SQLite, grounded on the
// teacher's pkg/evidence/storage/sqlite.go: same WAL/busy-timeout init
// sequence and buildWhereClause/scanRow idiom, generalized from one fixed
// `evidence` table to a polymorphic `records` table.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend. It initializes the
// database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Encrypted && len(config.EncryptionKey) == 0 {
		return nil, evidence.NewStorageError("sqlite", "open",
			fmt.Errorf("evidence store declared encrypted but no encryption key was provided"))
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return evidence.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return evidence.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// PutNew implements evidence.Storage.PutNew: INSERT ... ON CONFLICT DO
// NOTHING, then a read-back-and-compare of content_hash to distinguish
// DuplicateOK from IntegrityFault (spec.md §4.1). The teacher has no
// analogous idempotency contract in its single-writer Store(); this is new
// surface built directly on I1/I2, layered onto the teacher's atomic
// single-statement write.
func (s *SQLiteStorage) PutNew(ctx context.Context, r *evidence.Record) (evidence.PutResult, error) {
	if err := evidence.Validate(r); err != nil {
		return evidence.PutIntegrityFault, err
	}

	inputRefs, _ := json.Marshal(r.InputRefs)
	execRes, err := s.db.ExecContext(ctx, `
		INSERT INTO records (
			record_id, record_type, run_id, ts_utc, monotonic_ns, content_hash,
			producer_id, producer_ver, input_refs, schema_version, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO NOTHING
	`,
		r.RecordID, string(r.RecordType), r.RunID, r.TsUTCMicros, r.MonotonicNs, r.ContentHash,
		r.Producer.PluginID, r.Producer.Version, string(inputRefs), r.SchemaVer, string(r.Payload),
	)
	if err != nil {
		return evidence.PutIntegrityFault, evidence.NewStorageError("sqlite", "put_new", err)
	}

	var existingHash string
	err = s.db.QueryRowContext(ctx, `SELECT content_hash FROM records WHERE record_id = ?`, r.RecordID).Scan(&existingHash)
	if err != nil {
		return evidence.PutIntegrityFault, evidence.NewStorageError("sqlite", "put_new_verify", err)
	}
	if existingHash == r.ContentHash {
		// Either this write just inserted the row, or a byte-identical
		// record already existed; classifyOutcome tells the two apart.
		return s.classifyOutcome(execRes)
	}
	return evidence.PutIntegrityFault, evidence.NewIntegrityFaultError(r.RecordID, existingHash, r.ContentHash)
}

// classifyOutcome distinguishes a fresh insert from a byte-identical repeat
// by the INSERT's affected-row count.
func (s *SQLiteStorage) classifyOutcome(res sql.Result) (evidence.PutResult, error) {
	count, err := res.RowsAffected()
	if err != nil {
		return evidence.PutIntegrityFault, evidence.NewStorageError("sqlite", "put_new_classify", err)
	}
	// ON CONFLICT DO NOTHING inserts no row when record_id already existed.
	if count == 1 {
		return evidence.PutOK, nil
	}
	return evidence.PutDuplicateOK, nil
}

// Get implements evidence.Storage.Get.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*evidence.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM records WHERE record_id = ?`, id)
	rec, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, evidence.NewStorageError("sqlite", "get", err)
	}
	return rec, true, nil
}

const selectColumns = `record_id, record_type, run_id, ts_utc, monotonic_ns, content_hash, producer_id, producer_ver, input_refs, schema_version, payload`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRow(row rowScanner) (*evidence.Record, error) {
	var rec evidence.Record
	var recordType, inputRefs, payload string
	var producerID, producerVer string

	err := row.Scan(
		&rec.RecordID, &recordType, &rec.RunID, &rec.TsUTCMicros, &rec.MonotonicNs, &rec.ContentHash,
		&producerID, &producerVer, &inputRefs, &rec.SchemaVer, &payload,
	)
	if err != nil {
		return nil, err
	}
	rec.RecordType = evidence.RecordType(recordType)
	rec.Producer = evidence.Producer{PluginID: producerID, Version: producerVer}
	rec.Payload = []byte(payload)
	if inputRefs != "" {
		json.Unmarshal([]byte(inputRefs), &rec.InputRefs)
	}
	return &rec, nil
}

// Scan implements evidence.Storage.Scan, reusing the teacher's
// buildWhereClause + ORDER BY idiom from sqlite.go.
func (s *SQLiteStorage) Scan(ctx context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	sqlQuery, args := buildScanQuery(q)
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "scan", err)
	}
	defer rows.Close()

	var records []*evidence.Record
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "scan", err)
	}
	return records, nil
}

// ScanStream implements evidence.Storage.ScanStream, adapted from the
// teacher's QueryStream channel-streaming idiom.
func (s *SQLiteStorage) ScanStream(ctx context.Context, q *evidence.Query) (<-chan *evidence.Record, <-chan error) {
	recordsCh := make(chan *evidence.Record, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := buildScanQuery(q)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- evidence.NewStorageError("sqlite", "scan_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			rec, err := scanRow(rows)
			if err != nil {
				errCh <- evidence.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- rec:
			}
		}
		if err := rows.Err(); err != nil {
			errCh <- evidence.NewStorageError("sqlite", "scan_stream", err)
		}
	}()

	return recordsCh, errCh
}

// Count implements evidence.Storage.Count.
func (s *SQLiteStorage) Count(ctx context.Context, q *evidence.Query) (int, error) {
	where, args := buildWhereClause(q)
	sqlQuery := "SELECT COUNT(*) FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	var count int
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

func buildScanQuery(q *evidence.Query) (string, []interface{}) {
	where, args := buildWhereClause(q)
	sqlQuery := "SELECT " + selectColumns + " FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	order := "ASC"
	if strings.EqualFold(q.SortOrder, "desc") {
		order = "DESC"
	}
	sqlQuery += fmt.Sprintf(" ORDER BY ts_utc %s, record_id %s", order, order)

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}
	return sqlQuery, args
}

// buildWhereClause builds a SQL WHERE clause from query filters, grounded on
// the teacher's sqlite.go buildWhereClause (dynamic AND-joined conditions).
func buildWhereClause(q *evidence.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(q.RecordTypes) > 0 {
		placeholders := make([]string, len(q.RecordTypes))
		for i, t := range q.RecordTypes {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, fmt.Sprintf("record_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if !q.Range.Start.IsZero() {
		conditions = append(conditions, "ts_utc >= ?")
		args = append(args, q.Range.Start.UnixMicro())
	}
	if !q.Range.End.IsZero() {
		conditions = append(conditions, "ts_utc <= ?")
		args = append(args, q.Range.End.UnixMicro())
	}
	if q.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, q.RunID)
	}
	if q.InputRef != "" {
		conditions = append(conditions, "input_refs LIKE ?")
		args = append(args, "%\""+q.InputRef+"\"%")
	}

	return strings.Join(conditions, " AND "), args
}
