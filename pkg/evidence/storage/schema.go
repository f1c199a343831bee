package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evidence database schema.
// Generalized from the teacher's fixed `evidence` table (one row per LLM
// request) to a polymorphic `records` table keyed by record_id, with the
// type-specific shape held in a JSON payload column — see pkg/evidence.Record.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
    record_id     TEXT PRIMARY KEY,
    record_type   TEXT NOT NULL,
    run_id        TEXT NOT NULL,
    ts_utc        INTEGER NOT NULL,
    monotonic_ns  INTEGER NOT NULL,
    content_hash  TEXT NOT NULL,
    producer_id   TEXT NOT NULL,
    producer_ver  TEXT NOT NULL,
    input_refs    TEXT,
    schema_version INTEGER NOT NULL,
    payload       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_type_ts ON records(record_type, ts_utc);
CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id);
CREATE INDEX IF NOT EXISTS idx_records_ts ON records(ts_utc);
`

// InsertSchemaVersion inserts the schema version into the schema_version
// table, idempotently.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
