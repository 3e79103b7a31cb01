package sqlite

// Schema DDL. Statements are idempotent so a database file keeps its
// entries across attaches.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (scope, key)
);`

	idxEntriesUpdated = `CREATE INDEX IF NOT EXISTS idx_entries_updated ON entries(scope, updated_at);`
)

// Connection pragmas, applied before the schema.
const (
	pragmaJournalWAL  = `PRAGMA journal_mode=WAL;`
	pragmaBusyTimeout = `PRAGMA busy_timeout=5000;`
)

// schemaDDL lists every statement run on Attach, in order.
var schemaDDL = []string{
	pragmaJournalWAL,
	pragmaBusyTimeout,
	createEntries,
	idxEntriesUpdated,
}

// Queries against the entries table. Sizes are measured in bytes to match
// types.EntrySize.
const (
	queryGet   = `SELECT value FROM entries WHERE scope = ? AND key = ?`
	queryKeys  = `SELECT key FROM entries WHERE scope = ? ORDER BY key`
	queryUsage = `SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0)
FROM entries WHERE scope = ?`
	queryUpsert = `INSERT INTO entries (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	queryDelete = `DELETE FROM entries WHERE scope = ? AND key = ?`
	queryClear  = `DELETE FROM entries WHERE scope = ?`
)
