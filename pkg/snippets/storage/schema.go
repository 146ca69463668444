package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the snippet tables. Times are Unix nanoseconds so both
// SQLite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS snippets (
    id TEXT NOT NULL UNIQUE,
    name TEXT PRIMARY KEY,
    owner TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    last_used_at INTEGER,
    uses INTEGER NOT NULL DEFAULT 0,

    -- max(updated_at, last_used_at), kept in sync for retention queries
    last_activity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snippets_owner ON snippets(owner);
CREATE INDEX IF NOT EXISTS idx_snippets_last_activity ON snippets(last_activity);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	upsertSnippet = `
INSERT INTO snippets (id, name, owner, source, created_at, updated_at, last_used_at, uses, last_activity)
VALUES (?, ?, ?, ?, ?, ?, NULL, 0, ?)
ON CONFLICT(name) DO UPDATE SET
    owner = excluded.owner,
    source = excluded.source,
    updated_at = excluded.updated_at,
    last_activity = MAX(snippets.last_activity, excluded.last_activity);
`

	selectSnippet = `
SELECT id, name, owner, source, created_at, updated_at, last_used_at, uses
FROM snippets WHERE name = ?;
`

	listSnippets = `
SELECT id, name, owner, source, created_at, updated_at, last_used_at, uses
FROM snippets WHERE (? = '' OR owner = ?)
ORDER BY name LIMIT ? OFFSET ?;
`

	touchSnippet = `
UPDATE snippets SET
    last_used_at = ?,
    uses = uses + 1,
    last_activity = MAX(last_activity, ?)
WHERE name = ?;
`

	deleteSnippet = `DELETE FROM snippets WHERE name = ?;`

	countSnippets = `SELECT COUNT(*) FROM snippets;`

	deleteUnusedSince = `DELETE FROM snippets WHERE last_activity < ?;`

	deleteOldest = `
DELETE FROM snippets WHERE name NOT IN (
    SELECT name FROM snippets ORDER BY last_activity DESC, name LIMIT ?
);
`
)
