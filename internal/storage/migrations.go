package storage

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations must stay portable between PostgreSQL and SQLite.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS scans (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	email_id    TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	sender      TEXT NOT NULL DEFAULT '',
	text_hash   TEXT NOT NULL,
	is_spam     BOOLEAN NOT NULL,
	spam_score  DOUBLE PRECISION NOT NULL,
	spam_type   TEXT NOT NULL,
	description TEXT NOT NULL,
	summary     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
CREATE INDEX IF NOT EXISTS idx_scans_text_hash ON scans(text_hash);
`,
	},
}
