// ABOUTME: SQLite database schema for completion storage
// ABOUTME: One row per (user, date, meal slot), versioned via PRAGMA user_version
package sqlite

// Schema creates the base tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS completions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    date TEXT NOT NULL,
    meal_slot TEXT NOT NULL,
    completion TEXT NOT NULL,
    completed_at TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, date, meal_slot)
);

CREATE INDEX IF NOT EXISTS idx_completions_user_date ON completions(user_id, date);
`

// SchemaVersion is the schema version stamped into PRAGMA user_version.
// Bump it together with an upgrade step in DB.migrate.
const SchemaVersion = 1
