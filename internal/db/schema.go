package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS pokemon (
    seq          INTEGER PRIMARY KEY,
    id           TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    rarity       TEXT NOT NULL CHECK (rarity IN ('F', 'E', 'D', 'C', 'B', 'A', 'S', 'S+')),
    type         TEXT NOT NULL,
    attack       INTEGER NOT NULL CHECK (attack BETWEEN 10 AND 100),
    attack_name  TEXT NOT NULL,
    pv           INTEGER NOT NULL CHECK (pv BETWEEN 50 AND 200),
    image_base64 TEXT NOT NULL,
    generated_at DATETIME NOT NULL,
    status       TEXT NOT NULL DEFAULT 'OWNED' CHECK (status IN ('OWNED', 'RESOLD')),
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS balance (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    tokens     INTEGER NOT NULL CHECK (tokens >= 0),
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ledger (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL CHECK (kind IN ('debit', 'refund', 'credit')),
    amount     INTEGER NOT NULL,
    balance    INTEGER NOT NULL,
    pokemon_id TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist,
// then applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return migrate(db)
}
