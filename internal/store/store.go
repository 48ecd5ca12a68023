// Package store is the Engine's relational persistence layer: user state,
// bandit model blobs, decision records, feature vectors, and the reward
// queue all live in one WAL-mode SQLite database, accessed with
// row-level primary-key writes only.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// #region schema
const coreSchema = `
CREATE TABLE IF NOT EXISTS user_states (
	user_id    TEXT PRIMARY KEY,
	attention  REAL NOT NULL,
	fatigue    REAL NOT NULL,
	mem        REAL NOT NULL,
	speed      REAL NOT NULL,
	stability  REAL NOT NULL,
	motivation REAL NOT NULL,
	confidence REAL NOT NULL,
	ts_ms      INTEGER NOT NULL,
	last_session_end_ms INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS decision_records (
	decision_id     TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	session_id      TEXT NOT NULL,
	word_id         TEXT NOT NULL DEFAULT '',
	action_index    INTEGER NOT NULL,
	strategy_json   TEXT NOT NULL,
	explanation_json TEXT NOT NULL,
	state_snapshot_json TEXT NOT NULL,
	ts_ms           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decision_records_user ON decision_records(user_id);
CREATE INDEX IF NOT EXISTS idx_decision_records_session ON decision_records(session_id, ts_ms);

CREATE TABLE IF NOT EXISTS feature_vectors (
	decision_id     TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	session_id      TEXT NOT NULL,
	vector_json     TEXT NOT NULL,
	feature_version INTEGER NOT NULL,
	ts_ms           INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reward_queue (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	decision_id     TEXT NOT NULL,
	due_ts_ms       INTEGER NOT NULL,
	reward          REAL,
	status          TEXT NOT NULL,
	attempt         INTEGER NOT NULL DEFAULT 0,
	idempotency_key TEXT NOT NULL UNIQUE,
	last_error      TEXT,
	applied         INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reward_queue_due ON reward_queue(status, due_ts_ms);
CREATE INDEX IF NOT EXISTS idx_reward_queue_decision ON reward_queue(decision_id);

CREATE TABLE IF NOT EXISTS telemetry_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	user_id    TEXT,
	fields_json TEXT,
	created_at_ms INTEGER NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store owns the shared *sql.DB for all Engine persistence.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// Open opens (or creates) the SQLite database at path and migrates the
// core schema. Sub-stores (bandit, tracestore, mastery's SRS table) create
// their own tables lazily via DB().
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}
	if _, err := db.Exec(coreSchema); err != nil {
		return nil, fmt.Errorf("migrate core schema: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region accessors
func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying *sql.DB for use by sibling persistence
// packages (bandit, tracestore) that own additional tables.
func (s *Store) DB() *sql.DB { return s.db }

// #endregion accessors
