package bandit

import (
	"database/sql"
	"fmt"
)

// schema owns this package's persistence, created lazily on first use
// rather than centralized in internal/store's core schema: each domain
// package owns its tables via the shared store.DB() handle.
const schema = `
CREATE TABLE IF NOT EXISTS bandit_arms (
	user_id    TEXT NOT NULL,
	arm_index  INTEGER NOT NULL,
	blob       BLOB NOT NULL,
	PRIMARY KEY (user_id, arm_index)
);

CREATE TABLE IF NOT EXISTS bandit_ensemble (
	user_id       TEXT PRIMARY KEY,
	snapshot_json TEXT NOT NULL
);
`

// Store persists LinUCB arm blobs and ensemble snapshots.
type Store struct {
	db *sql.DB
}

// NewStore wraps a shared *sql.DB and migrates this package's tables.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate bandit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// PutArm upserts one arm's encoded blob.
func (s *Store) PutArm(userID string, armIndex int, blob []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO bandit_arms (user_id, arm_index, blob) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, arm_index) DO UPDATE SET blob = excluded.blob`,
		userID, armIndex, blob,
	)
	return err
}

// GetArms loads every persisted arm blob for a user, keyed by arm index.
// A user with no rows yet returns an empty map, not an error.
func (s *Store) GetArms(userID string) (map[int][]byte, error) {
	rows, err := s.db.Query(`SELECT arm_index, blob FROM bandit_arms WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get arms for %s: %w", userID, err)
	}
	defer rows.Close()
	out := make(map[int][]byte)
	for rows.Next() {
		var idx int
		var blob []byte
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, fmt.Errorf("scan arm row: %w", err)
		}
		out[idx] = blob
	}
	return out, rows.Err()
}

// PutEnsembleSnapshot upserts the ensemble's JSON snapshot.
func (s *Store) PutEnsembleSnapshot(userID string, snapshot []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO bandit_ensemble (user_id, snapshot_json) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET snapshot_json = excluded.snapshot_json`,
		userID, string(snapshot),
	)
	return err
}

// GetEnsembleSnapshot loads the ensemble's JSON snapshot. Returns
// sql.ErrNoRows (unwrapped) when no snapshot has been saved yet.
func (s *Store) GetEnsembleSnapshot(userID string) ([]byte, error) {
	var snapshot string
	err := s.db.QueryRow(`SELECT snapshot_json FROM bandit_ensemble WHERE user_id = ?`, userID).Scan(&snapshot)
	if err != nil {
		return nil, err
	}
	return []byte(snapshot), nil
}
