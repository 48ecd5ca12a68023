package mastery

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS srs_states (
	user_id             TEXT NOT NULL,
	word_id             TEXT NOT NULL,
	mastery_level       INTEGER NOT NULL DEFAULT 0,
	consecutive_correct INTEGER NOT NULL DEFAULT 0,
	ease_factor         REAL NOT NULL DEFAULT 2.5,
	interval_days       REAL NOT NULL DEFAULT 0,
	next_review_ts_ms   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, word_id)
);
`

// Store owns this package's srs_states table.
type Store struct {
	db *sql.DB
}

// NewStore wraps a shared *sql.DB and migrates this package's table.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate mastery schema: %w", err)
	}
	return &Store{db: db}, nil
}

// defaultSRSState is the NEW-state row a never-seen word gets.
func defaultSRSState(userID, wordID string) SRSState {
	return SRSState{
		UserID:     userID,
		WordID:     wordID,
		EaseFactor: DefaultEaseFactor,
		Status:     StatusNew,
	}
}

// GetSRSState loads one word's SRS state. A never-seen word returns the
// NEW-state default, not an error.
func (s *Store) GetSRSState(userID, wordID string) (SRSState, error) {
	row := s.db.QueryRow(
		`SELECT mastery_level, consecutive_correct, ease_factor, interval_days, next_review_ts_ms
		 FROM srs_states WHERE user_id = ? AND word_id = ?`, userID, wordID)
	state := SRSState{UserID: userID, WordID: wordID}
	err := row.Scan(&state.MasteryLevel, &state.ConsecutiveCorrect, &state.EaseFactor, &state.IntervalDays, &state.NextReviewTSMs)
	if err == sql.ErrNoRows {
		return defaultSRSState(userID, wordID), nil
	}
	if err != nil {
		return SRSState{}, fmt.Errorf("get srs state %s/%s: %w", userID, wordID, err)
	}
	state.Status = statusForLevel(state.MasteryLevel)
	return state, nil
}

// GetSRSStates batch-loads SRS state for several words in one query.
func (s *Store) GetSRSStates(userID string, wordIDs []string) (map[string]SRSState, error) {
	out := make(map[string]SRSState, len(wordIDs))
	for _, w := range wordIDs {
		out[w] = defaultSRSState(userID, w)
	}
	if len(wordIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(wordIDs))
	args := make([]interface{}, 0, len(wordIDs)+1)
	args = append(args, userID)
	for i, w := range wordIDs {
		placeholders[i] = "?"
		args = append(args, w)
	}
	query := `SELECT word_id, mastery_level, consecutive_correct, ease_factor, interval_days, next_review_ts_ms
		 FROM srs_states WHERE user_id = ? AND word_id IN (` + joinPH(placeholders) + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get srs states for %s: %w", userID, err)
	}
	defer rows.Close()
	for rows.Next() {
		state := SRSState{UserID: userID}
		if err := rows.Scan(&state.WordID, &state.MasteryLevel, &state.ConsecutiveCorrect, &state.EaseFactor, &state.IntervalDays, &state.NextReviewTSMs); err != nil {
			return nil, fmt.Errorf("scan srs row: %w", err)
		}
		state.Status = statusForLevel(state.MasteryLevel)
		out[state.WordID] = state
	}
	return out, rows.Err()
}

// PutSRSState upserts one word's full SRS row.
func (s *Store) PutSRSState(state SRSState) error {
	_, err := s.db.Exec(
		`INSERT INTO srs_states (user_id, word_id, mastery_level, consecutive_correct, ease_factor, interval_days, next_review_ts_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, word_id) DO UPDATE SET
			mastery_level = excluded.mastery_level,
			consecutive_correct = excluded.consecutive_correct,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			next_review_ts_ms = excluded.next_review_ts_ms`,
		state.UserID, state.WordID, state.MasteryLevel, state.ConsecutiveCorrect,
		state.EaseFactor, state.IntervalDays, state.NextReviewTSMs,
	)
	return err
}

func joinPH(ph []string) string {
	out := ph[0]
	for _, p := range ph[1:] {
		out += "," + p
	}
	return out
}
