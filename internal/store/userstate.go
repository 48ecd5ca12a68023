package store

import (
	"database/sql"
	"fmt"
)

// #region get-user-state
// GetUserState loads a user's persisted state row. Returns sql.ErrNoRows
// (unwrapped) when the user has never been seen; callers treat that as
// "use the cold-start default", not an error.
func (s *Store) GetUserState(userID string) (UserStateRow, error) {
	var row UserStateRow
	row.UserID = userID
	err := s.db.QueryRow(
		`SELECT attention, fatigue, mem, speed, stability, motivation, confidence, ts_ms, last_session_end_ms
		 FROM user_states WHERE user_id = ?`, userID,
	).Scan(&row.Attention, &row.Fatigue, &row.Mem, &row.Speed, &row.Stability,
		&row.Motivation, &row.Confidence, &row.TSMs, &row.LastSessionEndMs)
	if err != nil {
		return UserStateRow{}, err
	}
	return row, nil
}

// #endregion get-user-state

// #region put-user-state
// PutUserState upserts a user's state row atomically.
func (s *Store) PutUserState(row UserStateRow) error {
	_, err := s.db.Exec(
		`INSERT INTO user_states (user_id, attention, fatigue, mem, speed, stability, motivation, confidence, ts_ms, last_session_end_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   attention = excluded.attention,
		   fatigue = excluded.fatigue,
		   mem = excluded.mem,
		   speed = excluded.speed,
		   stability = excluded.stability,
		   motivation = excluded.motivation,
		   confidence = excluded.confidence,
		   ts_ms = excluded.ts_ms,
		   last_session_end_ms = excluded.last_session_end_ms`,
		row.UserID, row.Attention, row.Fatigue, row.Mem, row.Speed, row.Stability,
		row.Motivation, row.Confidence, row.TSMs, row.LastSessionEndMs,
	)
	if err != nil {
		return fmt.Errorf("put user state %s: %w", row.UserID, err)
	}
	return nil
}

// #endregion put-user-state

// IsNoRows reports whether err is the "no such row" sentinel, so callers
// outside database/sql don't need to import it just for this one check.
func IsNoRows(err error) bool { return err == sql.ErrNoRows }
