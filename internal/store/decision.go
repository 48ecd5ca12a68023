package store

import (
	"fmt"
)

// #region put-decision-record
// PutDecisionRecord appends a decision record. Records are never updated
// or deleted — this table is the audit log.
func (s *Store) PutDecisionRecord(rec DecisionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO decision_records
		 (decision_id, user_id, session_id, word_id, action_index, strategy_json, explanation_json, state_snapshot_json, ts_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DecisionID, rec.UserID, rec.SessionID, rec.WordID, rec.ActionIndex,
		rec.StrategyJSON, rec.ExplanationJSON, rec.StateSnapshotJSON, rec.TSMs,
	)
	if err != nil {
		return fmt.Errorf("put decision record %s: %w", rec.DecisionID, err)
	}
	return nil
}

// #endregion put-decision-record

// #region get-decision-record
// GetDecisionRecord fetches a decision by ID. Returns errs.NotFound-worthy
// sql.ErrNoRows (unwrapped) when absent or expired/pruned.
func (s *Store) GetDecisionRecord(decisionID string) (DecisionRecord, error) {
	var rec DecisionRecord
	err := s.db.QueryRow(
		`SELECT decision_id, user_id, session_id, word_id, action_index, strategy_json, explanation_json, state_snapshot_json, ts_ms
		 FROM decision_records WHERE decision_id = ?`, decisionID,
	).Scan(&rec.DecisionID, &rec.UserID, &rec.SessionID, &rec.WordID, &rec.ActionIndex,
		&rec.StrategyJSON, &rec.ExplanationJSON, &rec.StateSnapshotJSON, &rec.TSMs)
	if err != nil {
		return DecisionRecord{}, err
	}
	return rec, nil
}

// HasLaterDecisionInSession reports whether sessionID has any decision
// record timestamped after afterTSMs, used by the reward function's
// session-completion signal.
func (s *Store) HasLaterDecisionInSession(sessionID string, afterTSMs int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(1) FROM decision_records WHERE session_id = ? AND ts_ms > ?`,
		sessionID, afterTSMs,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count later decisions for session %s: %w", sessionID, err)
	}
	return n > 0, nil
}

// #endregion get-decision-record

// #region feature-vector-crud
// PutFeatureVector inserts the feature vector for a decision, replacing
// any prior record for the same decisionId (there is exactly one live
// record per decisionId).
func (s *Store) PutFeatureVector(rec FeatureVectorRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO feature_vectors (decision_id, user_id, session_id, vector_json, feature_version, ts_ms)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(decision_id) DO UPDATE SET
		   vector_json = excluded.vector_json,
		   feature_version = excluded.feature_version,
		   ts_ms = excluded.ts_ms`,
		rec.DecisionID, rec.UserID, rec.SessionID, rec.VectorJSON, rec.FeatureVersion, rec.TSMs,
	)
	if err != nil {
		return fmt.Errorf("put feature vector %s: %w", rec.DecisionID, err)
	}
	return nil
}

// GetFeatureVector loads the feature vector for a decision. Returns
// sql.ErrNoRows (unwrapped) when no live record exists.
func (s *Store) GetFeatureVector(decisionID string) (FeatureVectorRecord, error) {
	var rec FeatureVectorRecord
	err := s.db.QueryRow(
		`SELECT decision_id, user_id, session_id, vector_json, feature_version, ts_ms
		 FROM feature_vectors WHERE decision_id = ?`, decisionID,
	).Scan(&rec.DecisionID, &rec.UserID, &rec.SessionID, &rec.VectorJSON, &rec.FeatureVersion, &rec.TSMs)
	if err != nil {
		return FeatureVectorRecord{}, err
	}
	return rec, nil
}

// DeleteFeatureVector removes a consumed feature vector record.
func (s *Store) DeleteFeatureVector(decisionID string) error {
	_, err := s.db.Exec(`DELETE FROM feature_vectors WHERE decision_id = ?`, decisionID)
	return err
}

// #endregion feature-vector-crud
