package store

import (
	"database/sql"
	"fmt"
)

// #region enqueue
// EnqueueReward inserts a new PENDING reward queue entry. IdempotencyKey
// collisions (re-enqueuing the same decision) are treated as success —
// the existing row is left untouched.
func (s *Store) EnqueueReward(e RewardQueueEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO reward_queue (id, user_id, decision_id, due_ts_ms, reward, status, attempt, idempotency_key, last_error, applied)
		 VALUES (?, ?, ?, ?, NULL, ?, 0, ?, NULL, 0)
		 ON CONFLICT(idempotency_key) DO NOTHING`,
		e.ID, e.UserID, e.DecisionID, e.DueTSMs, string(StatusPending), e.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("enqueue reward %s: %w", e.DecisionID, err)
	}
	return nil
}

// #endregion enqueue

// #region claim-due
// ClaimDue atomically transitions up to limit PENDING entries with
// due_ts_ms <= now into PROCESSING via a per-row CAS on status, and
// returns the claimed rows. Safe to call concurrently from multiple
// sweeper goroutines/processes: each row is claimed by at most one caller.
func (s *Store) ClaimDue(now int64, limit int) ([]RewardQueueEntry, error) {
	rows, err := s.db.Query(
		`SELECT id FROM reward_queue WHERE status = ? AND due_ts_ms <= ? ORDER BY due_ts_ms ASC LIMIT ?`,
		string(StatusPending), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select due rewards: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan due reward id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var claimed []RewardQueueEntry
	for _, id := range ids {
		res, err := s.db.Exec(
			`UPDATE reward_queue SET status = ? WHERE id = ? AND status = ?`,
			string(StatusProcessing), id, string(StatusPending),
		)
		if err != nil {
			return nil, fmt.Errorf("claim reward %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil || n == 0 {
			continue // lost the CAS race to another claimant
		}
		entry, err := s.GetRewardEntry(id)
		if err != nil {
			continue
		}
		claimed = append(claimed, entry)
	}
	return claimed, nil
}

// #endregion claim-due

// #region get
func (s *Store) GetRewardEntry(id string) (RewardQueueEntry, error) {
	var e RewardQueueEntry
	var reward sql.NullFloat64
	var lastErr sql.NullString
	var status string
	var applied int
	err := s.db.QueryRow(
		`SELECT id, user_id, decision_id, due_ts_ms, reward, status, attempt, idempotency_key, last_error, applied
		 FROM reward_queue WHERE id = ?`, id,
	).Scan(&e.ID, &e.UserID, &e.DecisionID, &e.DueTSMs, &reward, &status, &e.Attempt, &e.IdempotencyKey, &lastErr, &applied)
	if err != nil {
		return RewardQueueEntry{}, err
	}
	e.Status = RewardStatus(status)
	e.Applied = applied != 0
	if reward.Valid {
		v := reward.Float64
		e.Reward = &v
	}
	if lastErr.Valid {
		e.LastError = lastErr.String
	}
	return e, nil
}

// GetRewardByDecision finds the (at most one) reward queue entry for a
// decisionId, used for idempotency checks on re-delivery.
func (s *Store) GetRewardByDecision(decisionID string) (RewardQueueEntry, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM reward_queue WHERE decision_id = ? LIMIT 1`, decisionID).Scan(&id)
	if err != nil {
		return RewardQueueEntry{}, err
	}
	return s.GetRewardEntry(id)
}

// #endregion get

// #region transitions
// MarkDone records the realised reward and sets status DONE, applied=1.
// A second call with the same reward is idempotent at the storage layer;
// the bandit-update idempotency itself is enforced by the caller checking
// Applied before mutating (A, b).
func (s *Store) MarkDone(id string, reward float64) error {
	_, err := s.db.Exec(
		`UPDATE reward_queue SET status = ?, reward = ?, applied = 1 WHERE id = ?`,
		string(StatusDone), reward, id,
	)
	return err
}

// MarkFailed increments attempt and records lastErr. If attempt has now
// reached maxAttempts the entry transitions straight to EXPIRED instead
// of FAILED, matching the documented backoff-then-expire policy.
func (s *Store) MarkFailed(id string, attempt int, maxAttempts int, lastErr string) error {
	status := StatusFailed
	if attempt >= maxAttempts {
		status = StatusExpired
	}
	_, err := s.db.Exec(
		`UPDATE reward_queue SET status = ?, attempt = ?, last_error = ? WHERE id = ?`,
		string(status), attempt, lastErr, id,
	)
	return err
}

// Requeue moves a FAILED entry back to PENDING with a new due time
// (exponential backoff), for the sweeper's retry pass.
func (s *Store) Requeue(id string, newDueTSMs int64) error {
	_, err := s.db.Exec(
		`UPDATE reward_queue SET status = ?, due_ts_ms = ? WHERE id = ? AND status = ?`,
		string(StatusPending), newDueTSMs, id, string(StatusFailed),
	)
	return err
}

// #endregion transitions
