// Package tracestore persists per-word review history: the raw trace
// internal/mastery's ACT-R activation reads, with old entries rolled
// into a summary rather than dropped once the bounded window fills.
package tracestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// MaxReviews is the bounded retention window (N=200): once a trace holds
// more than this many raw reviews, the oldest entries are folded into
// the summary rather than discarded.
const MaxReviews = 200

// ReviewEvent is one scored review of a word.
type ReviewEvent struct {
	TSMs           int64
	Correct        bool
	ResponseTimeMs int64
}

// WordMemoryTrace is the per-(user, word) review history: a bounded
// window of raw reviews plus a rolling summary of everything older.
type WordMemoryTrace struct {
	UserID              string
	WordID              string
	Reviews             []ReviewEvent
	SummaryCount        int // reviews folded into the summary
	SummaryCorrectCount int
	SummaryMeanRTMs     float64
}

const schema = `
CREATE TABLE IF NOT EXISTS word_memory_traces (
	user_id               TEXT NOT NULL,
	word_id               TEXT NOT NULL,
	reviews_json          TEXT NOT NULL,
	summary_count         INTEGER NOT NULL DEFAULT 0,
	summary_correct_count INTEGER NOT NULL DEFAULT 0,
	summary_mean_rt_ms    REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, word_id)
);
`

// Store owns the word_memory_traces table.
type Store struct {
	db *sql.DB
}

// NewStore wraps a shared *sql.DB and migrates this package's table.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate tracestore schema: %w", err)
	}
	return &Store{db: db}, nil
}

// GetTrace loads one word's trace. A user/word never seen before returns
// an empty trace, not an error — mirroring internal/store.GetUserState's
// cold-start contract.
func (s *Store) GetTrace(userID, wordID string) (WordMemoryTrace, error) {
	var reviewsJSON string
	trace := WordMemoryTrace{UserID: userID, WordID: wordID}
	err := s.db.QueryRow(
		`SELECT reviews_json, summary_count, summary_correct_count, summary_mean_rt_ms FROM word_memory_traces WHERE user_id = ? AND word_id = ?`,
		userID, wordID,
	).Scan(&reviewsJSON, &trace.SummaryCount, &trace.SummaryCorrectCount, &trace.SummaryMeanRTMs)
	if err == sql.ErrNoRows {
		return trace, nil
	}
	if err != nil {
		return WordMemoryTrace{}, fmt.Errorf("get trace %s/%s: %w", userID, wordID, err)
	}
	if err := json.Unmarshal([]byte(reviewsJSON), &trace.Reviews); err != nil {
		return WordMemoryTrace{}, fmt.Errorf("unmarshal reviews %s/%s: %w", userID, wordID, err)
	}
	return trace, nil
}

// GetTraces batch-loads traces for several words in one query, so
// internal/mastery.EvaluateMany can avoid per-word I/O.
func (s *Store) GetTraces(userID string, wordIDs []string) (map[string]WordMemoryTrace, error) {
	out := make(map[string]WordMemoryTrace, len(wordIDs))
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
	query := fmt.Sprintf(
		`SELECT word_id, reviews_json, summary_count, summary_correct_count, summary_mean_rt_ms FROM word_memory_traces WHERE user_id = ? AND word_id IN (%s)`,
		joinPlaceholders(placeholders),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get traces for %s: %w", userID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var wordID, reviewsJSON string
		trace := WordMemoryTrace{UserID: userID}
		if err := rows.Scan(&wordID, &reviewsJSON, &trace.SummaryCount, &trace.SummaryCorrectCount, &trace.SummaryMeanRTMs); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		trace.WordID = wordID
		if err := json.Unmarshal([]byte(reviewsJSON), &trace.Reviews); err != nil {
			return nil, fmt.Errorf("unmarshal reviews for %s: %w", wordID, err)
		}
		out[wordID] = trace
	}
	for _, w := range wordIDs {
		if _, ok := out[w]; !ok {
			out[w] = WordMemoryTrace{UserID: userID, WordID: w}
		}
	}
	return out, rows.Err()
}

// PutTrace upserts a word's trace in full.
func (s *Store) PutTrace(trace WordMemoryTrace) error {
	reviewsJSON, err := json.Marshal(trace.Reviews)
	if err != nil {
		return fmt.Errorf("marshal reviews %s/%s: %w", trace.UserID, trace.WordID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO word_memory_traces (user_id, word_id, reviews_json, summary_count, summary_correct_count, summary_mean_rt_ms)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, word_id) DO UPDATE SET
		   reviews_json = excluded.reviews_json,
		   summary_count = excluded.summary_count,
		   summary_correct_count = excluded.summary_correct_count,
		   summary_mean_rt_ms = excluded.summary_mean_rt_ms`,
		trace.UserID, trace.WordID, string(reviewsJSON), trace.SummaryCount, trace.SummaryCorrectCount, trace.SummaryMeanRTMs,
	)
	return err
}

// AddReview appends one review to a trace, rolling the oldest entry into
// the summary once the window exceeds MaxReviews, then persists it.
func (s *Store) AddReview(userID, wordID string, ev ReviewEvent) error {
	trace, err := s.GetTrace(userID, wordID)
	if err != nil {
		return err
	}
	trace.Reviews = append(trace.Reviews, ev)
	for len(trace.Reviews) > MaxReviews {
		oldest := trace.Reviews[0]
		trace.Reviews = trace.Reviews[1:]
		trace.SummaryCount++
		if oldest.Correct {
			trace.SummaryCorrectCount++
		}
		n := float64(trace.SummaryCount)
		trace.SummaryMeanRTMs += (float64(oldest.ResponseTimeMs) - trace.SummaryMeanRTMs) / n
	}
	return s.PutTrace(trace)
}

func joinPlaceholders(ph []string) string {
	out := ph[0]
	for _, p := range ph[1:] {
		out += "," + p
	}
	return out
}
