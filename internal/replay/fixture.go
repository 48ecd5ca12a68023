// Package replay runs a recorded event stream through a real Engine
// deterministically, for audits and end-to-end fixtures: same fixture,
// same seed, same decisions.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string               `json:"description"`
	Seed        int64                `json:"seed"`
	Events      []FixtureEvent       `json:"events"`
	Expected    []FixtureExpectation `json:"expected"`
}

// FixtureEvent mirrors one raw learning event plus the word metadata
// the caller would supply alongside it.
type FixtureEvent struct {
	UserID         string  `json:"user_id"`
	SessionID      string  `json:"session_id"`
	WordID         string  `json:"word_id"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	DwellTimeMs    int64   `json:"dwell_time_ms"`
	PauseCount     int     `json:"pause_count"`
	SwitchCount    int     `json:"switch_count"`
	TSMs           int64   `json:"ts_ms"`
	SessionStartMs int64   `json:"session_start_ms"`
	WordLength     int     `json:"word_length"`
	WordFreqBand   int     `json:"word_freq_band"`
	WordDifficulty float64 `json:"word_difficulty"`
	WordPOS        string  `json:"word_pos"`
}

// FixtureExpectation is a property check against one replayed event's
// decision, by event index. Nil fields are not checked — expectations
// state properties (guardrail outcomes, bounds), not exact arm indices,
// so fixtures survive model tuning.
type FixtureExpectation struct {
	EventIndex       int      `json:"event_index"`
	MaxBatchSize     *int     `json:"max_batch_size,omitempty"`
	MaxDifficulty    *string  `json:"max_difficulty,omitempty"`
	SuggestRest      *bool    `json:"suggest_rest,omitempty"`
	FiredRuleNames   []string `json:"fired_rule_names,omitempty"`
	MaxFatigue       *float64 `json:"max_fatigue,omitempty"`
	MinFatigue       *float64 `json:"min_fatigue,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	for i, e := range f.Events {
		if e.UserID == "" || e.TSMs <= 0 {
			return nil, fmt.Errorf("fixture %s: event %d missing user_id or ts_ms", path, i)
		}
	}
	return &f, nil
}

// ToRawEvent converts a fixture event to the perception input shape.
func (e *FixtureEvent) ToRawEvent() perception.RawEvent {
	return perception.RawEvent{
		UserID:           e.UserID,
		SessionID:        e.SessionID,
		WordID:           e.WordID,
		Correct:          e.Correct,
		ResponseTimeMs:   e.ResponseTimeMs,
		DwellTimeMs:      e.DwellTimeMs,
		PauseCount:       e.PauseCount,
		SwitchCount:      e.SwitchCount,
		TSMs:             e.TSMs,
		SessionStartTSMs: e.SessionStartMs,
	}
}

// ToWordMetadata converts a fixture event's word fields.
func (e *FixtureEvent) ToWordMetadata() perception.WordMetadata {
	w := perception.WordMetadata{
		ID:            e.WordID,
		Length:        e.WordLength,
		FrequencyBand: e.WordFreqBand,
		POS:           e.WordPOS,
	}
	if e.WordDifficulty > 0 {
		w = w.WithDifficulty(e.WordDifficulty)
	}
	return w
}

// #endregion fixture-loader
