package perception

import "github.com/heartcoolman/adaptive-vocab-engine/internal/errs"

// #region dimension
// Dimension is the fixed feature-vector width. FeatureVersion changes
// whenever the layout below changes; a stored model whose version
// disagrees with this one must never be applied (errs.FeatureMismatch).
const (
	Dimension      = 22
	FeatureVersion = 1
)

// #endregion dimension

// #region raw-event
// RawEvent is the caller-supplied description of one learning interaction.
type RawEvent struct {
	UserID           string
	SessionID        string
	WordID           string
	Correct          bool
	ResponseTimeMs   int64
	DwellTimeMs      int64
	PauseCount       int
	SwitchCount      int
	TSMs             int64
	SessionStartTSMs int64   // 0 = unknown, treated as "session just started"
	SelfRating       *float64 // optional session-start motivation self-rating, [-1,1]
}

// Validate checks the fields every event must carry.
func (e RawEvent) Validate() error {
	if e.UserID == "" {
		return errs.New(errs.InvalidEvent, "missing required field: userId")
	}
	if e.TSMs <= 0 {
		return errs.New(errs.InvalidEvent, "missing required field: ts")
	}
	return nil
}

// #endregion raw-event

// #region word-metadata
// WordMetadata is the read-only word descriptor owned by the external
// content service — supplied per call, never written by the Engine.
type WordMetadata struct {
	ID            string
	Length        int
	FrequencyBand int     // 1 (common) .. 5 (rare); 0 = unknown → neutral
	Difficulty    float64 // [0,1]; 0 with no other signal → neutral default applied
	POS           string  // "noun","verb","adj","adv", anything else → "other"
	Novelty       float64 // [0,1], caller-estimated; 0 → neutral default applied
	knownDiff     bool
}

// WithDifficulty returns a copy with an explicit difficulty flag set so
// zero and "unset" are distinguishable.
func (w WordMetadata) WithDifficulty(d float64) WordMetadata {
	w.Difficulty = d
	w.knownDiff = true
	return w
}

// #endregion word-metadata

// #region prior-state
// PriorState is the subset of UserState Perception needs; userstate.State
// satisfies this shape via a small adapter so perception has no import on
// userstate (perception sits below modeling in the pipeline).
type PriorState struct {
	Attention  float64
	Fatigue    float64
	Mem        float64
	Speed      float64
	Motivation float64
}

// #endregion prior-state

// #region outcome-recent-window
// Outcome is one past scored answer, used to build a RecentWindow.
type Outcome struct {
	TSMs           int64
	Correct        bool
	ResponseTimeMs int64
}

// RecentWindow summarizes a bounded trailing window of outcomes.
type RecentWindow struct {
	ErrorRate          float64
	MeanRTMs           float64
	RTTrend            float64 // positive = getting slower
	AccuracyTrend      float64 // positive = improving
	RepeatErrorCount   int
	InteractionDensity float64 // [0,1], recent pause/switch density proxy
}

// #endregion outcome-recent-window

// #region summary
// Summary carries the human-readable per-signal summaries alongside the
// raw vector, for explanations and telemetry.
type Summary struct {
	RecentWindow   RecentWindow
	SessionAgeMs   int64
	ReducedConfidence bool // set when any NaN/Inf input was replaced
}

// #endregion summary
