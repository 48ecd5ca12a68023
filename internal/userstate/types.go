package userstate

// #region state
// State is the persisted per-user model the four sub-models update in
// sequence. All components are bounded; Confidence decays with elapsed
// time rather than being set directly by any sub-model.
type State struct {
	UserID           string
	Attention        float64 // [0,1], initial 0.7
	Fatigue          float64 // [0,1]
	Mem              float64 // [0,1]
	Speed            float64 // [0,1]
	Stability        float64 // [0,1]
	Motivation       float64 // [-1,1]
	Confidence       float64 // [0,1]
	TS               int64   // ms, monotonic
	LastSessionEndMs int64   // ms, 0 = unknown/no prior session
}

// Default returns the cold-start state for a user never seen before.
func Default(userID string) State {
	return State{
		UserID:     userID,
		Attention:  0.7,
		Fatigue:    0,
		Mem:        0.5,
		Speed:      0.5,
		Stability:  0.5,
		Motivation: 0,
		Confidence: 0,
	}
}

// #endregion state

// #region signals
// Signals carries the derived per-event inputs the four sub-models need,
// already reduced by internal/control from the raw event and
// Perception's recent window — userstate has no dependency on
// perception's raw types, only this shape.
type Signals struct {
	RTRatio            float64 // observed RT / expected RT, 1.0 = as expected
	PauseRate          float64
	SwitchRate         float64
	DwellRatio         float64
	ErrorRate          float64
	RTVariance         float64
	InteractionDensity float64
	Hesitation         float64

	ErrorTrend   float64 // positive = getting worse
	RTIncrease   float64 // positive = slowing down
	RepeatErrors float64 // normalized count, [0,1]

	Correct       bool
	AccuracyDelta float64 // signed recent-accuracy change
	StreakEffect  float64 // signed, positive on winning streaks
	SelfRating    *float64

	LowVarianceHighAccuracy bool // session-level signal feeding Stability

	Now              int64 // event ts, ms
	LastSessionEndMs int64 // 0 = unknown
}

// #endregion signals

// #region trace
// ComponentTrace records each sub-model's before/after value for a single
// Advance call, returned alongside the new state. internal/control does
// not attach it to the decision explanation.
type ComponentTrace struct {
	AttentionBefore, AttentionAfter   float64
	FatigueBefore, FatigueAfter       float64
	MemBefore, MemAfter               float64
	SpeedBefore, SpeedAfter           float64
	StabilityBefore, StabilityAfter   float64
	MotivationBefore, MotivationAfter float64
	ConfidenceBefore, ConfidenceAfter float64
}

// #endregion trace

// #region config
// Config holds the tunable parameters for the four sub-models, sourced
// from internal/config at startup.
type Config struct {
	AttentionSmoothing float64 // β, default 0.7

	FatigueK            float64 // k, default 0.01
	FatigueSessionGapMs int64   // default 300000 (5min)
	FatigueLongBreakMs  int64   // default configurable, e.g. 3h

	FatigueErrorTrendWeight float64 // β in F_base, default 0.5
	FatigueRTIncreaseWeight float64 // γ in F_base, default 0.3
	FatigueRepeatWeight     float64 // δ in F_base, default 0.2

	ProfilerRate float64 // EMA rate for mem/speed/stability, default 0.05

	ConfidenceDecayPerMs float64 // default small, e.g. 1e-7 (~ decays to 0 over ~hours of silence)
}

// DefaultConfig returns the documented model defaults.
func DefaultConfig() Config {
	return Config{
		AttentionSmoothing:      0.7,
		FatigueK:                0.01,
		FatigueSessionGapMs:     300_000,
		FatigueLongBreakMs:      3 * 60 * 60 * 1000,
		FatigueErrorTrendWeight: 0.5,
		FatigueRTIncreaseWeight: 0.3,
		FatigueRepeatWeight:     0.2,
		ProfilerRate:            0.05,
		ConfidenceDecayPerMs:    1e-7,
	}
}

// #endregion config
