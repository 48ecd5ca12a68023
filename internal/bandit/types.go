// Package bandit implements the Learning layer: per-user LinUCB over a
// discretized action space, combined in an adaptive-weight ensemble with
// Thompson sampling, a cold-start heuristic, and an ACT-R-informed scorer.
package bandit

// NumArms is the size of the discretized action space the Decision
// layer's strategy table indexes into: per-arm LinUCB matrices over a
// small curated action space rather than the full 720-way cross product
// of every strategy-table dimension.
const NumArms = 12

// ArmState is one arm's ridge-regression sufficient statistics, stored
// flattened; the on-disk blob (persist.go) is a 12-byte header followed
// by A row-major float64, then b.
type ArmState struct {
	A []float64 // Dimension*Dimension, row-major, SPD (λI plus rank-1 updates)
	B []float64 // Dimension
}

// LinUCBConfig mirrors internal/config.LinUCBConfig without importing it,
// keeping bandit free of a dependency on the config package.
type LinUCBConfig struct {
	Alpha     float64
	Lambda    float64
	Dimension int
}

// LinUCB is one user's per-arm ridge-regression bandit state.
type LinUCB struct {
	Dimension int
	Alpha     float64
	Lambda    float64
	Arms      [NumArms]ArmState
}

// ThompsonArm is one arm's posterior state. Thompson sampling has no
// separately-tunable parameters beyond the arms it shares with LinUCB.
type ThompsonArm struct {
	// Beta posterior over binarized reward (reward >= 0 treated as success).
	Alpha float64
	Beta  float64
	// Gaussian fallback posterior for continuous reward.
	Mean     float64
	Variance float64
	N        int
}

// Thompson is one user's per-arm Thompson-sampling state.
type Thompson struct {
	Arms [NumArms]ThompsonArm
}

// ColdStart is the deterministic rule-based heuristic active until a user
// accumulates cfg.ColdStartThreshold training events.
type ColdStart struct {
	TrainingEvents int
}

// EnsembleConfig mirrors internal/config.EnsembleConfig.
type EnsembleConfig struct {
	RewardHistorySize  int
	LearningRate       float64
	ColdStartThreshold int
}

// Ensemble combines the four scorers with adaptive exponentiated-gradient
// weights, one instance per user.
type Ensemble struct {
	LinUCB    *LinUCB
	Thompson  *Thompson
	ColdStart *ColdStart

	Weights    [4]float64 // order: linucb, thompson, coldstart, actr
	RewardHist []float64  // bounded, size <= cfg.RewardHistorySize
	cfg        EnsembleConfig
}

// scorerIndex names the fixed scorer ordering used throughout the
// package, so weight-vector indices are self-documenting at call sites.
const (
	scorerLinUCB    = 0
	scorerThompson  = 1
	scorerColdStart = 2
	scorerActR      = 3
)

// ActRContext is what the ACT-R-informed scorer needs per decision (one
// context shared by every arm) to up-weight review-appropriate actions; populated by internal/control
// from internal/mastery without bandit importing control.
type ActRContext struct {
	ReviewAgesDays []float64 // days since each past review of the candidate word
}
