// Package decision maps a chosen bandit arm to strategy parameters and
// applies the fixed guardrail rules that override them.
package decision

// Strategy is the tuple of session parameters handed back to the
// caller, before or after guardrail overrides.
type Strategy struct {
	IntervalScale float64 // one of {0.5, 0.8, 1.0, 1.2, 1.5}
	NewRatio      float64 // one of {0.1, 0.2, 0.3, 0.4}
	Difficulty    string  // "easy" | "mid" | "hard"
	BatchSize     int     // one of {5, 8, 12, 16}
	HintLevel     int     // one of {0, 1, 2}
	SuggestRest   bool
}

// FiredRule records one guardrail that changed the strategy, in the
// fixed evaluation order so explanations are reproducible.
type FiredRule struct {
	Name   string
	Reason string
}

// Explanation is the short structured record kept with the decision: the
// chosen arm, the final strategy, the guardrail list and the
// reduced-confidence flag. It carries no per-factor contribution
// breakdown.
type Explanation struct {
	ActionIndex       int
	Strategy          Strategy
	FiredRules        []FiredRule
	ReducedConfidence bool
}

const (
	difficultyEasy = "easy"
	difficultyMid  = "mid"
	difficultyHard = "hard"
)

var difficultyRank = map[string]int{difficultyEasy: 0, difficultyMid: 1, difficultyHard: 2}
