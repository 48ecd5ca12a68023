package decision

// GuardrailInput is the narrow slice of UserState decision needs,
// keeping this package free of an import on internal/userstate — the
// same layering internal/perception uses relative to userstate.
type GuardrailInput struct {
	Attention  float64
	Fatigue    float64
	Motivation float64
}

// Map applies the action→strategy table, then the four guardrail rules
// in a fixed order (fatigue-high, fatigue-mid, motivation-low,
// attention-low), recording which fired. reducedConfidence
// tags the explanation when Perception had to recover non-finite inputs;
// it never changes the strategy itself.
func Map(actionIndex int, u GuardrailInput, reducedConfidence bool) (Strategy, Explanation) {
	strategy := StrategyForAction(actionIndex)
	var fired []FiredRule

	// Rule 1: fatigue high.
	if u.Fatigue > 0.8 {
		strategy.SuggestRest = true
		strategy.BatchSize = minInt(strategy.BatchSize, 5)
		strategy.HintLevel = maxInt(strategy.HintLevel, 1)
		fired = append(fired, FiredRule{Name: "fatigue_high", Reason: "fatigue > 0.8"})
	} else if u.Fatigue > 0.6 {
		// Rule 2: fatigue mid, the 0.6 < F <= 0.8 band (mutually
		// exclusive with rule 1).
		strategy.Difficulty = clampDifficulty(strategy.Difficulty, difficultyMid)
		strategy.BatchSize = minInt(strategy.BatchSize, 8)
		fired = append(fired, FiredRule{Name: "fatigue_mid", Reason: "0.6 < fatigue <= 0.8"})
	}

	// Rule 3: motivation low.
	if u.Motivation < -0.5 {
		strategy.Difficulty = difficultyEasy
		strategy.HintLevel = maxInt(strategy.HintLevel, 1)
		strategy.NewRatio = minFloat(strategy.NewRatio, 0.2)
		fired = append(fired, FiredRule{Name: "motivation_low", Reason: "motivation < -0.5"})
	}

	// Rule 4: attention low.
	if u.Attention < 0.3 {
		strategy.BatchSize = minInt(strategy.BatchSize, 5)
		strategy.HintLevel = maxInt(strategy.HintLevel, 1)
		fired = append(fired, FiredRule{Name: "attention_low", Reason: "attention < 0.3"})
	}

	explanation := Explanation{
		ActionIndex:       actionIndex,
		Strategy:          strategy,
		FiredRules:        fired,
		ReducedConfidence: reducedConfidence,
	}
	return strategy, explanation
}

// clampDifficulty caps difficulty at (or below) the given ceiling on
// the easy<mid<hard ordering, never raising it.
func clampDifficulty(current, ceiling string) string {
	if difficultyRank[current] > difficultyRank[ceiling] {
		return ceiling
	}
	return current
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
