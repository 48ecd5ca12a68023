package decision

// actionTable is the fixed action-index → strategy mapping, curated
// over the 12 arms internal/bandit discretizes the action space into
// rather than the full cross product of every parameter dimension.
// Rows are ordered conservative (low intensity, high
// support) to aggressive (high intensity, low support), matching the
// ordering internal/bandit's cold-start heuristic and ACT-R scorer
// assume.
var actionTable = [12]Strategy{
	{IntervalScale: 0.5, NewRatio: 0.1, Difficulty: difficultyEasy, BatchSize: 5, HintLevel: 2},
	{IntervalScale: 0.5, NewRatio: 0.1, Difficulty: difficultyEasy, BatchSize: 5, HintLevel: 1},
	{IntervalScale: 0.8, NewRatio: 0.2, Difficulty: difficultyEasy, BatchSize: 8, HintLevel: 1},
	{IntervalScale: 0.8, NewRatio: 0.2, Difficulty: difficultyMid, BatchSize: 8, HintLevel: 1},
	{IntervalScale: 1.0, NewRatio: 0.2, Difficulty: difficultyMid, BatchSize: 8, HintLevel: 1},
	{IntervalScale: 1.0, NewRatio: 0.3, Difficulty: difficultyMid, BatchSize: 12, HintLevel: 0},
	{IntervalScale: 1.0, NewRatio: 0.3, Difficulty: difficultyMid, BatchSize: 12, HintLevel: 0},
	{IntervalScale: 1.2, NewRatio: 0.3, Difficulty: difficultyMid, BatchSize: 12, HintLevel: 0},
	{IntervalScale: 1.2, NewRatio: 0.4, Difficulty: difficultyHard, BatchSize: 12, HintLevel: 0},
	{IntervalScale: 1.5, NewRatio: 0.4, Difficulty: difficultyHard, BatchSize: 16, HintLevel: 0},
	{IntervalScale: 1.5, NewRatio: 0.4, Difficulty: difficultyHard, BatchSize: 16, HintLevel: 0},
	{IntervalScale: 1.5, NewRatio: 0.4, Difficulty: difficultyHard, BatchSize: 16, HintLevel: 0},
}

// StrategyForAction returns a copy of the table row for actionIndex.
// Out-of-range indices clamp to the nearest valid row rather than
// panicking — a defensive bound since the bandit layer is the only
// caller and is trusted to stay in range, but action indices cross a
// package boundary so callers never get a panic for free.
func StrategyForAction(actionIndex int) Strategy {
	if actionIndex < 0 {
		actionIndex = 0
	}
	if actionIndex >= len(actionTable) {
		actionIndex = len(actionTable) - 1
	}
	return actionTable[actionIndex]
}
