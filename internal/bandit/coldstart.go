package bandit

// Arm indices are ordered by convention from most conservative (0: low
// intensity, high support) to most aggressive (NumArms-1: high
// intensity, low support) — see internal/decision's strategy table; both
// this heuristic and the ACT-R scorer rely on that ordering.

// NewColdStart returns a cold-start heuristic with no training events
// observed yet.
func NewColdStart() *ColdStart {
	return &ColdStart{TrainingEvents: 0}
}

// Active reports whether the cold-start heuristic should still influence
// selection for this user.
func (c *ColdStart) Active(threshold int) bool {
	return c.TrainingEvents < threshold
}

// Score returns a deterministic rule-based preference over arms, keyed
// off the coarse attention/fatigue state: high fatigue or low attention
// pulls the score toward conservative arms, otherwise it favors
// moderate-to-aggressive arms so a brand-new user isn't stuck at the
// easiest setting forever.
func (c *ColdStart) Score(attention, fatigue float64) [NumArms]float64 {
	var out [NumArms]float64
	target := float64(NumArms-1) / 2.0 // moderate arm by default
	switch {
	case fatigue > 0.6:
		target = 1
	case attention < 0.4:
		target = 2
	case attention > 0.75 && fatigue < 0.2:
		target = float64(NumArms - 2)
	}
	for a := 0; a < NumArms; a++ {
		dist := target - float64(a)
		out[a] = -dist * dist // peaked around target, penalizes distance quadratically
	}
	return out
}

// RecordTrainingEvent increments the observed-event counter; called once
// per applied reward (from Ensemble.Update) regardless of whether the
// heuristic was active.
func (c *ColdStart) RecordTrainingEvent() {
	c.TrainingEvents++
}
