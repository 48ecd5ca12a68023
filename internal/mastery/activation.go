// Package mastery implements the Word-Mastery Evaluator: ACT-R activation
// over a word's review history combined with SRS state and recent
// accuracy into a single learned/not-learned verdict.
package mastery

import "math"

// ActRConfig holds the activation-model tunables.
type ActRConfig struct {
	Decay float64 // d, default 0.5
	Tau   float64 // τ, default -0.5
	S     float64 // s, default 0.3
}

// DefaultActRConfig returns the documented defaults.
func DefaultActRConfig() ActRConfig {
	return ActRConfig{Decay: 0.5, Tau: -0.5, S: 0.3}
}

// BaseLevelActivation computes B = ln(Σ t_j^-d) over reviewAgesDays, the
// days elapsed since each past review (oldest or newest order does not
// matter, the sum is order-independent). Ages are in days because the
// decay/τ/s defaults are calibrated for day-scale spacing: a four-review
// history at {10d, 5d, 2d, 1d} must land near P ≈ 0.99, which
// second-scale ages would collapse to ~0. An empty history has no
// activation history to sum; callers treat that case as "never
// reviewed" before calling in.
func BaseLevelActivation(reviewAgesDays []float64, cfg ActRConfig) float64 {
	var sum float64
	for _, t := range reviewAgesDays {
		if t <= 0 {
			continue // a review "now" contributes no decay-able age; skip rather than divide by zero
		}
		sum += math.Pow(t, -cfg.Decay)
	}
	if sum <= 0 {
		return math.Inf(-1)
	}
	return math.Log(sum)
}

// RetrievalProbability computes P = 1 / (1 + exp(-(B-τ)/s)).
func RetrievalProbability(b float64, cfg ActRConfig) float64 {
	if math.IsInf(b, -1) {
		return 0
	}
	return 1.0 / (1.0 + math.Exp(-(b-cfg.Tau)/cfg.S))
}

// Activation is a convenience wrapper returning both B and P for a
// review history, the shape other packages (the bandit ensemble's
// ACT-R-informed scorer) consume.
func Activation(reviewAgesDays []float64, cfg ActRConfig) (b float64, p float64) {
	b = BaseLevelActivation(reviewAgesDays, cfg)
	p = RetrievalProbability(b, cfg)
	return b, p
}
