package bandit

import (
	"math"
	"math/rand"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/mastery"
)

// NewEnsemble builds a fresh ensemble for a user with uniform scorer
// weights and cold defaults for every sub-learner.
func NewEnsemble(linucbCfg LinUCBConfig, ensembleCfg EnsembleConfig) *Ensemble {
	return &Ensemble{
		LinUCB:    NewLinUCB(linucbCfg),
		Thompson:  NewThompson(),
		ColdStart: NewColdStart(),
		Weights:   [4]float64{0.25, 0.25, 0.25, 0.25},
		cfg:       ensembleCfg,
	}
}

// Select combines all four scorers' per-arm scores with the current
// weights and returns the argmax arm, lowest-index tie-break. Once the
// user has ColdStartThreshold training events the cold-start heuristic
// no longer contributes to the combination.
func (e *Ensemble) Select(x []float64, userAttention, userFatigue float64, actrCtx ActRContext, actrCfg mastery.ActRConfig, rng *rand.Rand) (int, error) {
	_, linucbArmScores, err := e.LinUCB.Select(x)
	if err != nil {
		return 0, err
	}
	thompsonScores := e.Thompson.Score(rng)
	coldStartScores := e.ColdStart.Score(userAttention, userFatigue)
	actrScores := ScoreActR(actrCtx, actrCfg)

	coldStartWeight := e.Weights[scorerColdStart]
	if !e.ColdStart.Active(e.cfg.ColdStartThreshold) {
		coldStartWeight = 0
	}

	combined := [NumArms]float64{}
	for a := 0; a < NumArms; a++ {
		combined[a] = e.Weights[scorerLinUCB]*normalizeScore(linucbArmScores[a]) +
			e.Weights[scorerThompson]*normalizeScore(thompsonScores[a]) +
			coldStartWeight*normalizeScore(coldStartScores[a]) +
			e.Weights[scorerActR]*normalizeScore(actrScores[a])
	}

	best := 0
	bestScore := combined[0]
	for a := 1; a < NumArms; a++ {
		if combined[a] > bestScore {
			best = a
			bestScore = combined[a]
		}
	}
	return best, nil
}

// normalizeScore squashes an unbounded score into (0,1) via a logistic
// so scorers with very different native scales don't dominate the
// weighted combination purely by magnitude.
func normalizeScore(s float64) float64 {
	return 1.0 / (1.0 + math.Exp(-s))
}

// Update applies the observed reward to every sub-learner that tracks
// per-arm state, records it in the bounded reward history, and adjusts
// scorer weights by exponentiated gradient.
func (e *Ensemble) Update(arm int, x []float64, reward float64) {
	if !isFiniteReward(reward) {
		return // reward history is filtered to finite numbers only
	}
	e.LinUCB.Update(arm, x, reward)
	e.Thompson.Update(arm, reward)
	e.ColdStart.RecordTrainingEvent()

	e.RewardHist = append(e.RewardHist, reward)
	if max := e.cfg.RewardHistorySize; max > 0 && len(e.RewardHist) > max {
		e.RewardHist = e.RewardHist[len(e.RewardHist)-max:]
	}

	e.updateWeights(reward)
}

// updateWeights runs one exponentiated-gradient step: w_i ← w_i ·
// exp(η·r_i), then renormalizes onto the simplex. Each scorer's "r_i" is
// the same observed reward: the ensemble has no ground truth for which
// scorer would have chosen differently, so there is no per-scorer
// attribution to apply.
func (e *Ensemble) updateWeights(reward float64) {
	eta := e.cfg.LearningRate
	var sum float64
	for i := range e.Weights {
		e.Weights[i] *= math.Exp(eta * reward)
		sum += e.Weights[i]
	}
	if sum <= 0 || !isFiniteReward(sum) {
		e.Weights = [4]float64{0.25, 0.25, 0.25, 0.25}
		return
	}
	for i := range e.Weights {
		e.Weights[i] /= sum
	}
}

func isFiniteReward(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0)
}

// ResetWeights restores uniform weights, used when a restored weight
// vector is invalid.
func (e *Ensemble) ResetWeights() {
	e.Weights = [4]float64{0.25, 0.25, 0.25, 0.25}
}

func validWeights(w [4]float64) bool {
	var sum float64
	for _, v := range w {
		if !isFiniteReward(v) || v < 0 {
			return false
		}
		sum += v
	}
	return sum > 0.99 && sum < 1.01
}
