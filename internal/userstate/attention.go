package userstate

import "math"

// attentionWeights is the 8-weight vector w applied to the attention
// feature deviations [rtRatio, pauseRate, switchRate, dwellRatio,
// errorRate, rtVariance, interactionDensity, hesitation], each centered
// on its neutral baseline below. Larger weight = stronger negative pull
// on attention when that signal rises above neutral.
var attentionWeights = [8]float64{
	0.9, // rt ratio above expected
	0.7, // pause rate
	0.5, // switch rate
	0.3, // dwell ratio
	1.1, // error rate
	0.4, // rt variance
	0.6, // interaction density
	0.8, // hesitation
}

// attentionBaselines are the neutral values each signal is centered on
// before weighting, so a nominal event (answering at the expected pace
// with a typical error mix) leaves attention at its resting level rather
// than dragging it down.
var attentionBaselines = [8]float64{
	1.0,  // rt ratio: observed == expected
	0.0,  // pause rate
	0.0,  // switch rate
	0.75, // dwell ratio: ~3s dwell on a 4s horizon
	0.5,  // error rate: the empty-window neutral
	0.0,  // rt variance
	0.0,  // interaction density
	0.4,  // hesitation
}

// attentionBias anchors the resting point: with zero deviation,
// σ(attentionBias) = 0.7, the documented initial attention.
var attentionBias = math.Log(0.7 / 0.3)

// updateAttention computes A_t = β·A_{t-1} + (1-β)·σ(-w·f_A), with f_A
// the deviation of each signal from its neutral baseline.
func updateAttention(prior float64, s Signals, cfg Config) float64 {
	f := [8]float64{
		s.RTRatio, s.PauseRate, s.SwitchRate, s.DwellRatio,
		s.ErrorRate, s.RTVariance, s.InteractionDensity, s.Hesitation,
	}
	var dot float64
	for i, w := range attentionWeights {
		dot += w * (f[i] - attentionBaselines[i])
	}
	raw := sigmoid(attentionBias - dot)
	beta := cfg.AttentionSmoothing
	return beta*prior + (1-beta)*raw
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
