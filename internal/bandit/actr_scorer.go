package bandit

import "github.com/heartcoolman/adaptive-vocab-engine/internal/mastery"

// ScoreActR up-weights review-appropriate arms using the candidate
// word's memory activation profile: a low retrieval probability (due
// for review) favors conservative, high-support arms; a high retrieval
// probability (well retained) favors more aggressive arms, re-using
// internal/mastery's activation function rather than duplicating it.
func ScoreActR(ctx ActRContext, cfg mastery.ActRConfig) [NumArms]float64 {
	var out [NumArms]float64
	_, p := mastery.Activation(ctx.ReviewAgesDays, cfg)

	// p in [0,1]: map directly onto the conservative->aggressive arm axis.
	target := p * float64(NumArms-1)
	for a := 0; a < NumArms; a++ {
		dist := target - float64(a)
		out[a] = -dist * dist
	}
	return out
}
