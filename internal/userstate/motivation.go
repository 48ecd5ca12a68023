package userstate

// motivationEMARate is the EMA rate for the signed motivation score; it
// is not an operator-facing tunable, so it stays out of config.
const motivationEMARate = 0.2

// updateMotivation is an EMA of a signed score combining accuracy delta,
// streak effects, and an optional session-start self-rating, clipped to
// [-1,1].
func updateMotivation(prior float64, s Signals) float64 {
	raw := 0.5*s.AccuracyDelta + 0.4*s.StreakEffect
	if s.SelfRating != nil {
		raw = 0.6*raw + 0.4*clipSigned(*s.SelfRating)
	}
	raw = clipSigned(raw)
	return clipSigned(prior + motivationEMARate*(raw-prior))
}
