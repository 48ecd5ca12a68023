package userstate

import "math"

// updateFatigue implements the session-gap-aware fatigue model.
// Recovery (long-gap) and in-session decay never compute
// over the same interval: recovery fires at most once per gap, and the
// decay window is capped at SESSION_GAP so it can never reach back across
// a recovery point.
func updateFatigue(prior float64, lastUpdateTSMs int64, s Signals, cfg Config) float64 {
	now := s.Now
	lastSessionEnd := s.LastSessionEndMs
	gapMs := cfg.FatigueSessionGapMs

	baseline := prior
	if lastSessionEnd > 0 && now-lastSessionEnd >= gapMs {
		baseline = recoveryModel(prior, now-lastSessionEnd, cfg)
		lastUpdateTSMs = now // reset in-session clock
	}

	breakMinutes := 0.0
	if lastUpdateTSMs > 0 && now > lastUpdateTSMs {
		breakMinutes = math.Min(float64(now-lastUpdateTSMs)/60000.0, float64(gapMs)/60000.0)
	}
	decayed := baseline * math.Exp(-cfg.FatigueK*breakMinutes)

	base := cfg.FatigueErrorTrendWeight*clipSigned(s.ErrorTrend) +
		cfg.FatigueRTIncreaseWeight*clipSigned(s.RTIncrease) +
		cfg.FatigueRepeatWeight*clip01(s.RepeatErrors)

	next := decayed + base*math.Max(0, 1-decayed)*0.5
	next = clip01(next)

	if lastSessionEnd > 0 && now-lastSessionEnd >= cfg.FatigueLongBreakMs {
		next = 0.1
	}
	return next
}

// recoveryModel applies a single long-gap recovery pass: fatigue decays
// toward zero as a function of the wall-clock gap since the user's last
// session ended, independent of the in-session decay path.
func recoveryModel(prior float64, gapMs int64, cfg Config) float64 {
	gapHours := float64(gapMs) / 3_600_000.0
	recovered := prior * math.Exp(-cfg.FatigueK*6*gapHours)
	return clip01(recovered)
}
