package userstate

// updateProfiler runs the slow per-session EMA over (mem, speed,
// stability). Stability only rises on low-variance, high-accuracy runs;
// otherwise it decays slightly toward the accuracy signal when that
// signal is below it, and holds when it is not.
func updateProfiler(mem, speed, stability float64, s Signals, cfg Config) (float64, float64, float64) {
	rate := cfg.ProfilerRate

	accuracySignal := 0.0
	if s.Correct {
		accuracySignal = 1.0
	}
	nextMem := mem + rate*(accuracySignal-mem)

	speedSignal := clip01(1.0 - clip01(s.RTRatio-1.0))
	nextSpeed := speed + rate*(speedSignal-speed)

	nextStability := stability
	if s.LowVarianceHighAccuracy {
		nextStability = stability + rate*(1.0-stability)
	} else if accuracySignal < stability {
		nextStability = stability + rate*(accuracySignal-stability)*0.5
	}

	return clip01(nextMem), clip01(nextSpeed), clip01(nextStability)
}
