package control

import (
	"math"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/userstate"
)

// deriveSignals reduces one raw event, its recent-performance window and
// trailing outcome history into the userstate.Signals shape, applying
// the session-gap detection the fatigue model depends on: recovery must
// fire exactly once per gap, never alongside intra-session decay for the
// same interval.
func deriveSignals(event perception.RawEvent, prior userstate.State, window perception.RecentWindow, history []perception.Outcome, sessionGapMs int64) userstate.Signals {
	expectedRT := window.MeanRTMs
	if expectedRT <= 0 {
		expectedRT = 3000
	}

	var selfRating *float64
	if event.SelfRating != nil {
		v := clampSigned(*event.SelfRating)
		selfRating = &v
	}

	sessionEndedThisGap := prior.TS > 0 && event.TSMs-prior.TS >= sessionGapMs
	var lastSessionEndMs int64
	if sessionEndedThisGap {
		lastSessionEndMs = prior.TS
	}

	return userstate.Signals{
		RTRatio:            clampPositive(float64(event.ResponseTimeMs) / expectedRT),
		PauseRate:          clip01(float64(event.PauseCount) / 5.0),
		SwitchRate:         clip01(float64(event.SwitchCount) / 5.0),
		DwellRatio:         clip01(float64(event.DwellTimeMs) / 4000.0),
		ErrorRate:          clip01(window.ErrorRate),
		RTVariance:         clip01(math.Abs(window.RTTrend)),
		InteractionDensity: clip01(window.InteractionDensity),
		Hesitation:         clip01(float64(event.PauseCount)/5.0 + float64(event.DwellTimeMs)/8000.0),

		ErrorTrend:   clampSigned(-window.AccuracyTrend),
		RTIncrease:   clampSigned(math.Max(0, window.RTTrend)),
		RepeatErrors: clip01(float64(window.RepeatErrorCount) / 5.0),

		Correct:       event.Correct,
		AccuracyDelta: clampSigned(window.AccuracyTrend),
		StreakEffect:  streakEffect(history),
		SelfRating:    selfRating,

		LowVarianceHighAccuracy: window.ErrorRate < 0.15 && math.Abs(window.RTTrend) < 0.1,

		Now:              event.TSMs,
		LastSessionEndMs: lastSessionEndMs,
	}
}

// streakEffect reads the trailing run of identical outcomes at the end
// of history (oldest first) and signs it by whether that run is correct.
func streakEffect(history []perception.Outcome) float64 {
	if len(history) == 0 {
		return 0
	}
	last := history[len(history)-1].Correct
	run := 0
	for i := len(history) - 1; i >= 0 && history[i].Correct == last; i-- {
		run++
	}
	sign := 1.0
	if !last {
		sign = -1.0
	}
	return sign * clampSigned(float64(run)/5.0)
}

func clip01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clampPositive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
