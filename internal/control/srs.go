package control

import "github.com/heartcoolman/adaptive-vocab-engine/internal/mastery"

const msPerDay = 24 * 60 * 60 * 1000

// advanceSRS applies one scored review to a word's spaced-repetition
// state, SM-2 style: a correct answer promotes the mastery level by 1,
// extends the interval by the ease factor and nudges ease up; a wrong
// answer demotes by 2, resets the streak and interval, and drops ease
// (floored at 1.3). Demotion outpacing promotion means a lapse costs
// more than a single success repairs.
func advanceSRS(state mastery.SRSState, correct bool, nowMs int64, intervalScale float64) mastery.SRSState {
	if state.EaseFactor == 0 {
		state.EaseFactor = mastery.DefaultEaseFactor
	}
	if correct {
		state.ConsecutiveCorrect++
		state.MasteryLevel++
		state.EaseFactor += 0.05
		switch state.ConsecutiveCorrect {
		case 1:
			state.IntervalDays = 1
		case 2:
			state.IntervalDays = 3
		default:
			state.IntervalDays *= state.EaseFactor
		}
	} else {
		state.ConsecutiveCorrect = 0
		state.MasteryLevel -= 2
		state.EaseFactor -= 0.2
		state.IntervalDays = 1
	}

	if state.MasteryLevel < 0 {
		state.MasteryLevel = 0
	}
	if state.MasteryLevel > mastery.MaxMasteryLevel {
		state.MasteryLevel = mastery.MaxMasteryLevel
	}
	if state.EaseFactor < 1.3 {
		state.EaseFactor = 1.3
	}
	if state.EaseFactor > 3.0 {
		state.EaseFactor = 3.0
	}

	// The decision's interval_scale stretches or shrinks the schedule
	// without touching the stored ease.
	scaled := state.IntervalDays * intervalScale
	state.NextReviewTSMs = nowMs + int64(scaled*msPerDay)
	return state
}
