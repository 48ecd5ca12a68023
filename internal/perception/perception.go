package perception

import (
	"math"
	"time"
)

// #region vector
// Vector is the fixed d=22 feature vector. A plain array (not a slice) so
// "exactly d components" is a type-level guarantee, not a runtime check.
type Vector [Dimension]float64

// #endregion vector

// #region build
// BuildFeatureVector turns one raw event plus context into a complete,
// finite feature vector. It never fails on bad data — NaN/Inf/missing
// values degrade to neutral defaults per the contract — it only fails
// InvalidEvent validation, checked by the caller before this runs.
func BuildFeatureVector(event RawEvent, prior PriorState, window RecentWindow, word WordMetadata) (Vector, Summary) {
	var v Vector
	reduced := false

	set := func(i int, val float64, fallback float64) {
		if !isFinite(val) {
			val = fallback
			reduced = true
		}
		v[i] = val
	}

	// Group 1: user-state prior (4)
	set(0, prior.Attention, 0.7)
	set(1, prior.Fatigue, 0.0)
	set(2, prior.Mem, 0.5)
	set(3, prior.Speed, 0.5)

	// Group 2: time-of-day / day-of-week / segment (3)
	t := time.UnixMilli(event.TSMs).UTC()
	hourFrac := float64(t.Hour()) / 24.0
	dowFrac := float64(t.Weekday()) / 7.0
	segment := daySegment(t.Hour())
	set(4, hourFrac, 0.5)
	set(5, dowFrac, 0.5)
	set(6, segment, 0.5)

	// Group 3: recent-performance window (5)
	set(7, clip01(window.ErrorRate), 0.5)
	set(8, clip01(window.MeanRTMs/5000.0), 0.4)
	set(9, clipSigned(window.RTTrend), 0.0)
	set(10, clipSigned(window.AccuracyTrend), 0.0)
	set(11, clip01(float64(window.RepeatErrorCount)/5.0), 0.0)

	// Group 4: word properties (5)
	lengthNorm := float64(word.Length) / 15.0
	if word.Length <= 0 {
		lengthNorm = 0.4
	}
	freqNorm := 0.5
	if word.FrequencyBand >= 1 && word.FrequencyBand <= 5 {
		freqNorm = float64(word.FrequencyBand-1) / 4.0
	}
	difficulty := word.Difficulty
	if !word.knownDiff {
		difficulty = 0.5
	}
	posIndicator := posCode(word.POS)
	novelty := word.Novelty
	if novelty == 0 {
		novelty = 0.5
	}
	set(12, clip01(lengthNorm), 0.4)
	set(13, clip01(freqNorm), 0.5)
	set(14, clip01(difficulty), 0.5)
	set(15, clip01(posIndicator), 0.5)
	set(16, clip01(novelty), 0.5)

	// Group 5: interaction features (5)
	rtNorm := clip01(float64(event.ResponseTimeMs) / 5000.0)
	recentAccuracy := 1.0 - clip01(window.ErrorRate)
	sessionAgeMs := event.TSMs - event.SessionStartTSMs
	if event.SessionStartTSMs <= 0 || sessionAgeMs < 0 {
		sessionAgeMs = 0
	}
	sessionAgeNorm := clip01(float64(sessionAgeMs) / float64(2*60*60*1000)) // 2h horizon

	set(17, prior.Attention*v[14], 0.35)
	set(18, prior.Fatigue*clip01(window.InteractionDensity), 0.0)
	set(19, prior.Motivation*recentAccuracy, 0.0)
	set(20, rtNorm*v[14], rtNorm*0.5)
	set(21, sessionAgeNorm, 0.0)

	summary := Summary{
		RecentWindow:      window,
		SessionAgeMs:      sessionAgeMs,
		ReducedConfidence: reduced,
	}
	return v, summary
}

// #endregion build

// #region recent-window
// ComputeRecentWindow reduces a bounded trailing slice of outcomes (oldest
// first) into the recent-performance features Perception needs. Pure and
// allocation-light so it is safe to call on every event.
func ComputeRecentWindow(history []Outcome, pauseCount, switchCount int) RecentWindow {
	if len(history) == 0 {
		return RecentWindow{ErrorRate: 0.5, MeanRTMs: 2000, InteractionDensity: clip01(float64(pauseCount+switchCount) / 6.0)}
	}
	var wrong, totalRT float64
	for _, o := range history {
		if !o.Correct {
			wrong++
		}
		totalRT += float64(o.ResponseTimeMs)
	}
	errorRate := wrong / float64(len(history))
	meanRT := totalRT / float64(len(history))

	rtTrend := trend(rtSeries(history))
	accTrend := -trend(errSeries(history)) // error shrinking → accuracy improving

	repeatErrors := 0
	run := 0
	for _, o := range history {
		if !o.Correct {
			run++
			if run >= 2 {
				repeatErrors++
			}
		} else {
			run = 0
		}
	}

	return RecentWindow{
		ErrorRate:          errorRate,
		MeanRTMs:           meanRT,
		RTTrend:            rtTrend,
		AccuracyTrend:       accTrend,
		RepeatErrorCount:   repeatErrors,
		InteractionDensity: clip01(float64(pauseCount+switchCount) / 6.0),
	}
}

// #endregion recent-window

// #region helpers

func rtSeries(history []Outcome) []float64 {
	out := make([]float64, len(history))
	for i, o := range history {
		out[i] = float64(o.ResponseTimeMs)
	}
	return out
}

func errSeries(history []Outcome) []float64 {
	out := make([]float64, len(history))
	for i, o := range history {
		if !o.Correct {
			out[i] = 1
		}
	}
	return out
}

// trend fits a crude linear slope (last-half mean minus first-half mean,
// normalized) — cheap and sufficient to detect direction, not magnitude.
func trend(series []float64) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	mid := n / 2
	var firstSum, secondSum float64
	for i := 0; i < mid; i++ {
		firstSum += series[i]
	}
	for i := mid; i < n; i++ {
		secondSum += series[i]
	}
	firstMean := firstSum / float64(mid)
	secondMean := secondSum / float64(n-mid)
	denom := math.Max(math.Abs(firstMean), 1.0)
	return clipSigned((secondMean - firstMean) / denom)
}

func daySegment(hour int) float64 {
	switch {
	case hour >= 5 && hour < 12:
		return 0.0 // morning
	case hour >= 12 && hour < 17:
		return 0.33 // afternoon
	case hour >= 17 && hour < 22:
		return 0.66 // evening
	default:
		return 1.0 // night
	}
}

func posCode(pos string) float64 {
	switch pos {
	case "noun":
		return 0.0
	case "verb":
		return 0.25
	case "adj":
		return 0.5
	case "adv":
		return 0.75
	default:
		return 1.0
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clip01(v float64) float64 {
	if !isFinite(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clipSigned(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
