package mastery

import (
	"github.com/heartcoolman/adaptive-vocab-engine/internal/tracestore"
)

// Evaluator is the Word-Mastery Evaluator: it owns both the SRS store and
// a tracestore handle so EvaluateMany can batch both loads.
type Evaluator struct {
	traces *tracestore.Store
	srs    *Store
	cfg    Config
}

// NewEvaluator wires an Evaluator to its two stores.
func NewEvaluator(traces *tracestore.Store, srs *Store, cfg Config) *Evaluator {
	return &Evaluator{traces: traces, srs: srs, cfg: cfg}
}

// Evaluate answers whether one word is effectively learned for a user.
func (e *Evaluator) Evaluate(userID, wordID string, fatigue float64, now int64) (Verdict, error) {
	trace, err := e.traces.GetTrace(userID, wordID)
	if err != nil {
		return Verdict{}, err
	}
	srsState, err := e.srs.GetSRSState(userID, wordID)
	if err != nil {
		return Verdict{}, err
	}
	return evaluateWord(wordID, trace, srsState, fatigue, now, e.cfg), nil
}

// EvaluateMany batches the trace and SRS-state loads into one query each
// rather than one per word, so batch callers never pay per-word I/O.
func (e *Evaluator) EvaluateMany(userID string, wordIDs []string, fatigue float64, now int64) ([]Verdict, error) {
	traces, err := e.traces.GetTraces(userID, wordIDs)
	if err != nil {
		return nil, err
	}
	srsStates, err := e.srs.GetSRSStates(userID, wordIDs)
	if err != nil {
		return nil, err
	}
	verdicts := make([]Verdict, len(wordIDs))
	for i, wordID := range wordIDs {
		verdicts[i] = evaluateWord(wordID, traces[wordID], srsStates[wordID], fatigue, now, e.cfg)
	}
	return verdicts, nil
}

// evaluateWord is the pure core: given a trace and SRS state already
// loaded, compute the verdict with no further I/O.
func evaluateWord(wordID string, trace tracestore.WordMemoryTrace, srsState SRSState, fatigue float64, now int64, cfg Config) Verdict {
	srs := float64(srsState.MasteryLevel) / float64(MaxMasteryLevel)

	ages := ReviewAgesDays(trace, now)
	_, p := Activation(ages, cfg.ActR)

	recent := recentAccuracy(trace)

	score := cfg.Weights.SRS*srs + cfg.Weights.ActR*p + cfg.Weights.Recent*recent
	confidence := 1 - 0.3*fatigue
	if confidence < 0 {
		confidence = 0
	}
	isLearned := score*confidence >= cfg.Threshold

	return Verdict{
		WordID:     wordID,
		IsLearned:  isLearned,
		Confidence: confidence,
		Factors:    Factors{SRS: srs, ActR: p, Recent: recent},
		Suggestion: suggestionFor(p),
	}
}

// ReviewAgesDays converts a trace's absolute review timestamps into
// days-since-review, the unit BaseLevelActivation's decay constants are
// calibrated for. Reviews folded into the summary (older than the
// retention window) have no individual timestamp left, so they don't
// contribute to activation — only the live window does. Exported so
// internal/control can derive the same ACT-R context without
// duplicating the conversion.
func ReviewAgesDays(trace tracestore.WordMemoryTrace, now int64) []float64 {
	ages := make([]float64, 0, len(trace.Reviews))
	for _, r := range trace.Reviews {
		ageDays := float64(now-r.TSMs) / 86_400_000.0
		if ageDays > 0 {
			ages = append(ages, ageDays)
		}
	}
	return ages
}

// recentAccuracy is accuracy over the last RecentWindowSize answers,
// default 0.5 if none.
func recentAccuracy(trace tracestore.WordMemoryTrace) float64 {
	n := len(trace.Reviews)
	if n == 0 {
		return 0.5
	}
	start := n - RecentWindowSize
	if start < 0 {
		start = 0
	}
	window := trace.Reviews[start:]
	var correct float64
	for _, r := range window {
		if r.Correct {
			correct++
		}
	}
	return correct / float64(len(window))
}

// suggestionFor derives the suggestion band from the retrieval
// probability.
func suggestionFor(p float64) string {
	switch {
	case p < 0.3:
		return "review now"
	case p < 0.6:
		return "review today"
	default:
		return "stable"
	}
}
