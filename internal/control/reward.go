package control

import (
	"encoding/json"
	"time"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/tracestore"
)

// RewardInputs are the three signals the documented reward function
// combines, each already normalized to [-1,1] by the caller.
type RewardInputs struct {
	// Accuracy is the outcome signal for the decision's word in the
	// window after the decision: +1 every review seen was correct, -1
	// every review seen was wrong, 0 if nothing has been reviewed yet.
	Accuracy float64
	// RetentionDelta is the mastery-evaluator score for the word now
	// minus its score at decision time, clamped to [-1,1].
	RetentionDelta float64
	// SessionCompletion is +1 if the session continued past this
	// decision, -0.5 if this was the session's last recorded activity,
	// 0 if unknown.
	SessionCompletion float64
}

const (
	rewardWeightAccuracy  = 0.5
	rewardWeightRetention = 0.3
	rewardWeightSession   = 0.2
)

// ComputeReward combines accuracy, retention and session-completion into
// one realised reward per the documented reward function, clamped to
// [-1,1].
func ComputeReward(in RewardInputs) float64 {
	r := rewardWeightAccuracy*clampSigned(in.Accuracy) +
		rewardWeightRetention*clampSigned(in.RetentionDelta) +
		rewardWeightSession*clampSigned(in.SessionCompletion)
	return clampSigned(r)
}

func clampSigned(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	default:
		return v
	}
}

// computeRealisedReward derives RewardInputs for one due reward queue
// entry from the data already on hand — the decision's state snapshot,
// the word's review trace, and whether the session continued — and
// combines them via ComputeReward. None of the three signals requires
// data the Engine doesn't already persist.
func (e *Engine) computeRealisedReward(entry store.RewardQueueEntry) (float64, error) {
	rec, err := e.store.GetDecisionRecord(entry.DecisionID)
	if err != nil {
		return 0, err
	}

	var snap stateSnapshot
	_ = json.Unmarshal([]byte(rec.StateSnapshotJSON), &snap) // corrupt snapshot degrades to a zero baseline, not a sweep failure

	trace, err := e.traces.GetTrace(rec.UserID, rec.WordID)
	if err != nil {
		return 0, err
	}
	accuracy := accuracySinceDecision(trace, rec.TSMs)

	verdictNow, err := e.evaluator.Evaluate(rec.UserID, rec.WordID, 0, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	retentionDelta := e.masteryScore(verdictNow) - snap.MasteryScore

	hasLater, err := e.store.HasLaterDecisionInSession(rec.SessionID, rec.TSMs)
	if err != nil {
		return 0, err
	}
	sessionCompletion := -0.5
	if hasLater {
		sessionCompletion = 1.0
	}

	return ComputeReward(RewardInputs{
		Accuracy:          accuracy,
		RetentionDelta:    retentionDelta,
		SessionCompletion: sessionCompletion,
	}), nil
}

// accuracySinceDecision maps the correctness ratio of reviews logged
// after decisionTSMs onto [-1,1]; no reviews yet is neutral (0), not
// penalized.
func accuracySinceDecision(trace tracestore.WordMemoryTrace, decisionTSMs int64) float64 {
	var correct, total float64
	for _, r := range trace.Reviews {
		if r.TSMs > decisionTSMs {
			total++
			if r.Correct {
				correct++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 2*correct/total - 1
}
