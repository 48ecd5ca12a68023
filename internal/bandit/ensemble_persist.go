package bandit

import (
	"encoding/json"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

// ensembleSnapshot is the JSON-serializable view of everything in an
// Ensemble except the LinUCB model, which is persisted separately via
// the bit-sensitive binary blob format. Only LinUCB's A/b matrices have
// a fixed wire format; the rest of the ensemble's state is ordinary
// application data, so JSON fits without inventing a second binary
// layout.
type ensembleSnapshot struct {
	Thompson   Thompson
	ColdStart  ColdStart
	Weights    [4]float64
	RewardHist []float64
}

// Snapshot serializes the ensemble's non-LinUCB state to JSON.
func (e *Ensemble) Snapshot() ([]byte, error) {
	return json.Marshal(ensembleSnapshot{
		Thompson:   *e.Thompson,
		ColdStart:  *e.ColdStart,
		Weights:    e.Weights,
		RewardHist: e.RewardHist,
	})
}

// RestoreSnapshot applies a previously-saved snapshot onto an ensemble
// already holding a freshly-loaded LinUCB model. A section absent from
// the snapshot keeps its cold default. The snapshot is decoded in one
// pass, so malformed JSON or a section of the wrong JSON type leaves
// every sub-learner at its cold default, not only the corrupt one. An
// invalid weight vector resets to uniform — a corrupt snapshot never
// fails the load.
func (e *Ensemble) RestoreSnapshot(blob []byte, sink telemetry.Sink, userID string) {
	snap := ensembleSnapshot{Thompson: *e.Thompson, ColdStart: *e.ColdStart, Weights: e.Weights}
	if err := json.Unmarshal(blob, &snap); err != nil {
		sink.Emit(telemetry.Event{
			Kind:   "ModelRestoreDegraded",
			UserID: userID,
			Fields: map[string]interface{}{"component": "ensemble", "reason": err.Error()},
		})
		return // whole ensemble stays at cold defaults already set by NewEnsemble
	}

	e.Thompson = &snap.Thompson
	e.ColdStart = &snap.ColdStart

	if validWeights(snap.Weights) {
		e.Weights = snap.Weights
	} else {
		sink.Emit(telemetry.Event{Kind: "ModelRestoreDegraded", UserID: userID, Fields: map[string]interface{}{"component": "weights"}})
		e.ResetWeights()
	}

	filtered := make([]float64, 0, len(snap.RewardHist))
	for _, r := range snap.RewardHist {
		if isFiniteReward(r) {
			filtered = append(filtered, r)
		}
	}
	e.RewardHist = filtered
}
