package control

import (
	"context"
	"encoding/json"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

// ApplyDelayedReward applies one realised reward to the bandit model
// under the same per-user lock ProcessEvent uses, so a reward update
// never interleaves with the decision that produced the feature vector
// it applies against. Re-delivering an already-applied reward is a
// no-op: RewardQueueEntry.Applied is checked before any mutation.
func (e *Engine) ApplyDelayedReward(ctx context.Context, userID, decisionID string, reward float64) (ApplyDelayedRewardResult, error) {
	release, err := e.locks.Acquire(ctx, userID, e.lockTimeout)
	if err != nil {
		return ApplyDelayedRewardResult{}, err
	}
	defer release()

	entry, err := e.store.GetRewardByDecision(decisionID)
	if store.IsNoRows(err) {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.NotFound, err, "reward queue entry for decision %s", decisionID)
	}
	if err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "get reward entry for decision %s", decisionID)
	}
	if entry.Applied {
		return ApplyDelayedRewardResult{Success: true}, nil
	}

	rec, err := e.store.GetDecisionRecord(decisionID)
	if err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "get decision record %s", decisionID)
	}

	featureRec, err := e.store.GetFeatureVector(decisionID)
	if store.IsNoRows(err) {
		return ApplyDelayedRewardResult{}, errs.New(errs.FeatureMismatch, "no stored feature vector for decision %s", decisionID)
	}
	if err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "get feature vector %s", decisionID)
	}
	if featureRec.FeatureVersion != perception.FeatureVersion {
		return ApplyDelayedRewardResult{}, errs.New(errs.FeatureMismatch,
			"feature version %d on decision %s, current is %d", featureRec.FeatureVersion, decisionID, perception.FeatureVersion)
	}
	var vector []float64
	if err := json.Unmarshal([]byte(featureRec.VectorJSON), &vector); err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.ModelCorrupt, err, "unmarshal feature vector %s", decisionID)
	}

	ensemble, err := e.loadEnsemble(rec.UserID)
	if err != nil {
		return ApplyDelayedRewardResult{}, err
	}
	ensemble.Update(rec.ActionIndex, vector, reward)
	if err := e.persistEnsemble(rec.UserID, ensemble); err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "persist ensemble %s", rec.UserID)
	}

	if err := e.store.MarkDone(entry.ID, reward); err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "mark reward done %s", entry.ID)
	}
	if err := e.store.DeleteFeatureVector(decisionID); err != nil {
		return ApplyDelayedRewardResult{}, errs.Wrap(errs.PersistenceError, err, "delete feature vector %s", decisionID)
	}

	e.sink.Emit(telemetry.Event{
		Kind:   "reward_applied",
		UserID: rec.UserID,
		Fields: map[string]interface{}{"decisionId": decisionID, "reward": reward},
	})

	return ApplyDelayedRewardResult{Success: true}, nil
}
