package control

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/bandit"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/decision"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/mastery"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/tracestore"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/userstate"
)

// #region engine-struct

// Engine wires Perception, Modeling, Learning, Decision and the
// Word-Mastery Evaluator together behind a per-user FIFO lock, and owns
// the persistence writes that make one process_event call durable.
type Engine struct {
	store     *store.Store
	bandit    *bandit.Store
	traces    *tracestore.Store
	srs       *mastery.Store
	evaluator *mastery.Evaluator
	sink      telemetry.Sink
	locks     *lockTable

	userCfg     userstate.Config
	linucbCfg   bandit.LinUCBConfig
	ensembleCfg bandit.EnsembleConfig
	masteryCfg  mastery.Config
	lockTimeout time.Duration
	rewardCfg   config.RewardConfig

	rngMu sync.Mutex
	rng   *rand.Rand
}

// #endregion engine-struct

// #region constructor

// NewEngine wires every persistence handle onto one shared *sql.DB
// (via db.DB()) and resolves the sub-configs each layer needs from one
// config.Config, so callers never hand-assemble per-package configs.
func NewEngine(db *store.Store, sink telemetry.Sink, cfg config.Config, seed int64) (*Engine, error) {
	banditStore, err := bandit.NewStore(db.DB())
	if err != nil {
		return nil, err
	}
	traceStore, err := tracestore.NewStore(db.DB())
	if err != nil {
		return nil, err
	}
	srsStore, err := mastery.NewStore(db.DB())
	if err != nil {
		return nil, err
	}

	masteryCfg := mastery.Config{
		Weights: mastery.Weights{
			SRS:    cfg.Mastery.Weights.SRS,
			ActR:   cfg.Mastery.Weights.ActR,
			Recent: cfg.Mastery.Weights.Recent,
		},
		Threshold: cfg.Mastery.Threshold,
		ActR: mastery.ActRConfig{
			Decay: cfg.Mastery.ActR.Decay,
			Tau:   cfg.Mastery.ActR.Tau,
			S:     cfg.Mastery.ActR.S,
		},
	}
	evaluator := mastery.NewEvaluator(traceStore, srsStore, masteryCfg)

	userCfg := userstate.DefaultConfig()
	userCfg.AttentionSmoothing = cfg.Attention.Smoothing
	userCfg.FatigueK = cfg.Fatigue.K
	userCfg.FatigueSessionGapMs = cfg.Fatigue.SessionGapMs
	userCfg.FatigueLongBreakMs = cfg.Fatigue.LongBreakMs

	return &Engine{
		store:     db,
		bandit:    banditStore,
		traces:    traceStore,
		srs:       srsStore,
		evaluator: evaluator,
		sink:      sink,
		locks:     newLockTable(),

		userCfg:     userCfg,
		linucbCfg:   bandit.LinUCBConfig{Alpha: cfg.LinUCB.Alpha, Lambda: cfg.LinUCB.Lambda, Dimension: cfg.Feature.Dimension},
		ensembleCfg: bandit.EnsembleConfig{RewardHistorySize: cfg.Ensemble.RewardHistorySize, LearningRate: cfg.Ensemble.LearningRate, ColdStartThreshold: cfg.Ensemble.ColdStartThreshold},
		masteryCfg:  masteryCfg,
		lockTimeout: time.Duration(cfg.Lock.DefaultTimeoutMs) * time.Millisecond,
		rewardCfg:   cfg.Reward,

		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// #endregion constructor

// stateSnapshot is the free-form JSON payload stored in a decision
// record's StateSnapshotJSON: the post-event user state plus the
// mastery score for the reviewed word at decision time, so the reward
// sweeper can later compute a retention delta without re-deriving it.
type stateSnapshot struct {
	State        userstate.State
	MasteryScore float64
}

// #region process-event

// ProcessEvent runs one full perception→modeling→learning→decision pass
// for a single raw event, persists every resulting record, and enqueues
// the event's delayed reward. The whole pass runs inside the caller's
// per-user FIFO lock so two events for the same user never interleave.
func (e *Engine) ProcessEvent(ctx context.Context, in ProcessEventInput) (ProcessEventResult, error) {
	if err := in.Event.Validate(); err != nil {
		return ProcessEventResult{}, err
	}

	release, err := e.locks.Acquire(ctx, in.Event.UserID, e.lockTimeout)
	if err != nil {
		return ProcessEventResult{}, err
	}
	defer release()

	prior, err := e.loadUserState(in.Event.UserID)
	if err != nil {
		return ProcessEventResult{}, err
	}

	window := perception.ComputeRecentWindow(in.History, in.Event.PauseCount, in.Event.SwitchCount)
	signals := deriveSignals(in.Event, prior, window, in.History, e.userCfg.FatigueSessionGapMs)
	next, _ := userstate.Advance(prior, signals, e.userCfg)

	vector, summary := perception.BuildFeatureVector(in.Event, next.AsPriorState(), window, in.Word)

	ensemble, err := e.loadEnsemble(in.Event.UserID)
	if err != nil {
		return ProcessEventResult{}, err
	}

	trace, err := e.traces.GetTrace(in.Event.UserID, in.Event.WordID)
	if err != nil {
		return ProcessEventResult{}, err
	}
	actrCtx := bandit.ActRContext{ReviewAgesDays: mastery.ReviewAgesDays(trace, in.Event.TSMs)}

	e.rngMu.Lock()
	actionIndex, err := ensemble.Select(vector[:], next.Attention, next.Fatigue, actrCtx, e.masteryCfg.ActR, e.rng)
	e.rngMu.Unlock()
	if err != nil {
		return ProcessEventResult{}, err
	}

	strategy, explanation := decision.Map(actionIndex, decision.GuardrailInput{
		Attention:  next.Attention,
		Fatigue:    next.Fatigue,
		Motivation: next.Motivation,
	}, summary.ReducedConfidence)

	decisionID := uuid.New().String()

	verdict, err := e.evaluator.Evaluate(in.Event.UserID, in.Event.WordID, next.Fatigue, in.Event.TSMs)
	if err != nil {
		return ProcessEventResult{}, err
	}

	if err := e.persistDecision(in.Event, next, ensemble, decisionID, actionIndex, strategy, explanation, vector[:], e.masteryScore(verdict)); err != nil {
		return ProcessEventResult{}, err
	}

	e.sink.Emit(telemetry.Event{
		Kind:   "decision",
		UserID: in.Event.UserID,
		Fields: map[string]interface{}{"decisionId": decisionID, "actionIndex": actionIndex, "wordId": in.Event.WordID},
	})

	return ProcessEventResult{Strategy: strategy, Explanation: explanation, DecisionID: decisionID}, nil
}

// masteryScore recovers the weighted score (before the fatigue-based
// confidence adjustment) behind a verdict for use as
// the reward function's retention baseline. Verdict only carries the
// confidence-adjusted boolean and per-factor breakdown, not the raw
// weighted score, so this recombines the factors with the engine's
// configured weights, the same ones evaluateWord used to produce them.
func (e *Engine) masteryScore(v mastery.Verdict) float64 {
	w := e.masteryCfg.Weights
	return w.SRS*v.Factors.SRS + w.ActR*v.Factors.ActR + w.Recent*v.Factors.Recent
}

// #endregion process-event

// persistDecision writes every record one process_event call produces:
// the advanced user state, the (possibly unchanged) model snapshot, the
// decision and feature-vector audit rows, the word's review trace and
// SRS level, and the delayed-reward queue entry.
func (e *Engine) persistDecision(
	event perception.RawEvent,
	next userstate.State,
	ensemble *bandit.Ensemble,
	decisionID string,
	actionIndex int,
	strategy decision.Strategy,
	explanation decision.Explanation,
	vector []float64,
	masteryScoreAtDecision float64,
) error {
	if err := e.store.PutUserState(store.UserStateRow{
		UserID: next.UserID, Attention: next.Attention, Fatigue: next.Fatigue, Mem: next.Mem,
		Speed: next.Speed, Stability: next.Stability, Motivation: next.Motivation,
		Confidence: next.Confidence, TSMs: next.TS, LastSessionEndMs: next.LastSessionEndMs,
	}); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "put user state %s", next.UserID)
	}

	if err := e.persistEnsemble(event.UserID, ensemble); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "put ensemble %s", event.UserID)
	}

	snapshotJSON, err := json.Marshal(stateSnapshot{State: next, MasteryScore: masteryScoreAtDecision})
	if err != nil {
		return errs.Wrap(errs.ComputationError, err, "marshal state snapshot")
	}
	explanationJSON, err := json.Marshal(explanation)
	if err != nil {
		return errs.Wrap(errs.ComputationError, err, "marshal explanation")
	}
	strategyJSON, err := json.Marshal(strategy)
	if err != nil {
		return errs.Wrap(errs.ComputationError, err, "marshal strategy")
	}

	if err := e.store.PutDecisionRecord(store.DecisionRecord{
		DecisionID: decisionID, UserID: event.UserID, SessionID: event.SessionID, WordID: event.WordID,
		ActionIndex: actionIndex, StrategyJSON: string(strategyJSON), ExplanationJSON: string(explanationJSON),
		StateSnapshotJSON: string(snapshotJSON), TSMs: event.TSMs,
	}); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "put decision record %s", decisionID)
	}

	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return errs.Wrap(errs.ComputationError, err, "marshal feature vector")
	}
	if err := e.store.PutFeatureVector(store.FeatureVectorRecord{
		DecisionID: decisionID, UserID: event.UserID, SessionID: event.SessionID,
		VectorJSON: string(vectorJSON), FeatureVersion: perception.FeatureVersion, TSMs: event.TSMs,
	}); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "put feature vector %s", decisionID)
	}

	if err := e.traces.AddReview(event.UserID, event.WordID, tracestore.ReviewEvent{TSMs: event.TSMs, Correct: event.Correct, ResponseTimeMs: event.ResponseTimeMs}); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "add review %s/%s", event.UserID, event.WordID)
	}

	srsState, err := e.srs.GetSRSState(event.UserID, event.WordID)
	if err != nil {
		return errs.Wrap(errs.PersistenceError, err, "get srs state %s/%s", event.UserID, event.WordID)
	}
	srsState = advanceSRS(srsState, event.Correct, event.TSMs, strategy.IntervalScale)
	if err := e.srs.PutSRSState(srsState); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "put srs state %s/%s", event.UserID, event.WordID)
	}

	dueTSMs := event.TSMs + e.rewardCfg.HorizonMs
	if err := e.store.EnqueueReward(store.RewardQueueEntry{
		ID: uuid.New().String(), UserID: event.UserID, DecisionID: decisionID, DueTSMs: dueTSMs,
		Status: store.StatusPending, IdempotencyKey: idempotencyKey(decisionID),
	}); err != nil {
		return errs.Wrap(errs.PersistenceError, err, "enqueue reward %s", decisionID)
	}

	return nil
}

// idempotencyKey derives the reward queue's dedup key from a decisionId,
// so re-enqueuing the same decision collides instead of duplicating.
func idempotencyKey(decisionID string) string {
	sum := sha256.Sum256([]byte(decisionID))
	return hex.EncodeToString(sum[:])
}

// #region user-state

func (e *Engine) loadUserState(userID string) (userstate.State, error) {
	row, err := e.store.GetUserState(userID)
	if store.IsNoRows(err) {
		return userstate.Default(userID), nil
	}
	if err != nil {
		return userstate.State{}, errs.Wrap(errs.PersistenceError, err, "get user state %s", userID)
	}
	return userstate.State{
		UserID: row.UserID, Attention: row.Attention, Fatigue: row.Fatigue, Mem: row.Mem,
		Speed: row.Speed, Stability: row.Stability, Motivation: row.Motivation,
		Confidence: row.Confidence, TS: row.TSMs, LastSessionEndMs: row.LastSessionEndMs,
	}, nil
}

// GetUserState returns a user's current persisted state, the cold-start
// default for a user never seen before — never an error for that case.
func (e *Engine) GetUserState(ctx context.Context, userID string) (UserStateView, error) {
	release, err := e.locks.Acquire(ctx, userID, e.lockTimeout)
	if err != nil {
		return UserStateView{}, err
	}
	defer release()

	state, err := e.loadUserState(userID)
	if err != nil {
		return UserStateView{}, err
	}
	return UserStateView{State: state}, nil
}

// #endregion user-state

// #region ensemble-persistence

func (e *Engine) loadEnsemble(userID string) (*bandit.Ensemble, error) {
	ensemble := bandit.NewEnsemble(e.linucbCfg, e.ensembleCfg)

	arms, err := e.bandit.GetArms(userID)
	if err != nil {
		return nil, errs.Wrap(errs.PersistenceError, err, "get arms %s", userID)
	}
	if len(arms) > 0 {
		ensemble.LinUCB = bandit.LoadLinUCB(e.linucbCfg, arms, e.sink, userID)
	}

	snapshot, err := e.bandit.GetEnsembleSnapshot(userID)
	if err != nil && !store.IsNoRows(err) {
		return nil, errs.Wrap(errs.PersistenceError, err, "get ensemble snapshot %s", userID)
	}
	if err == nil {
		ensemble.RestoreSnapshot(snapshot, e.sink, userID)
	}
	return ensemble, nil
}

func (e *Engine) persistEnsemble(userID string, ensemble *bandit.Ensemble) error {
	for arm, blob := range ensemble.LinUCB.Persist() {
		if err := e.bandit.PutArm(userID, arm, blob); err != nil {
			return err
		}
	}
	snapshot, err := ensemble.Snapshot()
	if err != nil {
		return err
	}
	return e.bandit.PutEnsembleSnapshot(userID, snapshot)
}

// #endregion ensemble-persistence

// #region mastery

// EvaluateWordMastery runs the Word-Mastery Evaluator for one word.
func (e *Engine) EvaluateWordMastery(userID, wordID string) (mastery.Verdict, error) {
	state, err := e.loadUserState(userID)
	if err != nil {
		return mastery.Verdict{}, err
	}
	return e.evaluator.Evaluate(userID, wordID, state.Fatigue, time.Now().UnixMilli())
}

// EvaluateMany batches EvaluateWordMastery over several words.
func (e *Engine) EvaluateMany(userID string, wordIDs []string) ([]mastery.Verdict, error) {
	state, err := e.loadUserState(userID)
	if err != nil {
		return nil, err
	}
	return e.evaluator.EvaluateMany(userID, wordIDs, state.Fatigue, time.Now().UnixMilli())
}

// #endregion mastery

// #region explain

// Explain returns the stored explanation for a past decision.
func (e *Engine) Explain(decisionID string) (decision.Explanation, error) {
	rec, err := e.store.GetDecisionRecord(decisionID)
	if store.IsNoRows(err) {
		return decision.Explanation{}, errs.Wrap(errs.NotFound, err, "decision %s", decisionID)
	}
	if err != nil {
		return decision.Explanation{}, errs.Wrap(errs.PersistenceError, err, "get decision %s", decisionID)
	}
	var explanation decision.Explanation
	if err := json.Unmarshal([]byte(rec.ExplanationJSON), &explanation); err != nil {
		return decision.Explanation{}, errs.Wrap(errs.ModelCorrupt, err, "unmarshal explanation %s", decisionID)
	}
	return explanation, nil
}

// #endregion explain
