package control

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/errs"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

const (
	sweepClaimLimit    = 64
	sweepConcurrency   = 8
	sweepBaseBackoffMs int64 = 1000
)

// Sweeper is the delayed-reward reconciliation job: it claims due
// reward_queue entries, computes each one's realised reward from
// downstream outcomes, and applies it through the same per-user lock
// ProcessEvent uses.
type Sweeper struct {
	engine *Engine
}

// NewSweeper wires a Sweeper to an already-constructed Engine.
func NewSweeper(engine *Engine) *Sweeper {
	return &Sweeper{engine: engine}
}

// Sweep runs one claim-and-apply pass. Distinct users' entries are
// applied concurrently, bounded by sweepConcurrency; same-user entries
// still serialize through the engine's per-user lock regardless of
// fan-out here.
func (s *Sweeper) Sweep(ctx context.Context) error {
	entries, err := s.engine.store.ClaimDue(time.Now().UnixMilli(), sweepClaimLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(sweepConcurrency)
	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		entry := entry
		if err := sem.Acquire(gctx, 1); err != nil {
			break // ctx cancelled; stop claiming new work, let in-flight entries finish
		}
		g.Go(func() error {
			defer sem.Release(1)
			s.applyOne(gctx, entry)
			return nil
		})
	}
	return g.Wait()
}

// applyOne computes and applies one entry's reward. Failures never
// propagate to Sweep — they're recorded on the entry itself via
// MarkFailed/Requeue so one bad entry never blocks the rest of the
// batch.
func (s *Sweeper) applyOne(ctx context.Context, entry store.RewardQueueEntry) {
	reward, err := s.engine.computeRealisedReward(entry)
	if err != nil {
		s.fail(entry, err)
		return
	}
	if _, err := s.engine.ApplyDelayedReward(ctx, entry.UserID, entry.DecisionID, reward); err != nil {
		s.fail(entry, err)
	}
}

// fail records one failed attempt and, unless this was the last
// attempt (MarkFailed already moved it to EXPIRED), requeues it with
// exponential backoff from sweepBaseBackoffMs.
func (s *Sweeper) fail(entry store.RewardQueueEntry, cause error) {
	attempt := entry.Attempt + 1
	maxAttempts := s.engine.rewardCfg.MaxAttempts

	if err := s.engine.store.MarkFailed(entry.ID, attempt, maxAttempts, cause.Error()); err != nil {
		s.emitSweepError(entry, err)
		return
	}

	s.engine.sink.Emit(telemetry.Event{
		Kind:   "reward_apply_failed",
		UserID: entry.UserID,
		Fields: map[string]interface{}{"decisionId": entry.DecisionID, "attempt": attempt, "reason": cause.Error()},
	})

	if attempt >= maxAttempts {
		return // MarkFailed already expired it
	}
	if errors.Is(cause, errs.ErrFeatureMismatch) {
		return // permanent: left FAILED and never requeued, retrying cannot fix the vector; nothing moves it on to EXPIRED
	}
	backoff := sweepBaseBackoffMs << uint(attempt)
	if err := s.engine.store.Requeue(entry.ID, time.Now().UnixMilli()+backoff); err != nil {
		s.emitSweepError(entry, err)
	}
}

func (s *Sweeper) emitSweepError(entry store.RewardQueueEntry, err error) {
	s.engine.sink.Emit(telemetry.Event{
		Kind:   "sweep_error",
		UserID: entry.UserID,
		Fields: map[string]interface{}{"id": entry.ID, "error": err.Error()},
	})
}
