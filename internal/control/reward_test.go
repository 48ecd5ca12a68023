package control

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/bandit"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/tracestore"
)

func TestComputeRewardIsBounded(t *testing.T) {
	cases := []RewardInputs{
		{Accuracy: 1, RetentionDelta: 1, SessionCompletion: 1},
		{Accuracy: -1, RetentionDelta: -1, SessionCompletion: -1},
		{Accuracy: 50, RetentionDelta: -50, SessionCompletion: 0},
		{},
	}
	for _, in := range cases {
		r := ComputeReward(in)
		if r < -1 || r > 1 {
			t.Errorf("reward %v out of [-1,1] for %+v", r, in)
		}
	}
	if got := ComputeReward(RewardInputs{Accuracy: 1, RetentionDelta: 1, SessionCompletion: 1}); got != 1 {
		t.Errorf("all-positive reward = %v, want 1", got)
	}
}

func TestAccuracySinceDecision(t *testing.T) {
	trace := tracestore.WordMemoryTrace{Reviews: []tracestore.ReviewEvent{
		{TSMs: 100, Correct: false},
		{TSMs: 200, Correct: true},
		{TSMs: 300, Correct: true},
	}}
	if got := accuracySinceDecision(trace, 150); got != 1 {
		t.Errorf("accuracy after ts=150 = %v, want 1 (both later reviews correct)", got)
	}
	if got := accuracySinceDecision(trace, 300); got != 0 {
		t.Errorf("accuracy with no later reviews = %v, want neutral 0", got)
	}
	if got := accuracySinceDecision(trace, 0); math.Abs(got-(2.0/3.0*2-1)) > 1e-12 {
		t.Errorf("accuracy over all reviews = %v", got)
	}
}

// seedDecisions runs n sequential events for userID and returns the
// decision ids in order.
func seedDecisions(t *testing.T, eng *Engine, userID string, n int) []string {
	t.Helper()
	t0 := int64(1_760_000_000_000)
	var history []perception.Outcome
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := t0 + int64(i)*90_000
		correct := i%2 == 0
		rt := int64(1500 + 200*i)
		res, err := eng.ProcessEvent(context.Background(), ProcessEventInput{
			Event: perception.RawEvent{
				UserID: userID, SessionID: "s1", WordID: "w1",
				Correct: correct, ResponseTimeMs: rt, DwellTimeMs: 2500,
				TSMs: ts, SessionStartTSMs: t0,
			},
			Word:    testWord("w1"),
			History: append([]perception.Outcome(nil), history...),
		})
		if err != nil {
			t.Fatalf("seed event %d: %v", i, err)
		}
		history = append(history, perception.Outcome{TSMs: ts, Correct: correct, ResponseTimeMs: rt})
		ids = append(ids, res.DecisionID)
	}
	return ids
}

// Applying the same reward twice for one decision must leave the model
// exactly as a single application would.
func TestApplyDelayedRewardIsIdempotent(t *testing.T) {
	eng := newTestEngine(t, 7)
	ids := seedDecisions(t, eng, "u3", 1)

	first, err := eng.ApplyDelayedReward(context.Background(), "u3", ids[0], 0.4)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if !first.Success {
		t.Fatal("first apply should succeed")
	}
	armsAfterFirst, err := eng.bandit.GetArms("u3")
	if err != nil {
		t.Fatalf("get arms: %v", err)
	}

	second, err := eng.ApplyDelayedReward(context.Background(), "u3", ids[0], 0.4)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if !second.Success {
		t.Fatal("second apply should report success")
	}
	armsAfterSecond, err := eng.bandit.GetArms("u3")
	if err != nil {
		t.Fatalf("get arms: %v", err)
	}

	for arm, blob := range armsAfterFirst {
		if !bytes.Equal(blob, armsAfterSecond[arm]) {
			t.Fatalf("arm %d changed on re-applied reward", arm)
		}
	}
}

// Concurrent reward applications (with decision calls in flight for the
// same user) must land the model exactly where a serial application of
// the same rewards does — the per-user lock linearizes every (A, b)
// write.
func TestConcurrentRewardApplicationIsLinearizable(t *testing.T) {
	const seed = 99
	const decisions = 6
	rewards := []float64{0.4, -0.2, 1.0, 0.1, -1.0, 0.6}

	// Engine A: same seed and event stream, rewards applied concurrently
	// while extra decision traffic runs for the same user.
	engA := newTestEngine(t, seed)
	idsA := seedDecisions(t, engA, "u4", decisions)

	var wg sync.WaitGroup
	for i := 0; i < decisions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := engA.ApplyDelayedReward(context.Background(), "u4", idsA[i], rewards[i]); err != nil {
				t.Errorf("concurrent apply %d: %v", i, err)
			}
		}(i)
	}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ts := int64(1_760_100_000_000) + int64(i)*60_000
			_, err := engA.ProcessEvent(context.Background(), ProcessEventInput{
				Event: perception.RawEvent{
					UserID: "u4", SessionID: "s2", WordID: "w2",
					Correct: true, ResponseTimeMs: 1700, DwellTimeMs: 2000,
					TSMs: ts, SessionStartTSMs: ts,
				},
				Word: testWord("w2"),
			})
			if err != nil {
				t.Errorf("concurrent decision %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	// Engine B: identical seed and event stream, rewards applied
	// serially. Decision calls never touch (A, b), so the extra traffic
	// on engine A is irrelevant to the comparison.
	engB := newTestEngine(t, seed)
	idsB := seedDecisions(t, engB, "u4", decisions)
	for i := 0; i < decisions; i++ {
		if _, err := engB.ApplyDelayedReward(context.Background(), "u4", idsB[i], rewards[i]); err != nil {
			t.Fatalf("serial apply %d: %v", i, err)
		}
	}

	armsA, err := engA.bandit.GetArms("u4")
	if err != nil {
		t.Fatalf("get arms A: %v", err)
	}
	armsB, err := engB.bandit.GetArms("u4")
	if err != nil {
		t.Fatalf("get arms B: %v", err)
	}
	d := config.Default().Feature.Dimension
	for arm := 0; arm < bandit.NumArms; arm++ {
		aA, bA, err := bandit.DecodeArm(armsA[arm], d)
		if err != nil {
			t.Fatalf("decode A arm %d: %v", arm, err)
		}
		aB, bB, err := bandit.DecodeArm(armsB[arm], d)
		if err != nil {
			t.Fatalf("decode B arm %d: %v", arm, err)
		}
		for i := range aA {
			if math.Abs(aA[i]-aB[i]) > 1e-9 {
				t.Fatalf("arm %d A[%d]: concurrent %v vs serial %v", arm, i, aA[i], aB[i])
			}
		}
		for i := range bA {
			if math.Abs(bA[i]-bB[i]) > 1e-9 {
				t.Fatalf("arm %d b[%d]: concurrent %v vs serial %v", arm, i, bA[i], bB[i])
			}
		}
	}
}

func TestApplyDelayedRewardUnknownDecision(t *testing.T) {
	eng := newTestEngine(t, 1)
	if _, err := eng.ApplyDelayedReward(context.Background(), "u1", "no-such-decision", 0.5); err == nil {
		t.Fatal("expected NotFound for a decision with no queue entry")
	}
}
