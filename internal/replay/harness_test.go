package replay

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/decision"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

func stratWithBatch(n int) decision.Strategy {
	return decision.Strategy{BatchSize: n, Difficulty: "mid", SuggestRest: false}
}

func newTestEngine(t *testing.T, seed int64) *control.Engine {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	eng, err := control.NewEngine(db, telemetry.Noop{}, config.Default(), seed)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func TestRunBasicSessionMeetsExpectations(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "basic_session.json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	eng := newTestEngine(t, f.Seed)

	results := Run(context.Background(), eng, f)
	if len(results) != len(f.Events) {
		t.Fatalf("expected %d results, got %d", len(f.Events), len(results))
	}
	for _, r := range results {
		if r.Err != "" {
			t.Fatalf("event %d failed: %s", r.EventIndex, r.Err)
		}
	}

	if mismatches := Check(f, results); len(mismatches) != 0 {
		t.Fatalf("fixture expectations failed: %+v", mismatches)
	}

	s := Summarize(results)
	if s.Decisions != len(f.Events) || s.Failures != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if s.RuleCounts["fatigue_mid"] == 0 {
		t.Error("expected the slump to fire fatigue_mid at least once")
	}
}

// Same fixture, same seed, fresh engine: the replay must reproduce the
// exact same action sequence.
func TestRunIsDeterministicAcrossEngines(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "basic_session.json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	first := Run(context.Background(), newTestEngine(t, f.Seed), f)
	second := Run(context.Background(), newTestEngine(t, f.Seed), f)

	for i := range first {
		if first[i].ActionIndex != second[i].ActionIndex {
			t.Fatalf("event %d: action %d vs %d across identical replays", i, first[i].ActionIndex, second[i].ActionIndex)
		}
		if first[i].Fatigue != second[i].Fatigue {
			t.Fatalf("event %d: fatigue %v vs %v across identical replays", i, first[i].Fatigue, second[i].Fatigue)
		}
	}
}

func TestCheckReportsMismatches(t *testing.T) {
	maxBatch := 5
	rest := true
	f := &Fixture{
		Expected: []FixtureExpectation{
			{EventIndex: 0, MaxBatchSize: &maxBatch, SuggestRest: &rest},
			{EventIndex: 1},
		},
	}
	results := []Result{{
		EventIndex: 0,
		Strategy:   stratWithBatch(12),
	}}

	mismatches := Check(f, results)
	if len(mismatches) != 3 {
		t.Fatalf("expected 3 mismatches (batch, rest, missing event 1), got %+v", mismatches)
	}
}
