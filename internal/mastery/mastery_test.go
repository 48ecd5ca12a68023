package mastery

import (
	"database/sql"
	"testing"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/tracestore"

	_ "modernc.org/sqlite"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *tracestore.Store, *Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	traces, err := tracestore.NewStore(db)
	if err != nil {
		t.Fatalf("new tracestore: %v", err)
	}
	srs, err := NewStore(db)
	if err != nil {
		t.Fatalf("new mastery store: %v", err)
	}
	return NewEvaluator(traces, srs, DefaultConfig()), traces, srs
}

func TestEvaluateUnseenWordIsNotLearned(t *testing.T) {
	e, _, _ := newTestEvaluator(t)

	verdict, err := e.Evaluate("u1", "w1", 0.0, 1_000_000)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.IsLearned {
		t.Fatalf("expected an unseen word to not be learned, got verdict: %+v", verdict)
	}
	if verdict.Factors.SRS != 0 {
		t.Fatalf("expected zero SRS factor for unseen word, got %f", verdict.Factors.SRS)
	}
	if verdict.Suggestion != "review now" {
		t.Fatalf("expected 'review now' suggestion for unseen word, got %q", verdict.Suggestion)
	}
}

func TestEvaluateMasteredWordWithFreshReviewsIsLearned(t *testing.T) {
	e, traces, srs := newTestEvaluator(t)

	now := int64(10_000_000)
	if err := srs.PutSRSState(SRSState{UserID: "u1", WordID: "w1", MasteryLevel: MaxMasteryLevel}); err != nil {
		t.Fatalf("put srs state: %v", err)
	}
	for i := 0; i < RecentWindowSize; i++ {
		ev := tracestore.ReviewEvent{TSMs: now - int64(i*1000), Correct: true}
		if err := traces.AddReview("u1", "w1", ev); err != nil {
			t.Fatalf("add review: %v", err)
		}
	}

	verdict, err := e.Evaluate("u1", "w1", 0.0, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !verdict.IsLearned {
		t.Fatalf("expected mastered word with fresh correct reviews to be learned, got verdict: %+v", verdict)
	}
	if verdict.Factors.SRS != 1.0 {
		t.Fatalf("expected SRS factor 1.0 at max mastery level, got %f", verdict.Factors.SRS)
	}
	if verdict.Factors.Recent != 1.0 {
		t.Fatalf("expected perfect recent accuracy, got %f", verdict.Factors.Recent)
	}
}

// A word at mastery level 4 with correct reviews spaced over the last
// ten days is the canonical "well retained" shape: retrieval probability
// stays high, recent accuracy is perfect, and mild fatigue barely dents
// confidence, so the verdict is learned and stable.
func TestEvaluateSpacedReviewHistoryIsLearnedAndStable(t *testing.T) {
	e, traces, srs := newTestEvaluator(t)

	const dayMs = int64(24 * 60 * 60 * 1000)
	now := int64(1_760_000_000_000)
	if err := srs.PutSRSState(SRSState{UserID: "u4", WordID: "w1", MasteryLevel: 4}); err != nil {
		t.Fatalf("put srs state: %v", err)
	}
	for _, daysAgo := range []int64{10, 5, 2, 1} {
		ev := tracestore.ReviewEvent{TSMs: now - daysAgo*dayMs, Correct: true, ResponseTimeMs: 1500}
		if err := traces.AddReview("u4", "w1", ev); err != nil {
			t.Fatalf("add review: %v", err)
		}
	}

	verdict, err := e.Evaluate("u4", "w1", 0.2, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict.Factors.ActR < 0.75 {
		t.Errorf("retrieval probability = %f, want >= 0.75", verdict.Factors.ActR)
	}
	if verdict.Factors.Recent != 1.0 {
		t.Errorf("recent accuracy = %f, want 1.0", verdict.Factors.Recent)
	}
	cfg := DefaultConfig()
	score := cfg.Weights.SRS*verdict.Factors.SRS + cfg.Weights.ActR*verdict.Factors.ActR + cfg.Weights.Recent*verdict.Factors.Recent
	if score < 0.85 {
		t.Errorf("score = %f, want >= 0.85", score)
	}
	if verdict.Confidence < 0.9399999 {
		t.Errorf("confidence = %f, want >= 0.94", verdict.Confidence)
	}
	if !verdict.IsLearned {
		t.Error("expected the word to be learned")
	}
	if verdict.Suggestion != "stable" {
		t.Errorf("suggestion = %q, want \"stable\"", verdict.Suggestion)
	}
}

// Pins the day-scale unit of the activation sum: ages {10d, 5d, 2d, 1d}
// sum to Σ t^-0.5 ≈ 2.47, so B ≈ 0.90 and P ≈ 0.99. Second-scale ages
// would put B near -4.8 and P near zero.
func TestActivationUsesDayScaleAges(t *testing.T) {
	b, p := Activation([]float64{10, 5, 2, 1}, DefaultActRConfig())
	if b < 0.89 || b > 0.92 {
		t.Errorf("base-level activation = %f, want ~0.90", b)
	}
	if p < 0.98 {
		t.Errorf("retrieval probability = %f, want ~0.99", p)
	}
}

func TestEvaluateHighFatigueLowersConfidence(t *testing.T) {
	e, traces, srs := newTestEvaluator(t)

	now := int64(10_000_000)
	if err := srs.PutSRSState(SRSState{UserID: "u1", WordID: "w1", MasteryLevel: MaxMasteryLevel}); err != nil {
		t.Fatalf("put srs state: %v", err)
	}
	if err := traces.AddReview("u1", "w1", tracestore.ReviewEvent{TSMs: now - 1000, Correct: true}); err != nil {
		t.Fatalf("add review: %v", err)
	}

	low, err := e.Evaluate("u1", "w1", 0.0, now)
	if err != nil {
		t.Fatalf("evaluate low fatigue: %v", err)
	}
	high, err := e.Evaluate("u1", "w1", 1.0, now)
	if err != nil {
		t.Fatalf("evaluate high fatigue: %v", err)
	}
	if high.Confidence >= low.Confidence {
		t.Fatalf("expected higher fatigue to lower confidence: low=%f high=%f", low.Confidence, high.Confidence)
	}
}

func TestEvaluateManyBatchesIOAndMatchesEvaluate(t *testing.T) {
	e, traces, srs := newTestEvaluator(t)

	now := int64(5_000_000)
	if err := srs.PutSRSState(SRSState{UserID: "u1", WordID: "w1", MasteryLevel: 2}); err != nil {
		t.Fatalf("put srs state: %v", err)
	}
	if err := traces.AddReview("u1", "w1", tracestore.ReviewEvent{TSMs: now - 500, Correct: false}); err != nil {
		t.Fatalf("add review: %v", err)
	}

	single, err := e.Evaluate("u1", "w1", 0.2, now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	many, err := e.EvaluateMany("u1", []string{"w1", "w2"}, 0.2, now)
	if err != nil {
		t.Fatalf("evaluate many: %v", err)
	}
	if len(many) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(many))
	}
	if many[0] != single {
		t.Fatalf("expected EvaluateMany's first verdict to match Evaluate: %+v vs %+v", many[0], single)
	}
	if many[1].IsLearned {
		t.Fatalf("expected never-seen word w2 to not be learned")
	}
}

func TestSuggestionBandsFollowRetrievalProbability(t *testing.T) {
	cases := []struct {
		p    float64
		want string
	}{
		{0.1, "review now"},
		{0.29, "review now"},
		{0.3, "review today"},
		{0.59, "review today"},
		{0.6, "stable"},
		{0.99, "stable"},
	}
	for _, c := range cases {
		if got := suggestionFor(c.p); got != c.want {
			t.Errorf("suggestionFor(%f) = %q, want %q", c.p, got, c.want)
		}
	}
}

func TestStatusForLevelTracksMasteryLevel(t *testing.T) {
	cases := []struct {
		level int
		want  Status
	}{
		{0, StatusNew},
		{1, StatusLearning},
		{2, StatusLearning},
		{3, StatusReviewing},
		{4, StatusReviewing},
		{5, StatusMastered},
	}
	for _, c := range cases {
		if got := statusForLevel(c.level); got != c.want {
			t.Errorf("statusForLevel(%d) = %q, want %q", c.level, got, c.want)
		}
	}
}
