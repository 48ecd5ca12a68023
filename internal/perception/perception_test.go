package perception

import (
	"math"
	"testing"
)

func TestBuildFeatureVectorIsFiniteAndComplete(t *testing.T) {
	event := RawEvent{
		UserID:           "u1",
		SessionID:        "s1",
		WordID:           "w1",
		Correct:          true,
		ResponseTimeMs:   1200,
		TSMs:             1_700_000_000_000,
		SessionStartTSMs: 1_699_999_000_000,
	}
	prior := PriorState{Attention: 0.8, Fatigue: 0.1, Mem: 0.6, Speed: 0.5, Motivation: 0.7}
	window := RecentWindow{ErrorRate: 0.2, MeanRTMs: 1500, RTTrend: 0.1, AccuracyTrend: 0.05, RepeatErrorCount: 1, InteractionDensity: 0.3}
	word := WordMetadata{ID: "w1", Length: 6, FrequencyBand: 2, POS: "noun", Novelty: 0.4}.WithDifficulty(0.6)

	vec, summary := BuildFeatureVector(event, prior, window, word)

	for i, x := range vec {
		if !isFinite(x) {
			t.Fatalf("component %d is not finite: %v", i, x)
		}
	}
	if summary.ReducedConfidence {
		t.Fatalf("expected no reduced confidence for clean input")
	}
	if summary.SessionAgeMs != 1_000_000 {
		t.Fatalf("expected session age 1000000ms, got %d", summary.SessionAgeMs)
	}
}

func TestBuildFeatureVectorHandlesNaNAndMissing(t *testing.T) {
	event := RawEvent{UserID: "u1", TSMs: 1_700_000_000_000}
	prior := PriorState{Attention: math.NaN(), Fatigue: math.Inf(1), Mem: 0.5, Speed: 0.5}
	window := RecentWindow{}
	word := WordMetadata{}

	vec, summary := BuildFeatureVector(event, prior, window, word)

	for i, x := range vec {
		if !isFinite(x) {
			t.Fatalf("component %d is not finite: %v", i, x)
		}
	}
	if !summary.ReducedConfidence {
		t.Fatalf("expected reduced confidence when NaN/Inf inputs are replaced")
	}
}

func TestBuildFeatureVectorVectorIsFixedWidth(t *testing.T) {
	vec, _ := BuildFeatureVector(RawEvent{UserID: "u1", TSMs: 1}, PriorState{}, RecentWindow{}, WordMetadata{})
	if len(vec) != Dimension {
		t.Fatalf("expected %d components, got %d", Dimension, len(vec))
	}
}

func TestComputeRecentWindowEmptyHistory(t *testing.T) {
	w := ComputeRecentWindow(nil, 0, 0)
	if w.ErrorRate != 0.5 {
		t.Fatalf("expected neutral error rate for empty history, got %v", w.ErrorRate)
	}
}

func TestComputeRecentWindowTracksRepeatErrors(t *testing.T) {
	history := []Outcome{
		{Correct: true, ResponseTimeMs: 1000},
		{Correct: false, ResponseTimeMs: 1000},
		{Correct: false, ResponseTimeMs: 1200},
		{Correct: true, ResponseTimeMs: 900},
	}
	w := ComputeRecentWindow(history, 2, 1)
	if w.RepeatErrorCount != 1 {
		t.Fatalf("expected 1 repeat-error run, got %d", w.RepeatErrorCount)
	}
	if w.ErrorRate != 0.5 {
		t.Fatalf("expected error rate 0.5, got %v", w.ErrorRate)
	}
}

func TestRawEventValidate(t *testing.T) {
	if err := (RawEvent{}).Validate(); err == nil {
		t.Fatalf("expected error for missing userId and ts")
	}
	if err := (RawEvent{UserID: "u1"}).Validate(); err == nil {
		t.Fatalf("expected error for missing ts")
	}
	if err := (RawEvent{UserID: "u1", TSMs: 1}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
