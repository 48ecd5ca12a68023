package replay

import (
	"context"
	"fmt"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/decision"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
)

// #region types

// Result captures the outcome of replaying one event through the engine.
type Result struct {
	EventIndex  int
	DecisionID  string
	ActionIndex int
	Strategy    decision.Strategy
	FiredRules  []decision.FiredRule
	Fatigue     float64
	Attention   float64
	Err         string // non-empty if the event failed; replay continues
}

// Summary aggregates a replay run.
type Summary struct {
	TotalEvents  int
	Decisions    int
	Failures     int
	RestSuggests int
	RuleCounts   map[string]int
}

// Mismatch is one failed fixture expectation.
type Mismatch struct {
	EventIndex int
	Field      string
	Want       string
	Got        string
}

// #endregion types

// #region run

// Run feeds the fixture's events through the engine in order, building
// each user's trailing outcome window from the fixture itself so the
// replay is self-contained. A failed event is recorded and replay moves
// on, mirroring how the live path isolates per-event failures.
func Run(ctx context.Context, eng *control.Engine, f *Fixture) []Result {
	results := make([]Result, 0, len(f.Events))
	histories := make(map[string][]perception.Outcome)

	for i, fe := range f.Events {
		histories[fe.UserID] = append(histories[fe.UserID], perception.Outcome{
			TSMs: fe.TSMs, Correct: fe.Correct, ResponseTimeMs: fe.ResponseTimeMs,
		})
		window := histories[fe.UserID]
		if len(window) > 20 {
			window = window[len(window)-20:]
		}

		res, err := eng.ProcessEvent(ctx, control.ProcessEventInput{
			Event:   fe.ToRawEvent(),
			Word:    fe.ToWordMetadata(),
			History: append([]perception.Outcome(nil), window...),
		})
		if err != nil {
			results = append(results, Result{EventIndex: i, Err: err.Error()})
			continue
		}

		view, err := eng.GetUserState(ctx, fe.UserID)
		if err != nil {
			results = append(results, Result{EventIndex: i, Err: err.Error()})
			continue
		}

		results = append(results, Result{
			EventIndex:  i,
			DecisionID:  res.DecisionID,
			ActionIndex: res.Explanation.ActionIndex,
			Strategy:    res.Strategy,
			FiredRules:  res.Explanation.FiredRules,
			Fatigue:     view.State.Fatigue,
			Attention:   view.State.Attention,
		})
	}
	return results
}

// #endregion run

// #region check

// Check compares replay results against the fixture's expectations and
// returns every mismatch (empty = all expectations held).
func Check(f *Fixture, results []Result) []Mismatch {
	var out []Mismatch
	byIndex := make(map[int]Result, len(results))
	for _, r := range results {
		byIndex[r.EventIndex] = r
	}

	difficultyRank := map[string]int{"easy": 0, "mid": 1, "hard": 2}

	for _, exp := range f.Expected {
		r, ok := byIndex[exp.EventIndex]
		if !ok {
			out = append(out, Mismatch{EventIndex: exp.EventIndex, Field: "event", Want: "a result", Got: "none"})
			continue
		}
		if r.Err != "" {
			out = append(out, Mismatch{EventIndex: exp.EventIndex, Field: "error", Want: "", Got: r.Err})
			continue
		}
		if exp.MaxBatchSize != nil && r.Strategy.BatchSize > *exp.MaxBatchSize {
			out = append(out, Mismatch{exp.EventIndex, "batch_size", fmt.Sprintf("<= %d", *exp.MaxBatchSize), fmt.Sprintf("%d", r.Strategy.BatchSize)})
		}
		if exp.MaxDifficulty != nil && difficultyRank[r.Strategy.Difficulty] > difficultyRank[*exp.MaxDifficulty] {
			out = append(out, Mismatch{exp.EventIndex, "difficulty", "<= " + *exp.MaxDifficulty, r.Strategy.Difficulty})
		}
		if exp.SuggestRest != nil && r.Strategy.SuggestRest != *exp.SuggestRest {
			out = append(out, Mismatch{exp.EventIndex, "suggest_rest", fmt.Sprintf("%v", *exp.SuggestRest), fmt.Sprintf("%v", r.Strategy.SuggestRest)})
		}
		for _, name := range exp.FiredRuleNames {
			found := false
			for _, rule := range r.FiredRules {
				if rule.Name == name {
					found = true
					break
				}
			}
			if !found {
				out = append(out, Mismatch{exp.EventIndex, "fired_rules", name, fmt.Sprintf("%v", r.FiredRules)})
			}
		}
		if exp.MaxFatigue != nil && r.Fatigue > *exp.MaxFatigue {
			out = append(out, Mismatch{exp.EventIndex, "fatigue", fmt.Sprintf("<= %v", *exp.MaxFatigue), fmt.Sprintf("%v", r.Fatigue)})
		}
		if exp.MinFatigue != nil && r.Fatigue < *exp.MinFatigue {
			out = append(out, Mismatch{exp.EventIndex, "fatigue", fmt.Sprintf(">= %v", *exp.MinFatigue), fmt.Sprintf("%v", r.Fatigue)})
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalEvents: len(results), RuleCounts: make(map[string]int)}
	for _, r := range results {
		if r.Err != "" {
			s.Failures++
			continue
		}
		s.Decisions++
		if r.Strategy.SuggestRest {
			s.RestSuggests++
		}
		for _, rule := range r.FiredRules {
			s.RuleCounts[rule.Name]++
		}
	}
	return s
}

// #endregion check
