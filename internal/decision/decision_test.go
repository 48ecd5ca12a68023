package decision

import "testing"

func TestMapNoGuardrailsFiresNoRules(t *testing.T) {
	_, exp := Map(5, GuardrailInput{Attention: 0.8, Fatigue: 0.1, Motivation: 0.2}, false)
	if len(exp.FiredRules) != 0 {
		t.Fatalf("expected no fired rules, got %v", exp.FiredRules)
	}
}

func TestMapFatigueHighSuggestsRestAndCapsBatch(t *testing.T) {
	strategy, exp := Map(10, GuardrailInput{Attention: 0.8, Fatigue: 0.9, Motivation: 0.2}, false)
	if !strategy.SuggestRest {
		t.Fatalf("expected suggest_rest true")
	}
	if strategy.BatchSize > 5 {
		t.Fatalf("expected batch size <= 5, got %d", strategy.BatchSize)
	}
	if strategy.HintLevel < 1 {
		t.Fatalf("expected hint level >= 1, got %d", strategy.HintLevel)
	}
	if len(exp.FiredRules) != 1 || exp.FiredRules[0].Name != "fatigue_high" {
		t.Fatalf("expected only fatigue_high to fire, got %v", exp.FiredRules)
	}
}

func TestMapFatigueMidAndHighAreMutuallyExclusive(t *testing.T) {
	_, exp := Map(10, GuardrailInput{Attention: 0.8, Fatigue: 0.7, Motivation: 0.2}, false)
	for _, r := range exp.FiredRules {
		if r.Name == "fatigue_high" {
			t.Fatalf("fatigue_high should not fire at F=0.7")
		}
	}
	if len(exp.FiredRules) != 1 || exp.FiredRules[0].Name != "fatigue_mid" {
		t.Fatalf("expected only fatigue_mid to fire, got %v", exp.FiredRules)
	}
}

func TestMapMotivationLowForcesEasy(t *testing.T) {
	strategy, exp := Map(10, GuardrailInput{Attention: 0.8, Fatigue: 0.1, Motivation: -0.9}, false)
	if strategy.Difficulty != difficultyEasy {
		t.Fatalf("expected difficulty forced to easy, got %s", strategy.Difficulty)
	}
	if strategy.NewRatio > 0.2 {
		t.Fatalf("expected new_ratio <= 0.2, got %v", strategy.NewRatio)
	}
	found := false
	for _, r := range exp.FiredRules {
		if r.Name == "motivation_low" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected motivation_low to fire")
	}
}

func TestMapAttentionLowCapsBatchAndHints(t *testing.T) {
	strategy, exp := Map(10, GuardrailInput{Attention: 0.1, Fatigue: 0.1, Motivation: 0.2}, false)
	if strategy.BatchSize > 5 {
		t.Fatalf("expected batch size <= 5, got %d", strategy.BatchSize)
	}
	if strategy.HintLevel < 1 {
		t.Fatalf("expected hint level >= 1, got %d", strategy.HintLevel)
	}
	if len(exp.FiredRules) != 1 || exp.FiredRules[0].Name != "attention_low" {
		t.Fatalf("expected only attention_low to fire, got %v", exp.FiredRules)
	}
}

func TestMapFiredRulesOrderIsDeterministic(t *testing.T) {
	_, exp := Map(10, GuardrailInput{Attention: 0.1, Fatigue: 0.9, Motivation: -0.9}, false)
	if len(exp.FiredRules) != 3 {
		t.Fatalf("expected 3 rules to fire, got %d: %v", len(exp.FiredRules), exp.FiredRules)
	}
	wantOrder := []string{"fatigue_high", "motivation_low", "attention_low"}
	for i, name := range wantOrder {
		if exp.FiredRules[i].Name != name {
			t.Fatalf("rule %d: expected %s, got %s", i, name, exp.FiredRules[i].Name)
		}
	}
}

func TestMapReducedConfidencePropagates(t *testing.T) {
	_, exp := Map(0, GuardrailInput{}, true)
	if !exp.ReducedConfidence {
		t.Fatalf("expected ReducedConfidence to propagate")
	}
}

func TestStrategyForActionClampsOutOfRange(t *testing.T) {
	s := StrategyForAction(-5)
	if s != actionTable[0] {
		t.Fatalf("expected clamp to first row for negative index")
	}
	s = StrategyForAction(999)
	if s != actionTable[len(actionTable)-1] {
		t.Fatalf("expected clamp to last row for large index")
	}
}
