package clipengine

import "testing"

func TestFuseScores_RescalesIntoZeroToHundred(t *testing.T) {
	candidates := []Candidate{
		{HeuristicScore: 0},
		{HeuristicScore: 5},
		{HeuristicScore: 10},
	}
	fuseScores(candidates)

	if candidates[0].FusedScore != 0 {
		t.Errorf("lowest candidate FusedScore = %.2f, want 0", candidates[0].FusedScore)
	}
	if candidates[2].FusedScore != 100 {
		t.Errorf("highest candidate FusedScore = %.2f, want 100", candidates[2].FusedScore)
	}
	if candidates[1].FusedScore != 50 {
		t.Errorf("midpoint candidate FusedScore = %.2f, want 50", candidates[1].FusedScore)
	}
}

func TestFuseScores_FlatScoresFallBackToFifty(t *testing.T) {
	candidates := []Candidate{{HeuristicScore: 3}, {HeuristicScore: 3}}
	fuseScores(candidates)

	for i, c := range candidates {
		if c.FusedScore != 50 {
			t.Errorf("candidate %d FusedScore = %.2f, want 50 when all heuristic scores are equal", i, c.FusedScore)
		}
	}
}

func TestFuseScores_BlendsLLMScoreAndAdoptsReason(t *testing.T) {
	llmScore := 90.0
	candidates := []Candidate{
		{HeuristicScore: 0, Rationale: "heuristic only"},
		{HeuristicScore: 10, LLMScore: &llmScore, LLMReason: "great hook", Rationale: "heuristic only"},
	}
	fuseScores(candidates)

	want := 0.3*100 + 0.7*90
	if diff := candidates[1].FusedScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("FusedScore = %.4f, want %.4f", candidates[1].FusedScore, want)
	}
	if candidates[1].Rationale != "great hook" {
		t.Errorf("Rationale = %q, want LLM reason to override heuristic rationale", candidates[1].Rationale)
	}
}

func TestFuseScores_EmptyInputNoPanic(t *testing.T) {
	fuseScores(nil)
}
