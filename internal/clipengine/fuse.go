package clipengine

// fuseScores rescales heuristic scores across candidates to [0,100] and
// blends them with LLM scores where available. When no candidate carries an
// LLM score, FusedScore is set to the rescaled heuristic score unchanged and
// Rationale is left as the heuristic rationale.
func fuseScores(candidates []Candidate) {
	if len(candidates) == 0 {
		return
	}

	lo, hi := candidates[0].HeuristicScore, candidates[0].HeuristicScore
	for _, c := range candidates {
		if c.HeuristicScore < lo {
			lo = c.HeuristicScore
		}
		if c.HeuristicScore > hi {
			hi = c.HeuristicScore
		}
	}

	rescale := func(v float64) float64 {
		if hi-lo < 1e-9 {
			return 50
		}
		return (v - lo) / (hi - lo) * 100
	}

	for i := range candidates {
		c := &candidates[i]
		scaled := rescale(c.HeuristicScore)

		if c.LLMScore != nil {
			c.FusedScore = 0.3*scaled + 0.7*(*c.LLMScore)
			if c.LLMReason != "" {
				c.Rationale = c.LLMReason
			}
		} else {
			c.FusedScore = scaled
		}
	}
}
