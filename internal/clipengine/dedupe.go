package clipengine

import "sort"

// dedupeOverlap sorts candidates by fused score descending and greedily
// accepts each unless it overlaps a previously accepted candidate by more
// than cfg.OverlapDedupeRatio of the shorter candidate's duration.
func dedupeOverlap(candidates []Candidate, cfg Config) []Candidate {
	order := sortedByScoreDesc(candidates)

	var accepted []Candidate
	for _, idx := range order {
		c := candidates[idx]
		overlaps := false
		for _, a := range accepted {
			if overlapRatio(c, a) > cfg.OverlapDedupeRatio {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// overlapRatio returns the overlap between a and b's millisecond spans
// divided by the shorter of the two durations.
func overlapRatio(a, b Candidate) float64 {
	start := a.StartMS
	if b.StartMS > start {
		start = b.StartMS
	}
	end := a.EndMS
	if b.EndMS < end {
		end = b.EndMS
	}
	overlapMS := end - start
	if overlapMS <= 0 {
		return 0
	}

	durA := a.DurationMS()
	durB := b.DurationMS()
	shorter := durA
	if durB < shorter {
		shorter = durB
	}
	if shorter <= 0 {
		return 0
	}
	return float64(overlapMS) / float64(shorter)
}

// dedupeSemantic walks the first cfg.SemanticDedupeMax candidates (sorted by
// fused score descending) and rejects any whose centroid is at least
// cfg.SemanticDedupeSimilarity cosine-similar to a previously retained
// centroid. Candidates without a centroid bypass the check. The surviving
// set is truncated to cfg.MaxSuggestions.
func dedupeSemantic(candidates []Candidate, cfg Config) []Candidate {
	order := sortedByScoreDesc(candidates)
	if len(order) > cfg.SemanticDedupeMax {
		order = order[:cfg.SemanticDedupeMax]
	}

	var accepted []Candidate
	var centroids [][]float32
	for _, idx := range order {
		c := candidates[idx]
		if c.Centroid == nil {
			accepted = append(accepted, c)
			continue
		}

		tooSimilar := false
		for _, ref := range centroids {
			if cosineSimilarity(c.Centroid, ref) >= cfg.SemanticDedupeSimilarity {
				tooSimilar = true
				break
			}
		}
		if tooSimilar {
			continue
		}

		accepted = append(accepted, c)
		centroids = append(centroids, c.Centroid)
	}

	if len(accepted) > cfg.MaxSuggestions {
		accepted = accepted[:cfg.MaxSuggestions]
	}
	return accepted
}

// sortedByScoreDesc returns candidate indices ordered by FusedScore
// descending.
func sortedByScoreDesc(candidates []Candidate) []int {
	order := make([]int, len(candidates))
	for i := range candidates {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return candidates[order[a]].FusedScore > candidates[order[b]].FusedScore
	})
	return order
}
