package clipengine

// detectBreakpoints produces a sorted, strictly increasing list of split
// indices partitioning segments into semantically or acoustically coherent
// windows. The result always includes 0 and len(segments) as sentinels.
//
// At the boundary between segment i-1 and i, a breakpoint is inserted if the
// inter-segment gap exceeds cfg.LongGapMS, or — when both segments carry
// embeddings — if their cosine similarity falls below
// cfg.SemanticBreakpointSimilarity.
func detectBreakpoints(segments []TranscriptSegment, cfg Config) []int {
	breakpoints := []int{0}

	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		gap := cur.StartMS - prev.EndMS

		if gap > cfg.LongGapMS {
			breakpoints = append(breakpoints, i)
			continue
		}

		if prev.Embedding != nil && cur.Embedding != nil {
			if cosineSimilarity(prev.Embedding, cur.Embedding) < cfg.SemanticBreakpointSimilarity {
				breakpoints = append(breakpoints, i)
			}
		}
	}

	breakpoints = append(breakpoints, len(segments))
	return breakpoints
}
