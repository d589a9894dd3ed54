package clipengine

import (
	"context"
	"fmt"
	"sort"

	"github.com/sermonforge/clipsuggest/internal/clipengine/semantictype"
)

// centroidPrefix accelerates per-candidate centroid computation to O(1)
// after an O(N) preprocessing pass, by keeping a running sum of embedded
// segment vectors and a running count of how many segments in [0,i)
// contributed to it.
type centroidPrefix struct {
	sums   [][]float64
	counts []int
}

func buildCentroidPrefix(segments []TranscriptSegment, dim int) centroidPrefix {
	p := centroidPrefix{
		sums:   make([][]float64, len(segments)+1),
		counts: make([]int, len(segments)+1),
	}
	p.sums[0] = make([]float64, dim)
	for i, s := range segments {
		next := make([]float64, dim)
		copy(next, p.sums[i])
		count := p.counts[i]
		if len(s.Embedding) == dim {
			for j, v := range s.Embedding {
				next[j] += float64(v)
			}
			count++
		}
		p.sums[i+1] = next
		p.counts[i+1] = count
	}
	return p
}

// centroidFor returns the mean embedding of segments[startIdx:endIdx+1]
// considering only segments that carry an embedding, or nil if none do.
func (p centroidPrefix) centroidFor(startIdx, endIdx int) []float32 {
	count := p.counts[endIdx+1] - p.counts[startIdx]
	if count == 0 {
		return nil
	}
	dim := len(p.sums[0])
	out := make([]float32, dim)
	for j := 0; j < dim; j++ {
		out[j] = float32((p.sums[endIdx+1][j] - p.sums[startIdx][j]) / float64(count))
	}
	return out
}

// classifySemanticTypes labels the top cfg.SemanticTypeMax candidates (by
// heuristic score) with a narrative-role multiplier, enabled only when
// embeddings are complete for the sermon.
func classifySemanticTypes(ctx context.Context, segments []TranscriptSegment, candidates []Candidate, cfg Config, classifier *semantictype.Classifier) error {
	if classifier == nil || len(segments) == 0 || len(segments[0].Embedding) == 0 {
		return nil
	}

	dim := len(segments[0].Embedding)
	for _, s := range segments {
		if len(s.Embedding) > 0 && len(s.Embedding) != dim {
			return fmt.Errorf("clipengine: semantic classifier: inconsistent embedding dimensions")
		}
	}

	prefix := buildCentroidPrefix(segments, dim)

	order := make([]int, len(candidates))
	for i := range candidates {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return candidates[order[a]].HeuristicScore > candidates[order[b]].HeuristicScore
	})
	if len(order) > cfg.SemanticTypeMax {
		order = order[:cfg.SemanticTypeMax]
	}

	for _, idx := range order {
		c := &candidates[idx]
		c.Centroid = prefix.centroidFor(c.StartIdx, c.EndIdx)
		if c.Centroid == nil {
			continue
		}
		label, score, err := classifier.Classify(ctx, c.Centroid)
		if err != nil {
			return fmt.Errorf("clipengine: semantic classifier: %w", err)
		}
		c.SemanticType = string(label)
		c.SemanticTypeScore = score
		c.HeuristicScore *= label.Multiplier()
		c.Rationale = c.HeuristicRationale + fmt.Sprintf("; type=%s", label)
	}

	return nil
}
