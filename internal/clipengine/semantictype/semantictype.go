// Package semantictype classifies clip candidates into narrative roles
// (exposition, illustration, application, conclusion) by comparing each
// candidate's embedding centroid against four fixed reference vectors.
//
// The reference vectors are process-wide, lazily-initialised, and immutable
// after first load — multiple concurrent callers racing to derive them for
// the first time collapse onto a single outbound embedding call via
// singleflight, rather than each issuing its own redundant request.
package semantictype

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sermonforge/clipsuggest/pkg/provider/embeddings"
)

// Label identifies a narrative role a clip candidate can be classified into.
type Label string

const (
	Exposition   Label = "exposition"
	Illustration Label = "illustration"
	Application  Label = "application"
	Conclusion   Label = "conclusion"
)

// Multiplier returns the heuristic-score multiplier associated with label.
func (l Label) Multiplier() float64 {
	switch l {
	case Application:
		return 1.5
	case Illustration:
		return 1.2
	case Conclusion:
		return 1.0
	case Exposition:
		return 0.7
	default:
		return 1.0
	}
}

// referenceSentences gives one representative Spanish sermon sentence per
// label, used to derive the reference vectors.
var referenceSentences = map[Label]string{
	Exposition:   "La Biblia nos ensena en este pasaje un principio fundamental sobre la naturaleza de Dios.",
	Illustration: "Recuerdo la historia de un hombre que perdio todo y encontro esperanza en medio de la tormenta.",
	Application:  "Hoy quiero que apliques esto en tu vida: toma esta verdad y vivela en tu familia y tu trabajo.",
	Conclusion:   "En conclusion, que el Senor nos ayude a caminar en obediencia desde este dia en adelante.",
}

var labelOrder = []Label{Exposition, Illustration, Application, Conclusion}

// Classifier classifies candidate centroids against the four reference
// vectors, lazily deriving them from the configured embeddings provider on
// first use.
type Classifier struct {
	provider embeddings.Provider

	group singleflight.Group
	mu    sync.RWMutex
	refs  map[Label][]float32
}

// NewClassifier returns a Classifier backed by provider. Reference vectors
// are not computed until the first call to [Classifier.Classify].
func NewClassifier(provider embeddings.Provider) *Classifier {
	return &Classifier{provider: provider}
}

// ensureRefs lazily derives the four reference vectors, collapsing
// concurrent first-load races onto a single outbound embedding call.
func (c *Classifier) ensureRefs(ctx context.Context) (map[Label][]float32, error) {
	c.mu.RLock()
	if c.refs != nil {
		defer c.mu.RUnlock()
		return c.refs, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("refs", func() (any, error) {
		c.mu.RLock()
		if c.refs != nil {
			defer c.mu.RUnlock()
			return c.refs, nil
		}
		c.mu.RUnlock()

		texts := make([]string, len(labelOrder))
		for i, label := range labelOrder {
			texts[i] = referenceSentences[label]
		}

		vectors, err := c.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("semantictype: embed reference sentences: %w", err)
		}

		refs := make(map[Label][]float32, len(labelOrder))
		for i, label := range labelOrder {
			refs[label] = vectors[i]
		}

		c.mu.Lock()
		c.refs = refs
		c.mu.Unlock()

		return refs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[Label][]float32), nil
}

// Classify returns the label whose reference vector is closest (by cosine
// similarity) to centroid, and that similarity score.
func (c *Classifier) Classify(ctx context.Context, centroid []float32) (Label, float64, error) {
	refs, err := c.ensureRefs(ctx)
	if err != nil {
		return "", 0, err
	}

	var best Label
	var bestScore float64 = -1

	for _, label := range labelOrder {
		score := cosineSimilarity(centroid, refs[label])
		if score > bestScore {
			best = label
			bestScore = score
		}
	}

	return best, bestScore, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
