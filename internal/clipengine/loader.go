package clipengine

import (
	"context"
	"fmt"
)

// loadTranscript loads all non-deleted segments for sermonID ordered by
// StartMS ascending. Fails with [ErrEmptyTranscript] when zero rows are
// returned.
func loadTranscript(ctx context.Context, store TranscriptStore, sermonID int64) ([]TranscriptSegment, error) {
	segments, err := store.LoadSegments(ctx, sermonID)
	if err != nil {
		return nil, fmt.Errorf("clipengine: transcript loader: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("clipengine: transcript loader: %w", ErrEmptyTranscript)
	}
	return segments, nil
}

// attachEmbeddings fetches embeddings for the given segments and attaches
// them in place. Returns complete=true iff every segment received an
// embedding; partial attachment is permitted and downstream stages degrade
// gracefully when complete is false.
func attachEmbeddings(ctx context.Context, store EmbeddingStore, segments []TranscriptSegment) (complete bool, err error) {
	ids := make([]int64, len(segments))
	for i, s := range segments {
		ids[i] = s.ID
	}

	embeddings, err := store.LoadEmbeddings(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("clipengine: embedding attacher: %w", err)
	}

	complete = true
	for i := range segments {
		vec, ok := embeddings[segments[i].ID]
		if !ok {
			complete = false
			continue
		}
		segments[i].Embedding = vec
	}
	return complete, nil
}
