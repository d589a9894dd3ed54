package postgres

import (
	"context"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"
)

// LoadEmbeddings implements [clipengine.EmbeddingStore]. It returns a
// mapping from segment id to embedding vector for whichever of segmentIDs
// have a stored embedding; absent keys signal an unembedded segment.
func (s *Store) LoadEmbeddings(ctx context.Context, segmentIDs []int64) (map[int64][]float32, error) {
	out := make(map[int64][]float32, len(segmentIDs))
	if len(segmentIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT segment_id, embedding
		FROM   transcript_embeddings
		WHERE  segment_id = ANY($1)`

	rows, err := s.pool.Query(ctx, q, segmentIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres store: load embeddings: %w", wrapTransient(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var vec pgvector.Vector
		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("postgres store: scan embeddings: %w", wrapTransient(err))
		}
		out[id] = vec.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: scan embeddings: %w", wrapTransient(err))
	}
	return out, nil
}

// SaveEmbedding upserts the embedding for a single segment. Called by the
// upstream transcription/embedding pipeline, which runs ahead of and
// separately from the clip suggestion engine (which only reads embeddings
// via LoadEmbeddings).
func (s *Store) SaveEmbedding(ctx context.Context, segmentID int64, embedding []float32) error {
	const q = `
		INSERT INTO transcript_embeddings (segment_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (segment_id) DO UPDATE SET embedding = EXCLUDED.embedding`

	_, err := s.pool.Exec(ctx, q, segmentID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("postgres store: save embedding: %w", wrapTransient(err))
	}
	return nil
}
