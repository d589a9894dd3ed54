package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sermonforge/clipsuggest/internal/clipengine"
)

// LoadSegments implements [clipengine.TranscriptStore]. It returns the
// non-deleted segments of sermonID ordered by start_ms ascending.
func (s *Store) LoadSegments(ctx context.Context, sermonID int64) ([]clipengine.TranscriptSegment, error) {
	const q = `
		SELECT id, sermon_id, start_ms, end_ms, text, deleted_at
		FROM   transcript_segments
		WHERE  sermon_id = $1 AND deleted_at IS NULL
		ORDER  BY start_ms`

	rows, err := s.pool.Query(ctx, q, sermonID)
	if err != nil {
		return nil, fmt.Errorf("postgres store: load segments: %w", wrapTransient(err))
	}

	segments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (clipengine.TranscriptSegment, error) {
		var seg clipengine.TranscriptSegment
		if err := row.Scan(&seg.ID, &seg.SermonID, &seg.StartMS, &seg.EndMS, &seg.Text, &seg.DeletedAt); err != nil {
			return clipengine.TranscriptSegment{}, err
		}
		return seg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan segments: %w", wrapTransient(err))
	}
	return segments, nil
}
