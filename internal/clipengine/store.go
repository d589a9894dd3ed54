package clipengine

import "context"

// TranscriptStore is the narrow persistence surface the transcript loader
// depends on. Implementations must return only non-deleted segments.
type TranscriptStore interface {
	// LoadSegments returns the non-deleted segments of sermonID ordered by
	// StartMS ascending.
	LoadSegments(ctx context.Context, sermonID int64) ([]TranscriptSegment, error)

	// LoadSermon returns the sermon row, including its DeletedAt state so
	// callers can detect concurrent soft-deletion.
	LoadSermon(ctx context.Context, sermonID int64) (Sermon, error)
}

// EmbeddingStore is the narrow persistence surface the embedding attacher
// depends on.
type EmbeddingStore interface {
	// LoadEmbeddings returns a mapping from segment id to embedding vector.
	// Absent keys are permitted; callers must tolerate partial results.
	LoadEmbeddings(ctx context.Context, segmentIDs []int64) (map[int64][]float32, error)
}

// ClipStore is the narrow persistence surface the persistence stage depends
// on. SaveSuggestions must execute atomically: soft-delete the sermon's
// prior auto-suggestions and insert the new set within one transaction,
// followed by updating the sermon's status.
type ClipStore interface {
	// SaveSuggestions soft-deletes all non-deleted auto clips for sermonID
	// and inserts newClips in their place, all within one transaction. It
	// then sets the sermon's status to suggested and clears its error
	// message. Returns the number of clips soft-deleted and inserted.
	SaveSuggestions(ctx context.Context, sermonID int64, newClips []Clip) (softDeleted, inserted int, err error)

	// MarkError records a terminal failure on the sermon row: status=error,
	// error_message=msg (already truncated to 1000 bytes by the caller).
	MarkError(ctx context.Context, sermonID int64, msg string) error
}
