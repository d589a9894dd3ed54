package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sermonforge/clipsuggest/internal/clipengine"
)

// LoadSermon implements [clipengine.TranscriptStore]. It returns the sermon
// row including its DeletedAt state so the engine can detect concurrent
// soft-deletion.
func (s *Store) LoadSermon(ctx context.Context, sermonID int64) (clipengine.Sermon, error) {
	const q = `
		SELECT id, title, preacher, duration_sec, status, progress, error_message, deleted_at
		FROM   sermons
		WHERE  id = $1`

	var sermon clipengine.Sermon
	var status string
	err := s.pool.QueryRow(ctx, q, sermonID).Scan(
		&sermon.ID,
		&sermon.Title,
		&sermon.Preacher,
		&sermon.DurationSec,
		&status,
		&sermon.Progress,
		&sermon.ErrorMessage,
		&sermon.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return clipengine.Sermon{}, fmt.Errorf("postgres store: load sermon: %w", clipengine.ErrSermonNotFound)
	}
	if err != nil {
		return clipengine.Sermon{}, fmt.Errorf("postgres store: load sermon: %w", wrapTransient(err))
	}
	sermon.Status = clipengine.SermonStatus(status)
	return sermon, nil
}

// MarkError implements [clipengine.ClipStore]. It records a terminal
// failure on the sermon row.
func (s *Store) MarkError(ctx context.Context, sermonID int64, msg string) error {
	const q = `
		UPDATE sermons
		SET    status = 'error', error_message = $2, updated_at = now()
		WHERE  id = $1`

	if _, err := s.pool.Exec(ctx, q, sermonID, msg); err != nil {
		return fmt.Errorf("postgres store: mark error: %w", wrapTransient(err))
	}
	return nil
}
