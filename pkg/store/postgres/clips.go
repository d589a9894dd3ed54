package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sermonforge/clipsuggest/internal/clipengine"
)

// SaveSuggestions implements [clipengine.ClipStore]. Within one transaction
// it soft-deletes every non-deleted auto clip for sermonID, inserts
// newClips in their place, then sets the sermon's status to suggested and
// clears its error message.
func (s *Store) SaveSuggestions(ctx context.Context, sermonID int64, newClips []clipengine.Clip) (softDeleted, inserted int, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres store: save suggestions: begin: %w", wrapTransient(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const softDeleteQ = `
		UPDATE clips
		SET    deleted_at = now(), updated_at = now()
		WHERE  sermon_id = $1 AND source = 'auto' AND deleted_at IS NULL`

	tag, err := tx.Exec(ctx, softDeleteQ, sermonID)
	if err != nil {
		return 0, 0, fmt.Errorf("postgres store: save suggestions: soft-delete: %w", wrapTransient(err))
	}
	softDeleted = int(tag.RowsAffected())

	const insertQ = `
		INSERT INTO clips
		    (sermon_id, start_ms, end_ms, source, score, rationale, use_llm, llm_trim, trim_applied, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, c := range newClips {
		var trimJSON []byte
		if c.LLMTrim != nil {
			trimJSON, err = json.Marshal(c.LLMTrim)
			if err != nil {
				return 0, 0, fmt.Errorf("postgres store: save suggestions: marshal trim: %w", err)
			}
		}
		if _, err = tx.Exec(ctx, insertQ,
			sermonID, c.StartMS, c.EndMS, string(c.Source), c.Score, c.Rationale, c.UseLLM, trimJSON, c.TrimApplied, string(c.Status),
		); err != nil {
			return 0, 0, fmt.Errorf("postgres store: save suggestions: insert: %w", wrapTransient(err))
		}
	}
	inserted = len(newClips)

	const updateSermonQ = `
		UPDATE sermons
		SET    status = 'suggested', error_message = '', updated_at = now()
		WHERE  id = $1`

	if _, err = tx.Exec(ctx, updateSermonQ, sermonID); err != nil {
		return 0, 0, fmt.Errorf("postgres store: save suggestions: update sermon: %w", wrapTransient(err))
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("postgres store: save suggestions: commit: %w", wrapTransient(err))
	}

	return softDeleted, inserted, nil
}
