package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlSermons = `
CREATE TABLE IF NOT EXISTS sermons (
    id            BIGSERIAL    PRIMARY KEY,
    title         TEXT         NOT NULL DEFAULT '',
    preacher      TEXT         NOT NULL DEFAULT '',
    duration_sec  INTEGER      NOT NULL DEFAULT 0,
    status        TEXT         NOT NULL DEFAULT 'pending',
    progress      INTEGER      NOT NULL DEFAULT 0,
    error_message TEXT         NOT NULL DEFAULT '',
    deleted_at    TIMESTAMPTZ,
    created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlTranscriptSegments = `
CREATE TABLE IF NOT EXISTS transcript_segments (
    id         BIGSERIAL    PRIMARY KEY,
    sermon_id  BIGINT       NOT NULL REFERENCES sermons (id) ON DELETE CASCADE,
    start_ms   INTEGER      NOT NULL,
    end_ms     INTEGER      NOT NULL,
    text       TEXT         NOT NULL DEFAULT '',
    deleted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_transcript_segments_sermon_id
    ON transcript_segments (sermon_id, start_ms);
`

// ddlTranscriptEmbeddings returns the embeddings table DDL with the vector
// dimension baked into the column type.
func ddlTranscriptEmbeddings(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS transcript_embeddings (
    segment_id BIGINT       PRIMARY KEY REFERENCES transcript_segments (id) ON DELETE CASCADE,
    embedding  vector(%d)   NOT NULL
);
`, embeddingDimensions)
}

const ddlClips = `
CREATE TABLE IF NOT EXISTS clips (
    id           BIGSERIAL    PRIMARY KEY,
    sermon_id    BIGINT       NOT NULL REFERENCES sermons (id) ON DELETE CASCADE,
    start_ms     INTEGER      NOT NULL,
    end_ms       INTEGER      NOT NULL,
    source       TEXT         NOT NULL,
    score        DOUBLE PRECISION,
    rationale    TEXT         NOT NULL DEFAULT '',
    use_llm      BOOLEAN      NOT NULL DEFAULT false,
    llm_trim     JSONB,
    trim_applied BOOLEAN      NOT NULL DEFAULT false,
    status       TEXT         NOT NULL DEFAULT 'pending',
    deleted_at   TIMESTAMPTZ,
    created_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_clips_sermon_source_deleted
    ON clips (sermon_id, source, deleted_at);
`

// Migrate creates or ensures all required database tables and extensions
// exist. It is idempotent and safe to call on every worker start.
//
// embeddingDimensions must match the configured embeddings provider's
// output dimension. Changing it after the first migration requires a
// manual schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{
		ddlSermons,
		ddlTranscriptSegments,
		ddlTranscriptEmbeddings(embeddingDimensions),
		ddlClips,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
