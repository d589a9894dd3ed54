// Package postgres provides a PostgreSQL-backed implementation of the
// clip-suggestion engine's persistence surface: sermons, their timestamped
// transcript segments and embeddings, and the clips produced by the
// pipeline.
//
// A single [Store], backed by one [pgxpool.Pool], satisfies all three of the
// clip engine's narrow store interfaces — [clipengine.TranscriptStore] for
// sermon rows and transcript segments, [clipengine.EmbeddingStore] for
// pgvector embeddings, and [clipengine.ClipStore] for clip persistence — so
// the pipeline core never imports pgx directly.
//
// The pgvector extension must be available in the target database; [Migrate]
// installs it automatically via CREATE EXTENSION IF NOT EXISTS.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/sermonforge/clipsuggest/internal/clipengine"
)

var (
	_ clipengine.TranscriptStore = (*Store)(nil)
	_ clipengine.EmbeddingStore  = (*Store)(nil)
	_ clipengine.ClipStore       = (*Store)(nil)
)

// Store is the central PostgreSQL-backed persistence layer for the clip
// suggestion worker. All operations are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store, establishes a connection pool to the
// PostgreSQL database at dsn, registers pgvector types on every connection,
// and runs [Migrate] to ensure all required tables and extensions exist.
//
// embeddingDimensions must match the output dimension of the embedding model
// configured for this deployment (384 for the default reference-vector
// model). Changing this value after the first migration requires a manual
// schema change.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all connections held by the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
