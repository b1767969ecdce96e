package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/portalworks/docportal/internal/domain"
)

// ChunkRepository persists embedded chunks for the Postgres vector backend.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// Insert stores one embedded chunk. The chunk ID is its ingestion
// fingerprint; ON CONFLICT keeps inserts idempotent under crash replays.
func (r *ChunkRepository) Insert(ctx context.Context, c domain.Chunk, embedding []float32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chunks (id, content, metadata, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Content, c.Metadata, pgvector.NewVector(embedding),
	)
	return err
}

func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&n)
	return n, err
}

// ScoredChunk is a chunk with its cosine similarity to a query embedding.
type ScoredChunk struct {
	Chunk domain.Chunk
	Score float32
}

// SearchCosine returns the k chunks nearest to the embedding by cosine
// distance, best first.
func (r *ChunkRepository) SearchCosine(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM chunks ORDER BY embedding <=> $1 LIMIT $2`,
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var sc ScoredChunk
		var score float64
		if err := rows.Scan(&sc.Chunk.ID, &sc.Chunk.Content, &sc.Chunk.Metadata, &score); err != nil {
			return nil, err
		}
		sc.Score = float32(score)
		results = append(results, sc)
	}
	return results, rows.Err()
}
