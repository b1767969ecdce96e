package vectorstore

import (
	"context"
	"fmt"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/repository"
)

// PG is a Store backed by a Postgres chunks table with pgvector. Every insert
// is durable on its own, so Save is a no-op.
type PG struct {
	chunks   *repository.ChunkRepository
	embedder Embedder
}

func NewPG(chunks *repository.ChunkRepository, embedder Embedder) *PG {
	return &PG{chunks: chunks, embedder: embedder}
}

// Exists reports whether any chunks have been persisted.
func (s *PG) Exists(ctx context.Context) (bool, error) {
	n, err := s.chunks.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Load is a no-op; the table is always ready.
func (s *PG) Load(context.Context) error { return nil }

func (s *PG) Create(ctx context.Context, chunks []domain.Chunk) error {
	return s.Add(ctx, chunks)
}

func (s *PG) Add(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if c.ID == "" {
			return fmt.Errorf("chunk without ID")
		}
		vec, err := s.embedder.GenerateEmbedding(ctx, c.Content)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", c.ID, err)
		}
		if err := s.chunks.Insert(ctx, c, vec); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *PG) Save(context.Context) error { return nil }

func (s *PG) Len(ctx context.Context) (int, error) {
	return s.chunks.Count(ctx)
}

func (s *PG) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	vec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.chunks.SearchCosine(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, SearchResult{Chunk: sc.Chunk, Score: sc.Score})
	}
	return results, nil
}
