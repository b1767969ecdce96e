// Package vectorstore provides persistent vector store backends for ingested
// document chunks. The index manager drives a Store without inspecting its
// internals; the nearest-neighbour machinery belongs to the backing library.
package vectorstore

import (
	"context"

	"github.com/portalworks/docportal/internal/domain"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is one scored chunk from a similarity query.
type SearchResult struct {
	Chunk domain.Chunk
	Score float32
}

// Store is an opaque persistent vector index. Chunks passed to Create and Add
// must carry unique, non-empty IDs; the index manager assigns fingerprints as
// IDs before they reach the store.
//
// Load or Create must be called before Add, Len, or Search. Mutations made by
// Create and Add are only durable after Save returns; backends with their own
// durability (for example Postgres) implement Save as a no-op.
type Store interface {
	Exists(ctx context.Context) (bool, error)
	Load(ctx context.Context) error
	Create(ctx context.Context, chunks []domain.Chunk) error
	Add(ctx context.Context, chunks []domain.Chunk) error
	Save(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)
}
