package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingDimensions matches text-embedding-3-small.
const DefaultEmbeddingDimensions = 1536

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingConfig holds embedding client settings. Embeddings always go
// through the OpenAI endpoint regardless of the chat provider.
type EmbeddingConfig struct {
	APIKey     string
	Model      string
	Dimensions int
}

// EmbeddingClient generates embeddings and validates their dimensions. It
// satisfies vectorstore.Embedder.
type EmbeddingClient struct {
	api        EmbeddingAPI
	dimensions int
}

type openaiEmbeddingAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func (a *openaiEmbeddingAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}

// NewEmbeddingClient creates an embedding client with the given configuration.
func NewEmbeddingClient(cfg EmbeddingConfig) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing OpenAI API key for embeddings")
	}
	model := openai.EmbeddingModel(cfg.Model)
	if model == "" {
		model = openai.SmallEmbedding3
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &EmbeddingClient{
		api:        &openaiEmbeddingAdapter{client: openai.NewClient(cfg.APIKey), model: model},
		dimensions: dimensions,
	}, nil
}

// NewEmbeddingClientWithAPI builds a client over an explicit EmbeddingAPI;
// used in tests.
func NewEmbeddingClientWithAPI(api EmbeddingAPI, dimensions int) *EmbeddingClient {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &EmbeddingClient{api: api, dimensions: dimensions}
}

// GenerateEmbedding generates an embedding for the given text
func (c *EmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}
	return embedding, nil
}

// Dimensions returns the expected embedding width.
func (c *EmbeddingClient) Dimensions() int {
	return c.dimensions
}
