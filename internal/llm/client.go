// Package llm wraps the chat and embedding providers behind portal-level
// operations: document analysis, document comparison, and embedding
// generation.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/portalworks/docportal/internal/config"
	"github.com/portalworks/docportal/internal/domain"
	"go.uber.org/zap"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// ChatAPI is the subset of the OpenAI client used for completions.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds chat client settings resolved from the process configuration.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	// BaseURL overrides the provider endpoint; used in tests.
	BaseURL string
}

// Client runs portal prompts against the configured chat provider.
type Client struct {
	api         ChatAPI
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewClient selects the provider and builds a chat client. Groq is served
// through the same SDK with its OpenAI-compatible base URL.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key for LLM provider %q", cfg.Provider)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	switch cfg.Provider {
	case config.ProviderOpenAI:
	case config.ProviderGroq:
		clientCfg.BaseURL = groqBaseURL
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger.Info("LLM client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}, nil
}

// NewClientWithAPI builds a client over an explicit ChatAPI; used in tests.
func NewClientWithAPI(api ChatAPI, model string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, model: model, logger: logger}
}

// AnalyzeDocument asks the LLM for structured metadata about a document.
func (c *Client) AnalyzeDocument(ctx context.Context, documentText string) (*domain.DocumentAnalysis, error) {
	prompt, err := renderPrompt(PromptDocumentAnalysis, analysisPromptData{
		FormatInstructions: analysisFormatInstructions,
		DocumentText:       documentText,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis completion: %w", err)
	}

	var analysis domain.DocumentAnalysis
	if err := c.parseWithRepair(ctx, raw, analysisFormatInstructions, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// CompareDocuments asks the LLM for page-wise differences over the combined
// reference and actual documents.
func (c *Client) CompareDocuments(ctx context.Context, combinedDocs string) ([]domain.ComparisonRow, error) {
	prompt, err := renderPrompt(PromptDocumentComparison, comparisonPromptData{
		FormatInstructions: comparisonFormatInstructions,
		CombinedDocs:       combinedDocs,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("comparison completion: %w", err)
	}

	var out struct {
		Rows []domain.ComparisonRow `json:"rows"`
	}
	if err := c.parseWithRepair(ctx, raw, comparisonFormatInstructions, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseWithRepair parses raw as JSON into v. When parsing fails, the
// malformed output is sent back through the model once for reformatting
// before giving up.
func (c *Client) parseWithRepair(ctx context.Context, raw, formatInstructions string, v any) error {
	err := parseJSON(raw, v)
	if err == nil {
		return nil
	}
	c.logger.Warn("LLM output failed to parse, attempting repair", zap.Error(err))

	prompt, perr := renderPrompt(PromptJSONRepair, repairPromptData{
		FormatInstructions: formatInstructions,
		ParseError:         err.Error(),
		Output:             raw,
	})
	if perr != nil {
		return perr
	}

	repaired, rerr := c.complete(ctx, prompt)
	if rerr != nil {
		return fmt.Errorf("repair completion: %w", rerr)
	}
	if perr := parseJSON(repaired, v); perr != nil {
		return fmt.Errorf("parse repaired output: %w", perr)
	}
	return nil
}
