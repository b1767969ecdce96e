package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LLM provider identifiers. Groq exposes an OpenAI-compatible API, so both
// providers are served by the same client with a different base URL.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DataDir holds session-scoped upload directories.
	DataDir string `envconfig:"DATA_DIR" default:"data"`
	// IndexDir holds the persistent vector index and its sidecar metadata.
	IndexDir string `envconfig:"INDEX_DIR" default:"index"`

	// VectorBackend selects where ingested chunks live: "local" (on-disk HNSW
	// index under IndexDir) or "pgvector" (Postgres, requires DatabaseURL).
	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"local"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	LLMProvider    string  `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel       string  `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMTemperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.2"`
	LLMMaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"2048"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`

	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"docportal-uploads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// APIKey, when set, puts the document routes behind bearer-token auth.
	APIKey string `envconfig:"API_KEY"`

	// Retention controls for session upload directories.
	RetentionKeepLatest int           `envconfig:"RETENTION_KEEP_LATEST" default:"3"`
	SweepInterval       time.Duration `envconfig:"SWEEP_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PORTAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.LLMProvider {
	case ProviderOpenAI, ProviderGroq:
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// LLMAPIKey returns the API key for the configured LLM provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderGroq {
		return c.GroqAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasLLM() bool {
	return c.LLMAPIKey() != ""
}

// HasEmbeddings reports whether embedding generation is available. Embeddings
// always go through the OpenAI endpoint; Groq does not serve embedding models.
func (c *Config) HasEmbeddings() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasAuth() bool {
	return c.APIKey != ""
}
