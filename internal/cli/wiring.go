// Package cli implements the portald subcommands.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/portalworks/docportal/internal/config"
	"github.com/portalworks/docportal/internal/index"
	"github.com/portalworks/docportal/internal/llm"
	"github.com/portalworks/docportal/internal/repository"
	"github.com/portalworks/docportal/internal/vectorstore"
	"go.uber.org/zap"
)

const backendPgvector = "pgvector"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newEmbedder(cfg *config.Config) (vectorstore.Embedder, error) {
	if !cfg.HasEmbeddings() {
		return nil, fmt.Errorf("embeddings not configured: PORTAL_OPENAI_API_KEY required")
	}
	return llm.NewEmbeddingClient(llm.EmbeddingConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})
}

// openPool connects to Postgres and applies pending migrations.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := runMigrations(cfg.DatabaseURL); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newManager builds the vector index manager over the configured backend.
// With the pgvector backend the chunks live in Postgres; otherwise an on-disk
// HNSW index under IndexDir is used.
func newManager(cfg *config.Config, logger *zap.Logger, pool *pgxpool.Pool, embedder vectorstore.Embedder) (*index.Manager, error) {
	var store vectorstore.Store
	if cfg.VectorBackend == backendPgvector {
		if pool == nil {
			return nil, fmt.Errorf("pgvector backend requires PORTAL_DATABASE_URL")
		}
		store = vectorstore.NewPG(repository.NewChunkRepository(pool), embedder)
	} else {
		store = vectorstore.NewLocal(cfg.IndexDir, embedder)
	}
	return index.NewManager(cfg.IndexDir, store, logger)
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
