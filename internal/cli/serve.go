package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portalworks/docportal/internal/api/handlers"
	"github.com/portalworks/docportal/internal/config"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/jobs"
	"github.com/portalworks/docportal/internal/llm"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/repository"
	"github.com/portalworks/docportal/internal/server"
	"github.com/portalworks/docportal/internal/service"
	"github.com/portalworks/docportal/internal/session"
	"github.com/portalworks/docportal/internal/storage"
	"github.com/portalworks/docportal/internal/telemetry"
	"github.com/portalworks/docportal/internal/vectorstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	if cfg.SentryDSN != "" {
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		pool, err = openPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		logger.Info("connected to database")
	}

	var registry service.DocumentRegistry
	if pool != nil {
		registry = repository.NewDocumentRepository(pool)
	}

	var archiver service.Archiver
	if cfg.HasS3() {
		s3Client, err := storage.New(ctx, storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PathStyle: true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info("S3 bucket ready", zap.String("bucket", cfg.S3Bucket))
		archiver = s3Client
	}

	sessions := session.NewStore(cfg.DataDir, logger)
	extractor := extract.NewExtractor()

	var analyzer service.DocumentAnalyzer = notConfiguredLLM{}
	var comparer service.DocumentComparer = notConfiguredLLM{}
	if cfg.HasLLM() {
		llmClient, err := llm.NewClient(llm.Config{
			Provider:    cfg.LLMProvider,
			Model:       cfg.LLMModel,
			APIKey:      cfg.LLMAPIKey(),
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		analyzer = llmClient
		comparer = llmClient
	}

	analyzeHandler := handlers.NewAnalyzeHandler(service.NewAnalyzeService(sessions, extractor, analyzer, registry, archiver, logger))
	compareHandler := handlers.NewCompareHandler(service.NewCompareService(sessions, extractor, comparer, registry, archiver, logger))

	var documentHandler *handlers.DocumentHandler
	var searchHandler *handlers.SearchHandler
	if cfg.HasEmbeddings() {
		embedder, err := newEmbedder(cfg)
		if err != nil {
			return err
		}
		manager, err := newManager(cfg, logger, pool, embedder)
		if err != nil {
			return fmt.Errorf("failed to build index manager: %w", err)
		}
		// Load an existing index up front; a missing one is seeded by the
		// first ingestion batch.
		if _, err := manager.LoadOrCreate(ctx, nil); err != nil && !errors.Is(err, domain.ErrNoSeedData) {
			return fmt.Errorf("failed to load vector index: %w", err)
		}

		ingestSvc := service.NewIngestService(sessions, extractor, manager, registry, archiver, logger)
		documentHandler = handlers.NewDocumentHandler(ingestSvc)
		searchHandler = handlers.NewSearchHandler(ingestSvc)
	} else {
		documentHandler = handlers.NewDocumentHandler(notConfiguredIngest{})
		searchHandler = handlers.NewSearchHandler(notConfiguredIngest{})
	}

	sweeper := jobs.NewRetentionSweeper(sessions, cfg.RetentionKeepLatest, logger)
	sweepWorker := jobs.NewWorker(sweeper, cfg.SweepInterval, logger)
	go sweepWorker.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		APIKey:          cfg.APIKey,
		Logger:          logger,
		AnalyzeHandler:  analyzeHandler,
		CompareHandler:  compareHandler,
		DocumentHandler: documentHandler,
		SearchHandler:   searchHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sweepWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// notConfiguredLLM backs the analyze and compare routes when no LLM API key
// is configured.
type notConfiguredLLM struct{}

func (notConfiguredLLM) AnalyzeDocument(context.Context, string) (*domain.DocumentAnalysis, error) {
	return nil, errLLMNotConfigured()
}

func (notConfiguredLLM) CompareDocuments(context.Context, string) ([]domain.ComparisonRow, error) {
	return nil, errLLMNotConfigured()
}

func errLLMNotConfigured() error {
	return domain.NewDomainError(domain.ErrCodeConfiguration,
		"LLM provider not configured: PORTAL_OPENAI_API_KEY or PORTAL_GROQ_API_KEY required")
}

// notConfiguredIngest backs the document and search routes when embeddings
// are unavailable.
type notConfiguredIngest struct{}

func (notConfiguredIngest) Ingest(context.Context, []service.Upload) (*service.IngestResult, error) {
	return nil, errEmbeddingsNotConfigured()
}

func (notConfiguredIngest) ListDocuments(context.Context, string, int) (*pagination.PageResult[domain.Document], error) {
	return nil, errEmbeddingsNotConfigured()
}

func (notConfiguredIngest) Search(context.Context, string, int) ([]vectorstore.SearchResult, error) {
	return nil, errEmbeddingsNotConfigured()
}

func errEmbeddingsNotConfigured() error {
	return domain.NewDomainError(domain.ErrCodeConfiguration,
		"embeddings not configured: PORTAL_OPENAI_API_KEY required")
}
