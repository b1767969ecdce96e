package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portalworks/docportal/internal/config"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/repository"
	"github.com/portalworks/docportal/internal/service"
	"github.com/portalworks/docportal/internal/session"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command, which feeds every supported file in
// a directory into the vector index without going through the HTTP API.
func IngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Ingest all supported documents in a directory into the vector index",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	var registry service.DocumentRegistry
	if cfg.HasDatabase() {
		pool, err = openPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		registry = repository.NewDocumentRepository(pool)
	}

	manager, err := newManager(cfg, logger, pool, embedder)
	if err != nil {
		return fmt.Errorf("failed to build index manager: %w", err)
	}

	dir := args[0]
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && extract.Supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return fmt.Errorf("no supported documents in %s", dir)
	}

	var uploads []service.Upload
	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
		files = append(files, f)
		uploads = append(uploads, service.Upload{Filename: name, Content: f})
	}

	svc := service.NewIngestService(session.NewStore(cfg.DataDir, logger), extract.NewExtractor(), manager, registry, nil, logger)
	result, err := svc.Ingest(ctx, uploads)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d files: %d chunks inserted, %d skipped, index size %d\n",
		result.Files, result.Inserted, result.Skipped, result.IndexSize)
	return nil
}
