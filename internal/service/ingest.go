package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/index"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/session"
	"github.com/portalworks/docportal/internal/telemetry"
	"github.com/portalworks/docportal/internal/vectorstore"
	"go.uber.org/zap"
)

// IngestService feeds uploaded documents through extraction and chunking into
// the vector index, and answers similarity queries against it.
type IngestService struct {
	sessions  *session.Store
	extractor *extract.Extractor
	manager   *index.Manager
	registry  DocumentRegistry
	archiver  Archiver
	chunkCfg  ChunkConfig
	logger    *zap.Logger
}

func NewIngestService(sessions *session.Store, extractor *extract.Extractor, manager *index.Manager, registry DocumentRegistry, archiver Archiver, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		sessions:  sessions,
		extractor: extractor,
		manager:   manager,
		registry:  registry,
		archiver:  archiver,
		chunkCfg:  DefaultChunkConfig(),
		logger:    logger,
	}
}

// IngestResult summarizes one ingestion batch.
type IngestResult struct {
	SessionID string `json:"session_id"`
	Files     int    `json:"files"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	IndexSize int    `json:"index_size"`
}

// Ingest saves the uploads into a session, extracts and chunks their text,
// and inserts novel chunks into the index. When no index exists yet the batch
// seeds a fresh one. Chunks whose fingerprints were seen in an earlier batch
// are skipped.
func (s *IngestService) Ingest(ctx context.Context, uploads []Upload) (*IngestResult, error) {
	if len(uploads) == 0 {
		return nil, domain.ErrMissingFile
	}
	for _, u := range uploads {
		if u.Filename == "" || u.Content == nil {
			return nil, domain.ErrMissingFile
		}
		if !extract.Supported(u.Filename) {
			return nil, domain.ErrUnsupportedFileType
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		Operation: "ingest",
	})
	defer span.End()

	sess, err := s.sessions.NewSession("ingestion")
	if err != nil {
		return nil, domain.NewPersistenceError("create ingestion session", err)
	}

	var chunks []domain.Chunk
	for _, u := range uploads {
		path, err := sess.SaveFile(u.Filename, u.Content)
		if err != nil {
			return nil, domain.NewPersistenceError("save upload", err)
		}

		text, err := s.extractor.Extract(path)
		if err != nil {
			return nil, err
		}

		base := filepath.Base(path)
		for i, piece := range chunkText(text, s.chunkCfg) {
			chunks = append(chunks, domain.Chunk{
				Content: piece,
				Metadata: map[string]string{
					domain.MetaFilePath: base,
					domain.MetaRowID:    fmt.Sprintf("%d", i),
					domain.MetaSession:  sess.ID,
				},
			})
		}

		if err := recordDocument(ctx, s.registry, sess, domain.DocumentKindIngestion, path); err != nil {
			s.logger.Warn("document registry write failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
		if err := archiveDocument(ctx, s.archiver, sess, path); err != nil {
			s.logger.Warn("document archival failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	inserted, err := s.insert(ctx, chunks)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	size, err := s.manager.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("documents ingested",
		zap.String("session_id", sess.ID),
		zap.Int("files", len(uploads)),
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(chunks)-inserted))
	return &IngestResult{
		SessionID: sess.ID,
		Files:     len(uploads),
		Inserted:  inserted,
		Skipped:   len(chunks) - inserted,
		IndexSize: size,
	}, nil
}

// insert routes the batch through LoadOrCreate on first use and AddDocuments
// afterwards, returning how many chunks actually landed in the index.
func (s *IngestService) insert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if !s.manager.Loaded() {
		created, err := s.manager.LoadOrCreate(ctx, chunks)
		if err != nil {
			return 0, err
		}
		if created {
			return s.manager.Count(ctx)
		}
	}
	return s.manager.AddDocuments(ctx, chunks)
}

// Search runs a similarity query against the index.
func (s *IngestService) Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "empty search query")
	}
	if k <= 0 {
		k = 4
	}
	return s.manager.Search(ctx, query, k)
}

// ListDocuments returns one page of registry records, newest first. Without a
// registry it reports an empty page.
func (s *IngestService) ListDocuments(ctx context.Context, cursor string, limit int) (*pagination.PageResult[domain.Document], error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if s.registry == nil {
		return &pagination.PageResult[domain.Document]{Items: []domain.Document{}}, nil
	}

	after, err := pagination.Decode(cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}

	docs, err := s.registry.List(ctx, after, limit)
	if err != nil {
		return nil, domain.NewPersistenceError("list documents", err)
	}

	next := pagination.NextCursor(docs, limit,
		func(d domain.Document) string { return d.ID },
		func(d domain.Document) time.Time { return d.CreatedAt })
	return &pagination.PageResult[domain.Document]{
		Items:   docs,
		Cursor:  next,
		HasMore: next != "",
	}, nil
}
