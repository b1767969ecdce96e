package service

import (
	"context"
	"strings"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/session"
	"github.com/portalworks/docportal/internal/telemetry"
	"go.uber.org/zap"
)

// DocumentAnalyzer produces structured metadata for a document's text.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, documentText string) (*domain.DocumentAnalysis, error)
}

// AnalyzeService runs the single-document analysis flow: persist the upload
// into a session, extract its text, and hand it to the LLM.
type AnalyzeService struct {
	sessions  *session.Store
	extractor *extract.Extractor
	analyzer  DocumentAnalyzer
	registry  DocumentRegistry
	archiver  Archiver
	logger    *zap.Logger
}

func NewAnalyzeService(sessions *session.Store, extractor *extract.Extractor, analyzer DocumentAnalyzer, registry DocumentRegistry, archiver Archiver, logger *zap.Logger) *AnalyzeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeService{
		sessions:  sessions,
		extractor: extractor,
		analyzer:  analyzer,
		registry:  registry,
		archiver:  archiver,
		logger:    logger,
	}
}

// AnalyzeResult pairs the analysis with the session that holds the upload.
type AnalyzeResult struct {
	SessionID string                   `json:"session_id"`
	Analysis  *domain.DocumentAnalysis `json:"analysis"`
}

func (s *AnalyzeService) Analyze(ctx context.Context, upload Upload) (*AnalyzeResult, error) {
	if upload.Filename == "" || upload.Content == nil {
		return nil, domain.ErrMissingFile
	}
	if !extract.Supported(upload.Filename) {
		return nil, domain.ErrUnsupportedFileType
	}

	ctx, span := telemetry.StartSpan(ctx, "AnalyzeService.Analyze", telemetry.SpanAttributes{
		Filename:  upload.Filename,
		Operation: "analyze",
	})
	defer span.End()

	sess, err := s.sessions.NewSession("analysis")
	if err != nil {
		return nil, domain.NewPersistenceError("create analysis session", err)
	}

	path, err := sess.SaveFile(upload.Filename, upload.Content)
	if err != nil {
		return nil, domain.NewPersistenceError("save upload", err)
	}

	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	if err := recordDocument(ctx, s.registry, sess, domain.DocumentKindAnalysis, path); err != nil {
		s.logger.Warn("document registry write failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	if err := archiveDocument(ctx, s.archiver, sess, path); err != nil {
		s.logger.Warn("document archival failed", zap.String("session_id", sess.ID), zap.Error(err))
	}

	analysis, err := s.analyzer.AnalyzeDocument(ctx, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document analyzed",
		zap.String("session_id", sess.ID),
		zap.String("filename", upload.Filename))
	return &AnalyzeResult{SessionID: sess.ID, Analysis: analysis}, nil
}
