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

// DocumentComparer reports page-wise differences over combined document text.
type DocumentComparer interface {
	CompareDocuments(ctx context.Context, combinedDocs string) ([]domain.ComparisonRow, error)
}

// CompareService runs the two-document comparison flow: both uploads land in
// one session, their texts are combined, and the LLM reports differences.
type CompareService struct {
	sessions  *session.Store
	extractor *extract.Extractor
	comparer  DocumentComparer
	registry  DocumentRegistry
	archiver  Archiver
	logger    *zap.Logger
}

func NewCompareService(sessions *session.Store, extractor *extract.Extractor, comparer DocumentComparer, registry DocumentRegistry, archiver Archiver, logger *zap.Logger) *CompareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareService{
		sessions:  sessions,
		extractor: extractor,
		comparer:  comparer,
		registry:  registry,
		archiver:  archiver,
		logger:    logger,
	}
}

// CompareResult pairs the page-wise differences with the session that holds
// both uploads.
type CompareResult struct {
	SessionID string                 `json:"session_id"`
	Rows      []domain.ComparisonRow `json:"rows"`
}

func (s *CompareService) Compare(ctx context.Context, reference, actual Upload) (*CompareResult, error) {
	for _, u := range []Upload{reference, actual} {
		if u.Filename == "" || u.Content == nil {
			return nil, domain.ErrMissingFile
		}
		if !extract.Supported(u.Filename) {
			return nil, domain.ErrUnsupportedFileType
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "CompareService.Compare", telemetry.SpanAttributes{
		Filename:  reference.Filename,
		Operation: "compare",
	})
	defer span.End()

	sess, err := s.sessions.NewSession("comparison")
	if err != nil {
		return nil, domain.NewPersistenceError("create comparison session", err)
	}

	for _, u := range []Upload{reference, actual} {
		path, err := sess.SaveFile(u.Filename, u.Content)
		if err != nil {
			return nil, domain.NewPersistenceError("save upload", err)
		}
		if err := recordDocument(ctx, s.registry, sess, domain.DocumentKindComparison, path); err != nil {
			s.logger.Warn("document registry write failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
		if err := archiveDocument(ctx, s.archiver, sess, path); err != nil {
			s.logger.Warn("document archival failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	combined, err := sess.CombineDocuments(s.extractor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(combined) == "" {
		return nil, domain.ErrEmptyDocument
	}

	rows, err := s.comparer.CompareDocuments(ctx, combined)
	if err != nil {
		return nil, err
	}

	s.logger.Info("documents compared",
		zap.String("session_id", sess.ID),
		zap.Int("rows", len(rows)))
	return &CompareResult{SessionID: sess.ID, Rows: rows}, nil
}
