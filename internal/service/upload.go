package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/session"
)

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// DocumentRegistry persists registry records for uploaded files. Services
// treat a nil registry as disabled.
type DocumentRegistry interface {
	Create(ctx context.Context, doc *domain.Document) error
	List(ctx context.Context, after *pagination.Cursor, limit int) ([]domain.Document, error)
}

// Archiver copies uploaded files to long-term object storage. Services treat
// a nil archiver as disabled.
type Archiver interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
}

// recordDocument registers the saved file with the registry, hashing it on
// the way. A nil registry is a no-op.
func recordDocument(ctx context.Context, registry DocumentRegistry, sess *session.Session, kind domain.DocumentKind, path string) error {
	if registry == nil {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return err
	}

	return registry.Create(ctx, &domain.Document{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Filename:  filepath.Base(path),
		Kind:      kind,
		SizeBytes: size,
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		CreatedAt: time.Now().UTC(),
	})
}

// archiveDocument copies the saved file into object storage under the
// session's key prefix. A nil archiver is a no-op.
func archiveDocument(ctx context.Context, archiver Archiver, sess *session.Session, path string) error {
	if archiver == nil {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	key := sess.ID + "/" + filepath.Base(path)
	return archiver.Upload(ctx, key, "application/octet-stream", f)
}
