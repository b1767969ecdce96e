package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
)

// DocumentRepository persists registry records for uploaded files.
type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, session_id, filename, kind, size_bytes, sha256, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.SessionID, d.Filename, string(d.Kind), d.SizeBytes, d.SHA256, d.CreatedAt,
	)
	return err
}

// List returns the newest records first. A non-nil cursor resumes after the
// record it names.
func (r *DocumentRepository) List(ctx context.Context, after *pagination.Cursor, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if after != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, session_id, filename, kind, size_bytes, sha256, created_at
			 FROM documents
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC LIMIT $3`,
			after.Timestamp, after.LastID, limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, session_id, filename, kind, size_bytes, sha256, created_at
			 FROM documents ORDER BY created_at DESC, id DESC LIMIT $1`,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var kind string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Filename, &kind, &d.SizeBytes, &d.SHA256, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = domain.DocumentKind(kind)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
