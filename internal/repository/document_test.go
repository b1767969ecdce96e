//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	older := &domain.Document{
		ID:        uuid.NewString(),
		SessionID: "ingestion-20260101_000000-aaaa0000",
		Filename:  "older.txt",
		Kind:      domain.DocumentKindIngestion,
		SizeBytes: 10,
		SHA256:    "aaaa",
		CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond),
	}
	newer := &domain.Document{
		ID:        uuid.NewString(),
		SessionID: "analysis-20260101_010000-bbbb0000",
		Filename:  "newer.pdf",
		Kind:      domain.DocumentKindAnalysis,
		SizeBytes: 20,
		SHA256:    "bbbb",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	docs, err := repo.List(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Newest first.
	assert.Equal(t, "newer.pdf", docs[0].Filename)
	assert.Equal(t, domain.DocumentKindAnalysis, docs[0].Kind)
	assert.Equal(t, "older.txt", docs[1].Filename)
}

func TestDocumentRepository_ListLimit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Document{
			ID:        uuid.NewString(),
			SessionID: "ingestion-20260101_000000-cccc0000",
			Filename:  "f.txt",
			Kind:      domain.DocumentKindIngestion,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}))
	}

	docs, err := repo.List(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDocumentRepository_ListResumesAfterCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDocumentRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Document{
			ID:        uuid.NewString(),
			SessionID: "ingestion-20260101_000000-dddd0000",
			Filename:  fmt.Sprintf("f%d.txt", i),
			Kind:      domain.DocumentKindIngestion,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}))
	}

	first, err := repo.List(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "f0.txt", first[0].Filename)

	last := first[len(first)-1]
	rest, err := repo.List(ctx, &pagination.Cursor{LastID: last.ID, Timestamp: last.CreatedAt}, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "f2.txt", rest[0].Filename)
}
