package service

import (
	"context"
	"strings"
	"testing"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComparer struct {
	rows     []domain.ComparisonRow
	err      error
	lastDocs string
}

func (f *fakeComparer) CompareDocuments(_ context.Context, combined string) ([]domain.ComparisonRow, error) {
	f.lastDocs = combined
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestCompare_HappyPath(t *testing.T) {
	comparer := &fakeComparer{rows: []domain.ComparisonRow{
		{Page: "1", Changes: "NO CHANGE"},
		{Page: "2", Changes: "total revised"},
	}}
	svc := NewCompareService(session.NewStore(t.TempDir(), nil), extract.NewExtractor(), comparer, nil, nil, nil)

	result, err := svc.Compare(context.Background(),
		Upload{Filename: "reference.txt", Content: strings.NewReader("original total: 100")},
		Upload{Filename: "actual.txt", Content: strings.NewReader("original total: 120")},
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.SessionID, "comparison-"))
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "total revised", result.Rows[1].Changes)

	// Both documents reach the model with their file-name headers.
	assert.Contains(t, comparer.lastDocs, "Document: reference.txt")
	assert.Contains(t, comparer.lastDocs, "Document: actual.txt")
	assert.Contains(t, comparer.lastDocs, "total: 120")
}

func TestCompare_MissingSecondFile(t *testing.T) {
	svc := NewCompareService(session.NewStore(t.TempDir(), nil), extract.NewExtractor(), &fakeComparer{}, nil, nil, nil)

	_, err := svc.Compare(context.Background(),
		Upload{Filename: "reference.txt", Content: strings.NewReader("a")},
		Upload{},
	)
	assert.ErrorIs(t, err, domain.ErrMissingFile)
}

func TestCompare_UnsupportedExtension(t *testing.T) {
	svc := NewCompareService(session.NewStore(t.TempDir(), nil), extract.NewExtractor(), &fakeComparer{}, nil, nil, nil)

	_, err := svc.Compare(context.Background(),
		Upload{Filename: "reference.txt", Content: strings.NewReader("a")},
		Upload{Filename: "actual.exe", Content: strings.NewReader("b")},
	)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestCompare_ComparerError(t *testing.T) {
	comparer := &fakeComparer{err: assert.AnError}
	svc := NewCompareService(session.NewStore(t.TempDir(), nil), extract.NewExtractor(), comparer, nil, nil, nil)

	_, err := svc.Compare(context.Background(),
		Upload{Filename: "reference.txt", Content: strings.NewReader("a")},
		Upload{Filename: "actual.txt", Content: strings.NewReader("b")},
	)
	assert.ErrorIs(t, err, assert.AnError)
}
