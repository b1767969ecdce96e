package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentService struct {
	result     *service.IngestResult
	err        error
	docs       []domain.Document
	names      []string
	lastCursor string
	lastLimit  int
}

func (f *fakeDocumentService) Ingest(_ context.Context, uploads []service.Upload) (*service.IngestResult, error) {
	f.names = nil
	for _, u := range uploads {
		f.names = append(f.names, u.Filename)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeDocumentService) ListDocuments(_ context.Context, cursor string, limit int) (*pagination.PageResult[domain.Document], error) {
	f.lastCursor = cursor
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	next := pagination.NextCursor(f.docs, limit,
		func(d domain.Document) string { return d.ID },
		func(d domain.Document) time.Time { return d.CreatedAt })
	return &pagination.PageResult[domain.Document]{Items: f.docs, Cursor: next, HasMore: next != ""}, nil
}

func TestDocumentHandler_Ingest(t *testing.T) {
	svc := &fakeDocumentService{result: &service.IngestResult{
		SessionID: "ingestion-20260101_000000-abcd1234",
		Files:     2,
		Inserted:  3,
		Skipped:   1,
		IndexSize: 10,
	}}
	h := NewDocumentHandler(svc)

	body := newMultipartBody(t)
	body.addFile(t, "files", "a.txt", "alpha")
	body.addFile(t, "files", "b.txt", "beta")
	w := httptest.NewRecorder()

	h.Ingest(w, body.request(t, http.MethodPost, "/documents"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a.txt", "b.txt"}, svc.names)

	var resp struct {
		Data service.IngestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Inserted)
	assert.Equal(t, 10, resp.Data.IndexSize)
}

func TestDocumentHandler_IngestNoFiles(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{})

	body := newMultipartBody(t)
	w := httptest.NewRecorder()

	h.Ingest(w, body.request(t, http.MethodPost, "/documents"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "files is required")
}

func TestDocumentHandler_IngestPersistenceError(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{
		err: domain.NewPersistenceError("persist vector index", assert.AnError),
	})

	body := newMultipartBody(t)
	body.addFile(t, "files", "a.txt", "alpha")
	w := httptest.NewRecorder()

	h.Ingest(w, body.request(t, http.MethodPost, "/documents"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDocumentHandler_List(t *testing.T) {
	svc := &fakeDocumentService{docs: []domain.Document{
		{
			ID:        "doc-1",
			SessionID: "ingestion-20260101_000000-abcd1234",
			Filename:  "a.txt",
			Kind:      domain.DocumentKindIngestion,
			SizeBytes: 5,
			SHA256:    "deadbeef",
			CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}}
	h := NewDocumentHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/documents?limit=5", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.lastLimit)

	var resp struct {
		Data pagination.PageResult[DocumentResponse] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "a.txt", resp.Data.Items[0].Filename)
	assert.Equal(t, "ingestion", resp.Data.Items[0].Kind)
	assert.Equal(t, "2026-01-01T12:00:00Z", resp.Data.Items[0].CreatedAt)
	assert.False(t, resp.Data.HasMore)
}

func TestDocumentHandler_ListForwardsCursor(t *testing.T) {
	svc := &fakeDocumentService{}
	h := NewDocumentHandler(svc)

	cursor := pagination.Encode("doc-9", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	req := httptest.NewRequest(http.MethodGet, "/documents?cursor="+url.QueryEscape(cursor), nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cursor, svc.lastCursor)
}

func TestDocumentHandler_ListInvalidLimit(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/documents?limit=oops", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
