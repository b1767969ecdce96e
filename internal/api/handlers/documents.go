package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/portalworks/docportal/internal/api"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/service"
)

type DocumentService interface {
	Ingest(ctx context.Context, uploads []service.Upload) (*service.IngestResult, error)
	ListDocuments(ctx context.Context, cursor string, limit int) (*pagination.PageResult[domain.Document], error)
}

type DocumentHandler struct {
	svc DocumentService
}

func NewDocumentHandler(svc DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Ingest accepts one or more files under the "files" field and feeds them
// into the vector index.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		api.Error(w, http.StatusBadRequest, "files is required")
		return
	}

	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "unreadable upload")
			return
		}
		defer f.Close()
		uploads = append(uploads, service.Upload{Filename: fh.Filename, Content: f})
	}

	result, err := h.svc.Ingest(r.Context(), uploads)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

type DocumentResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	CreatedAt string `json:"created_at"`
}

// List returns one page of registry records, newest first. The cursor query
// parameter resumes a previous listing.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := pagination.PageResult[DocumentResponse]{
		Items:   make([]DocumentResponse, 0, len(page.Items)),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	}
	for _, d := range page.Items {
		out.Items = append(out.Items, DocumentResponse{
			ID:        d.ID,
			SessionID: d.SessionID,
			Filename:  d.Filename,
			Kind:      string(d.Kind),
			SizeBytes: d.SizeBytes,
			SHA256:    d.SHA256,
			CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	api.Success(w, http.StatusOK, out)
}
