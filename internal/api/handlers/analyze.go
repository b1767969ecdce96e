package handlers

import (
	"context"
	"net/http"

	"github.com/portalworks/docportal/internal/api"
	"github.com/portalworks/docportal/internal/service"
)

// maxUploadMemory bounds how much of a multipart body is held in memory;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

type AnalyzeService interface {
	Analyze(ctx context.Context, upload service.Upload) (*service.AnalyzeResult, error)
}

type AnalyzeHandler struct {
	svc AnalyzeService
}

func NewAnalyzeHandler(svc AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	result, err := h.svc.Analyze(r.Context(), service.Upload{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}
