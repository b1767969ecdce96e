package handlers

import (
	"context"
	"net/http"

	"github.com/portalworks/docportal/internal/api"
	"github.com/portalworks/docportal/internal/service"
)

type CompareService interface {
	Compare(ctx context.Context, reference, actual service.Upload) (*service.CompareResult, error)
}

type CompareHandler struct {
	svc CompareService
}

func NewCompareHandler(svc CompareService) *CompareHandler {
	return &CompareHandler{svc: svc}
}

func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	refFile, refHeader, err := r.FormFile("reference_file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "reference_file is required")
		return
	}
	defer refFile.Close()

	actFile, actHeader, err := r.FormFile("actual_file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "actual_file is required")
		return
	}
	defer actFile.Close()

	result, err := h.svc.Compare(r.Context(),
		service.Upload{Filename: refHeader.Filename, Content: refFile},
		service.Upload{Filename: actHeader.Filename, Content: actFile},
	)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}
