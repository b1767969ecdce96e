package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/portalworks/docportal/internal/api"
	"github.com/portalworks/docportal/internal/vectorstore"
)

type SearchService interface {
	Search(ctx context.Context, query string, k int) ([]vectorstore.SearchResult, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type SearchResultResponse struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float32           `json:"score"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.K)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResultResponse{
			Content:  res.Chunk.Content,
			Metadata: res.Chunk.Metadata,
			Score:    res.Score,
		})
	}
	api.Success(w, http.StatusOK, out)
}
