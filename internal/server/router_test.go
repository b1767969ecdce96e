package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/portalworks/docportal/internal/api/handlers"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/pagination"
	"github.com/portalworks/docportal/internal/service"
	"github.com/portalworks/docportal/internal/vectorstore"
	"github.com/stretchr/testify/assert"
)

type stubServices struct{}

func (stubServices) Analyze(context.Context, service.Upload) (*service.AnalyzeResult, error) {
	return &service.AnalyzeResult{SessionID: "s", Analysis: &domain.DocumentAnalysis{}}, nil
}

func (stubServices) Compare(context.Context, service.Upload, service.Upload) (*service.CompareResult, error) {
	return &service.CompareResult{SessionID: "s"}, nil
}

func (stubServices) Ingest(context.Context, []service.Upload) (*service.IngestResult, error) {
	return &service.IngestResult{SessionID: "s"}, nil
}

func (stubServices) ListDocuments(context.Context, string, int) (*pagination.PageResult[domain.Document], error) {
	return &pagination.PageResult[domain.Document]{}, nil
}

func (stubServices) Search(context.Context, string, int) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func newTestRouter(apiKey string) http.Handler {
	var s stubServices
	return NewRouter(RouterConfig{
		APIKey:          apiKey,
		AnalyzeHandler:  handlers.NewAnalyzeHandler(s),
		CompareHandler:  handlers.NewCompareHandler(s),
		DocumentHandler: handlers.NewDocumentHandler(s),
		SearchHandler:   handlers.NewSearchHandler(s),
	})
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_AuthDisabledByDefault(t *testing.T) {
	r := newTestRouter("")

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "x"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AuthGuardsEndpoints(t *testing.T) {
	r := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "x"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthDoesNotGuardHealth(t *testing.T) {
	r := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_AuthAllowsValidKey(t *testing.T) {
	r := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "x"}`))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
