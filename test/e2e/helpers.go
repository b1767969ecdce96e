//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/portalworks/docportal/internal/api/handlers"
	"github.com/portalworks/docportal/internal/domain"
	"github.com/portalworks/docportal/internal/extract"
	"github.com/portalworks/docportal/internal/index"
	"github.com/portalworks/docportal/internal/server"
	"github.com/portalworks/docportal/internal/service"
	"github.com/portalworks/docportal/internal/session"
	"github.com/portalworks/docportal/internal/vectorstore"
)

const testAPIKey = "e2e-secret"

// TestEnv holds the in-process server the E2E tests talk to.
type TestEnv struct {
	T      *testing.T
	Server *httptest.Server
	Client *http.Client
	APIKey string
}

// stubEmbedder derives a deterministic vector from the text so similarity
// search behaves consistently without a real embeddings provider.
type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = float32(sum[i]) / 255
	}
	return vec, nil
}

// stubLLM stands in for the chat provider.
type stubLLM struct{}

func (stubLLM) AnalyzeDocument(_ context.Context, text string) (*domain.DocumentAnalysis, error) {
	return &domain.DocumentAnalysis{
		Title:        "Stub Analysis",
		Language:     "English",
		DocumentType: "report",
		Summary:      []string{fmt.Sprintf("document of %d characters", len(text))},
	}, nil
}

func (stubLLM) CompareDocuments(_ context.Context, _ string) ([]domain.ComparisonRow, error) {
	return []domain.ComparisonRow{{Page: "1", Changes: "NO CHANGE"}}, nil
}

// SetupEnv builds the full router over real session, extraction, and index
// layers, with stubbed LLM and embedding providers. Auth is enabled.
func SetupEnv(t *testing.T) *TestEnv {
	t.Helper()

	sessions := session.NewStore(t.TempDir(), nil)
	extractor := extract.NewExtractor()

	indexDir := t.TempDir()
	store := vectorstore.NewLocal(indexDir, stubEmbedder{})
	manager, err := index.NewManager(indexDir, store, nil)
	if err != nil {
		t.Fatalf("failed to build index manager: %v", err)
	}

	llm := stubLLM{}
	analyzeSvc := service.NewAnalyzeService(sessions, extractor, llm, nil, nil, nil)
	compareSvc := service.NewCompareService(sessions, extractor, llm, nil, nil, nil)
	ingestSvc := service.NewIngestService(sessions, extractor, manager, nil, nil, nil)

	router := server.NewRouter(server.RouterConfig{
		APIKey:          testAPIKey,
		AnalyzeHandler:  handlers.NewAnalyzeHandler(analyzeSvc),
		CompareHandler:  handlers.NewCompareHandler(compareSvc),
		DocumentHandler: handlers.NewDocumentHandler(ingestSvc),
		SearchHandler:   handlers.NewSearchHandler(ingestSvc),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &TestEnv{
		T:      t,
		Server: srv,
		Client: &http.Client{Timeout: 30 * time.Second},
		APIKey: testAPIKey,
	}
}

type apiResponse struct {
	Status int
	Data   json.RawMessage
	Error  string
}

type fileUpload struct {
	Field   string
	Name    string
	Content string
}

func (e *TestEnv) do(req *http.Request, auth bool) (*apiResponse, error) {
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.APIKey)
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("non-JSON response (%d): %s", resp.StatusCode, body)
	}
	return &apiResponse{Status: resp.StatusCode, Data: envelope.Data, Error: envelope.Error}, nil
}

// Get issues an authenticated GET.
func (e *TestEnv) Get(path string) (*apiResponse, error) {
	req, err := http.NewRequest(http.MethodGet, e.Server.URL+path, nil)
	if err != nil {
		return nil, err
	}
	return e.do(req, true)
}

// GetNoAuth issues a GET without credentials.
func (e *TestEnv) GetNoAuth(path string) (*apiResponse, error) {
	req, err := http.NewRequest(http.MethodGet, e.Server.URL+path, nil)
	if err != nil {
		return nil, err
	}
	return e.do(req, false)
}

// PostJSON issues an authenticated POST with a JSON body.
func (e *TestEnv) PostJSON(path string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, e.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, true)
}

// PostFiles issues an authenticated multipart POST carrying the uploads.
func (e *TestEnv) PostFiles(path string, files []fileUpload, auth bool) (*apiResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(f.Content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req, auth)
}
