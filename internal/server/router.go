package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portalworks/docportal/internal/api"
	"github.com/portalworks/docportal/internal/api/handlers"
	"github.com/portalworks/docportal/internal/api/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	// APIKey enables bearer-token auth on the document endpoints when set.
	APIKey          string
	Logger          *zap.Logger
	AnalyzeHandler  *handlers.AnalyzeHandler
	CompareHandler  *handlers.CompareHandler
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024 * 1024

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.APIKey != "" {
			r.Use(middleware.APIKeyAuth(cfg.APIKey))
		}

		r.Post("/analyze", cfg.AnalyzeHandler.Analyze)
		r.Post("/compare", cfg.CompareHandler.Compare)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Ingest)
			r.Get("/", cfg.DocumentHandler.List)
		})

		r.Post("/search", cfg.SearchHandler.Search)
	})

	return r
}
