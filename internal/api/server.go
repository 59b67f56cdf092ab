package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/writingstuff/internal/config"
	"github.com/dgallion1/writingstuff/internal/ingest"
	"github.com/dgallion1/writingstuff/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for writingstuff.
type Server struct {
	router chi.Router
	repo   store.Repository
	ingest *ingest.Service
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(repo store.Repository, svc *ingest.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		repo:   repo,
		ingest: svc,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.cfg.AllowedOrigin))

	// Public endpoints.
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleUpload)
			r.Post("/batch", s.handleBatchUpload)
			r.Get("/", s.handleListDocuments)

			r.Route("/{documentID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Get("/chunks", s.handleListChunks)
				r.Get("/search", s.handleSearch)
				r.Post("/summarize", s.handleSummarize)
			})
		})

		r.Post("/ai/improve_text", s.handleImproveText)
		r.Post("/ai/rewrite", s.handleRewrite)

		r.Get("/stats/ingest", s.handleIngestStats)
	})

	s.router = r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to WritingStuff API",
		"status":  "online",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}
