package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agilehq/storyforge/internal/pipeline"
)

type Server struct {
	router       *chi.Mux
	port         int
	pipeline     *pipeline.Pipeline
	trackerReady bool
}

// NewServer wires the transcript routes. trackerReady reports whether the
// work-item tracker is configured; when false, publish requests fail with a
// configuration error instead of per-item failures.
func NewServer(port int, apiToken string, p *pipeline.Pipeline, trackerReady bool) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:       router,
		port:         port,
		pipeline:     p,
		trackerReady: trackerReady,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/transcripts", s.submitTranscript)
		r.Get("/stories", s.getStories)
		r.Post("/stories/publish", s.publishStories)
		r.Get("/storyforge/status", s.status)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the expected bearer token.
// An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	tracker := "configured"
	if !s.trackerReady {
		tracker = "unconfigured"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "storyforge",
		"tracker": tracker,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
