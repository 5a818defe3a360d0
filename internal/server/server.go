// Package server exposes the composition analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/framecheck/framecheck"
	"github.com/framecheck/framecheck/internal/config"
)

// Server wires the analyzer behind an HTTP API.
type Server struct {
	analyzer *framecheck.Analyzer
	cfg      *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	httpSrv  *http.Server
}

// New creates a Server around the given analyzer.
func New(analyzer *framecheck.Analyzer, cfg *config.Config, logger *log.Logger) *Server {
	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/analyze-image", s.handleAnalyzeImage)
	s.mux.HandleFunc("/deskew-crop", s.handleDeskewCrop)
	s.mux.HandleFunc("/suggest-crop", s.handleSuggestCrop)
	s.mux.HandleFunc("/similar-photographers", s.handleSimilarPhotographers)

	s.httpSrv = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.withCORS(s.mux),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	return s
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

// ListenAndServe starts serving on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("listening on %s", s.cfg.Server.Address)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing to do but note it.
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"detail":  msg,
	})
}
