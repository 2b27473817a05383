// Package api exposes the document service over REST.
package api

import (
	"log/slog"
	"net/http"

	"doodledocs/internal/document"
)

type Server struct {
	svc    document.Service
	mux    *http.ServeMux
	logger *slog.Logger
}

func NewServer(svc document.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Document Operations
	s.mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	s.mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	s.mux.HandleFunc("PUT /api/documents/{id}", s.handleUpdateDocument)
	s.mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)

	// History Operations
	s.mux.HandleFunc("GET /api/documents/{id}/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/documents/{id}/versions/{version}", s.handleAtVersion)

	// Comment Operations
	s.mux.HandleFunc("GET /api/documents/{id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /api/documents/{id}/comments", s.handleAddComment)
	s.mux.HandleFunc("DELETE /api/documents/{id}/comments/{commentId}", s.handleDeleteComment)

	// Admin Operations
	s.mux.HandleFunc("POST /api/documents/rebuild", s.handleRebuild)

	// Health Check
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
