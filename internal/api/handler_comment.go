package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"doodledocs/internal/document"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.svc.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateComment(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.svc.AddComment(r.Context(), r.PathValue("id"), req.Text, req.Author)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, AddCommentResponse{ID: id})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentId"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
