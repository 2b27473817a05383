package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/schema"

	"doodledocs/internal/document"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.svc.Create(r.Context(), req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var opts ListOptions
	if err := queryDecoder.Decode(&opts, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	docs, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(docs) {
			docs = docs[:0]
		} else {
			docs = docs[opts.Offset:]
		}
	}
	if opts.Limit > 0 && opts.Limit < len(docs) {
		docs = docs[:opts.Limit]
	}

	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Creates default an empty title; renaming to nothing is rejected.
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}
	if err := validateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.svc.Update(r.Context(), r.PathValue("id"), document.UpdateRequest{
		Title:       req.Title,
		Content:     req.Content,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var opts ListOptions
	if err := queryDecoder.Decode(&opts, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	history, err := s.svc.History(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if opts.Limit > 0 && opts.Limit < len(history) {
		history = history[:opts.Limit]
	}

	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAtVersion(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.ParseInt(r.PathValue("version"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid version")
		return
	}

	doc, err := s.svc.AtVersion(r.Context(), r.PathValue("id"), version)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found at that version")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rebuilt"})
}
