package api

import (
	"encoding/json"
	"net/http"
)

// CreateDocumentRequest is the body of POST /api/documents.
type CreateDocumentRequest struct {
	Title string `json:"title"`
}

// UpdateDocumentRequest carries the full desired state for a document. The
// service computes which fields actually changed.
type UpdateDocumentRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// AddCommentRequest is the body of POST /api/documents/{id}/comments.
type AddCommentRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// AddCommentResponse returns the identifier of the new comment.
type AddCommentResponse struct {
	ID string `json:"id"`
}

// ListOptions narrows list-shaped responses. Decoded from the query string.
type ListOptions struct {
	Limit  int `schema:"limit"`
	Offset int `schema:"offset"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
