package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"docvault/internal/contextutil"
	"docvault/internal/service"
	"docvault/internal/storage"
)

// DocumentService is the service surface the handlers depend on.
// Defined here, consumer-first, so handler tests can substitute a fake.
type DocumentService interface {
	Upload(ctx context.Context, src io.Reader, declaredName, mimeType string) (*storage.FileRecord, error)
	Get(ctx context.Context, id int64) (*service.DocumentView, error)
	List(ctx context.Context) ([]storage.FileRecord, error)
	Delete(ctx context.Context, id int64) error
	KeywordSearch(ctx context.Context, query, typeFilter string) ([]storage.FileRecord, error)
	ContextSearch(ctx context.Context, query, typeFilter string) (*service.ContextSearchResponse, error)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Suggestion is set when the client has a sensible fallback, e.g. keyword
	// search while the ML service is down.
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeServiceError maps service-layer errors onto the HTTP error taxonomy.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "Unsupported file type")
	case errors.Is(err, service.ErrExtractionFailed):
		writeError(w, http.StatusBadRequest, "Failed to extract text from file")
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrMLUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:      "ML service is unavailable",
			Suggestion: "Try keyword search instead",
		})
	default:
		logger.ErrorContext(ctx, defaultMsg, "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
