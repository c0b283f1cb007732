package handlers

import (
	"net/http"

	"docvault/internal/contextutil"
	"docvault/internal/service"
)

// UploadHandler handles multipart document uploads.
type UploadHandler struct {
	documents DocumentService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(documents DocumentService) *UploadHandler {
	return &UploadHandler{documents: documents}
}

// ServeHTTP accepts a multipart form with a single "file" field, stores the
// file and returns the inserted record. The summary field of the response is
// null: summarization runs in the background after the response is sent.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	// Cap in-memory buffering; larger parts spill to temp files
	if err := r.ParseMultipartForm(service.MaxUploadBytes + 1); err != nil {
		logger.WarnContext(ctx, "failed to parse multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field in upload", "error", err)
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	mimeType := header.Header.Get("Content-Type")

	rec, err := h.documents.Upload(ctx, file, header.Filename, mimeType)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
