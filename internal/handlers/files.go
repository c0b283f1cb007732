package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docvault/internal/storage"
)

// ListFilesHandler returns every stored document, newest first.
type ListFilesHandler struct {
	documents DocumentService
}

// NewListFilesHandler creates a new ListFilesHandler.
func NewListFilesHandler(documents DocumentService) *ListFilesHandler {
	return &ListFilesHandler{documents: documents}
}

func (h *ListFilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.documents.List(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to list files")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// FileViewResponse is the read-path response for a single document.
type FileViewResponse struct {
	storage.FileRecord
	Content     string `json:"content,omitempty"`
	ContentHTML string `json:"content_html,omitempty"`
	FileURL     string `json:"file_url"`
}

// GetFileHandler returns a single document with its renderable content.
type GetFileHandler struct {
	documents DocumentService
}

// NewGetFileHandler creates a new GetFileHandler.
func NewGetFileHandler(documents DocumentService) *GetFileHandler {
	return &GetFileHandler{documents: documents}
}

func (h *GetFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := fileIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.documents.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to load file")
		return
	}

	writeJSON(w, http.StatusOK, FileViewResponse{
		FileRecord:  view.Record,
		Content:     view.Content,
		ContentHTML: view.ContentHTML,
		FileURL:     view.FileURL,
	})
}

// DeleteFileHandler removes a document and its artifacts.
type DeleteFileHandler struct {
	documents DocumentService
}

// NewDeleteFileHandler creates a new DeleteFileHandler.
func NewDeleteFileHandler(documents DocumentService) *DeleteFileHandler {
	return &DeleteFileHandler{documents: documents}
}

func (h *DeleteFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := fileIDParam(w, r)
	if !ok {
		return
	}

	if err := h.documents.Delete(ctx, id); err != nil {
		writeServiceError(ctx, w, err, "Failed to delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fileIDParam parses the {id} URL parameter, writing a 400 on failure.
func fileIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid file id")
		return 0, false
	}
	return id, true
}
