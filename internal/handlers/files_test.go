package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"docvault/internal/service"
	"docvault/internal/storage"
)

func TestListFilesHandler(t *testing.T) {
	fake := &fakeDocumentService{
		listRecords: []storage.FileRecord{
			{ID: 2, FileName: "newer.pdf", FileType: "application/pdf"},
			{ID: 1, FileName: "older.txt", FileType: "text/plain"},
		},
	}
	handler := NewListFilesHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var records []storage.FileRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != 2 {
		t.Errorf("expected newest record first, got id %d", records[0].ID)
	}
}

func TestListFilesHandler_Error(t *testing.T) {
	fake := &fakeDocumentService{listErr: errors.New("db offline")}
	handler := NewListFilesHandler(fake)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	assertErrorMessage(t, w, "Failed to list files")
}

func TestGetFileHandler(t *testing.T) {
	summary := "Budget overview for FY26."
	fake := &fakeDocumentService{
		view: &service.DocumentView{
			Record: storage.FileRecord{
				ID:          7,
				FileName:    "notes.md",
				FilePath:    "1756500000_abc123.md",
				FileType:    "text/plain",
				FileSummary: &summary,
				UploadDate:  time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			},
			Content:     "# Notes\n\nBudget overview.",
			ContentHTML: "<h1>Notes</h1>\n<p>Budget overview.</p>",
			FileURL:     "http://localhost:8080/uploads/1756500000_abc123.md",
		},
	}
	handler := NewGetFileHandler(fake)

	w := serveWithID(handler, http.MethodGet, "/files/7", "7")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if fake.lastID != 7 {
		t.Errorf("expected service called with id 7, got %d", fake.lastID)
	}

	var resp FileViewResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 7 {
		t.Errorf("expected id 7, got %d", resp.ID)
	}
	if resp.Content == "" || resp.ContentHTML == "" {
		t.Error("expected content and content_html to be populated")
	}
	if resp.FileURL != "http://localhost:8080/uploads/1756500000_abc123.md" {
		t.Errorf("unexpected file url %q", resp.FileURL)
	}
}

func TestGetFileHandler_NotFound(t *testing.T) {
	fake := &fakeDocumentService{getErr: service.ErrNotFound}
	handler := NewGetFileHandler(fake)

	w := serveWithID(handler, http.MethodGet, "/files/999", "999")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	assertErrorMessage(t, w, "File not found")
}

func TestGetFileHandler_InvalidID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "non-numeric", id: "abc"},
		{name: "zero", id: "0"},
		{name: "negative", id: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{}
			handler := NewGetFileHandler(fake)

			w := serveWithID(handler, http.MethodGet, "/files/"+tt.id, tt.id)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
			assertErrorMessage(t, w, "Invalid file id")
		})
	}
}

func TestDeleteFileHandler(t *testing.T) {
	fake := &fakeDocumentService{}
	handler := NewDeleteFileHandler(fake)

	w := serveWithID(handler, http.MethodDelete, "/files/9", "9")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if fake.deletedID != 9 {
		t.Errorf("expected delete called with id 9, got %d", fake.deletedID)
	}
}

func TestDeleteFileHandler_NotFound(t *testing.T) {
	fake := &fakeDocumentService{deleteErr: service.ErrNotFound}
	handler := NewDeleteFileHandler(fake)

	w := serveWithID(handler, http.MethodDelete, "/files/404", "404")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	assertErrorMessage(t, w, "File not found")
}

// serveWithID invokes a handler with a chi route context carrying the {id}
// URL parameter.
func serveWithID(handler http.Handler, method, target, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}
