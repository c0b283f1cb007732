package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"docvault/internal/service"
	"docvault/internal/storage"
)

func TestNewRouter(t *testing.T) {
	deps := &Deps{
		Documents: &stubDocuments{},
		Prober:    stubProber(true),
		UploadDir: t.TempDir(),
	}

	router := NewRouter(deps)

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	deps := &Deps{
		Documents: &stubDocuments{},
		Prober:    stubProber(true),
		UploadDir: t.TempDir(),
	}
	router := NewRouter(deps)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "GET /health exists",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /files exists",
			method:     http.MethodGet,
			path:       "/files",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /files/search exists",
			method:     http.MethodGet,
			path:       "/files/search?q=x",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /files/upload exists",
			method:     http.MethodPost,
			path:       "/files/upload",
			wantStatus: http.StatusBadRequest, // No multipart body, but route exists
		},
		{
			name:       "POST /files/context-search exists",
			method:     http.MethodPost,
			path:       "/files/context-search",
			wantStatus: http.StatusBadRequest, // Empty body, but route exists
		},
		{
			name:       "DELETE /files/{id} exists",
			method:     http.MethodDelete,
			path:       "/files/5",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "GET /files/{id} rejects non-numeric id",
			method:     http.MethodGet,
			path:       "/files/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "PUT /files/{id} method not allowed",
			method:     http.MethodPut,
			path:       "/files/5",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_ServesUploadsInline(t *testing.T) {
	uploadDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(uploadDir, "doc.txt"), []byte("stored body"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	deps := &Deps{
		Documents: &stubDocuments{},
		Prober:    stubProber(true),
		UploadDir: uploadDir,
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/uploads/doc.txt", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Router GET /uploads/doc.txt status = %v, want %v", w.Code, http.StatusOK)
	}
	if w.Body.String() != "stored body" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
	if w.Header().Get("Content-Disposition") != "inline" {
		t.Errorf("expected inline content disposition, got %q", w.Header().Get("Content-Disposition"))
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	deps := &Deps{
		Documents: &stubDocuments{},
		Prober:    stubProber(true),
		UploadDir: t.TempDir(),
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}

// stubDocuments satisfies handlers.DocumentService with fixed responses.
type stubDocuments struct{}

func (s *stubDocuments) Upload(ctx context.Context, src io.Reader, declaredName, mimeType string) (*storage.FileRecord, error) {
	return &storage.FileRecord{ID: 1, FileName: declaredName, FileType: mimeType}, nil
}

func (s *stubDocuments) Get(ctx context.Context, id int64) (*service.DocumentView, error) {
	return &service.DocumentView{Record: storage.FileRecord{ID: id}}, nil
}

func (s *stubDocuments) List(ctx context.Context) ([]storage.FileRecord, error) {
	return []storage.FileRecord{}, nil
}

func (s *stubDocuments) Delete(ctx context.Context, id int64) error {
	return nil
}

func (s *stubDocuments) KeywordSearch(ctx context.Context, query, typeFilter string) ([]storage.FileRecord, error) {
	return []storage.FileRecord{}, nil
}

func (s *stubDocuments) ContextSearch(ctx context.Context, query, typeFilter string) (*service.ContextSearchResponse, error) {
	return &service.ContextSearchResponse{Query: query, Results: []service.ContextSearchResult{}}, nil
}

type stubProber bool

func (s stubProber) IsAvailable(ctx context.Context) bool {
	return bool(s)
}
