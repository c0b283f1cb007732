package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_enricher.go -package=mocks docvault/internal/service Enricher
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_text_extractor.go -package=mocks docvault/internal/service TextExtractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docvault/internal/contextutil"
	"docvault/internal/extract"
	"docvault/internal/mlservice"
	"docvault/internal/storage"
)

// Upload and enrichment limits. Truncation is silent but the values are fixed
// here rather than scattered through the code.
const (
	// MaxUploadBytes is the maximum accepted upload size.
	MaxUploadBytes = 10 << 20
	// MaxStoredContentRunes bounds the extracted text stored in the files table.
	MaxStoredContentRunes = 10000
	// SummaryInputRunes bounds the text window sent to the summarizer.
	SummaryInputRunes = 8000
	// IndexInputRunes bounds the text window sent to the vector index.
	IndexInputRunes = 8000
	// MatchedTextRunes bounds the matched-text preview in context search results.
	MatchedTextRunes = 200
)

// Placeholder summaries. A record never stays null forever once its text has
// been seen: empty extractions get a placeholder at insert time, failed
// summarizations get one from the background task.
const (
	SummaryEmptyPlaceholder  = "No readable text content"
	SummaryFailedPlaceholder = "Summary unavailable"
)

// Enricher is the ML microservice surface the document service depends on.
// This interface is defined from the service layer's perspective (consumer-first).
type Enricher interface {
	// IsAvailable probes the service with a short timeout.
	IsAvailable(ctx context.Context) bool
	// Summarize requests a summary for the given text.
	Summarize(ctx context.Context, text string) (string, error)
	// AddDocument stores a document in the vector index.
	AddDocument(ctx context.Context, docID, text string, meta mlservice.DocumentMetadata) error
	// RemoveDocument removes a document from the vector index.
	RemoveDocument(ctx context.Context, docID string) error
	// Search performs a semantic search against the vector index.
	Search(ctx context.Context, query string, filters map[string]any) ([]mlservice.SearchResult, error)
}

// TextExtractor extracts text and renders HTML from stored files.
type TextExtractor interface {
	Text(path, mimeType string) (string, error)
	DocxHTML(path string) (string, error)
	MarkdownHTML(source string) (string, error)
}

// DocumentView is the read-path representation of a stored document.
type DocumentView struct {
	Record      storage.FileRecord
	Content     string // full on-disk text, plain-text documents only
	ContentHTML string // rendered HTML for docx and markdown documents
	FileURL     string // publicly reachable URL for the stored file
}

// ContextSearchResult is one merged semantic search result.
type ContextSearchResult struct {
	Record          storage.FileRecord
	SimilarityScore float64
	MatchedText     string
}

// ContextSearchResponse is the result set of a semantic search.
type ContextSearchResponse struct {
	Query      string
	Results    []ContextSearchResult
	TotalFound int
}

// DocumentService coordinates uploads, retrieval, search and deletion across
// the metadata store, the upload directory and the ML service's vector index.
type DocumentService struct {
	files         storage.FileStore
	enricher      Enricher
	extractor     TextExtractor
	uploadDir     string
	publicBaseURL string
	logger        *slog.Logger

	bg sync.WaitGroup
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(files storage.FileStore, enricher Enricher, extractor TextExtractor, uploadDir, publicBaseURL string) *DocumentService {
	return &DocumentService{
		files:         files,
		enricher:      enricher,
		extractor:     extractor,
		uploadDir:     uploadDir,
		publicBaseURL: publicBaseURL,
		logger:        slog.Default(),
	}
}

// Wait blocks until all in-flight background enrichment tasks finish.
// Used by tests and graceful shutdown; each task is bounded by its own timeout.
func (s *DocumentService) Wait() {
	s.bg.Wait()
}

// Upload persists the incoming stream, extracts its text, inserts a metadata
// row and schedules background summarization and indexing. The returned record
// is the freshly inserted row; its summary is still null unless the extracted
// text was empty.
func (s *DocumentService) Upload(ctx context.Context, src io.Reader, declaredName, mimeType string) (*storage.FileRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if declaredName == "" {
		return nil, &ValidationError{Field: "file", Message: "file is required"}
	}

	storedName, err := s.persistUpload(src, declaredName)
	if err != nil {
		return nil, err
	}
	storedPath := filepath.Join(s.uploadDir, storedName)

	info, err := os.Stat(storedPath)
	if err != nil {
		s.removeStoredFile(storedName)
		return nil, WrapError(err, "failed to stat uploaded file")
	}
	if info.Size() > MaxUploadBytes {
		s.removeStoredFile(storedName)
		return nil, &ValidationError{Field: "file", Message: "file exceeds the maximum size of 10 MiB"}
	}

	text, err := s.extractor.Text(storedPath, mimeType)
	if err != nil {
		s.removeStoredFile(storedName)
		if errors.Is(err, extract.ErrUnsupportedType) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
		}
		logger.WarnContext(ctx, "text extraction failed", "file", declaredName, "type", mimeType, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	rec := &storage.FileRecord{
		FileName:    declaredName,
		FilePath:    storedName,
		FileSize:    info.Size(),
		FileType:    mimeType,
		FileContent: truncateRunes(text, MaxStoredContentRunes),
	}

	hasText := strings.TrimSpace(text) != ""
	if !hasText {
		placeholder := SummaryEmptyPlaceholder
		rec.FileSummary = &placeholder
	}

	// DB insert failure is fatal to the request; the stored file stays behind
	// as an accepted orphan rather than risking a row without a file.
	if err := s.files.Insert(ctx, rec); err != nil {
		return nil, WrapError(err, "failed to insert file record")
	}

	logger.InfoContext(ctx, "file uploaded", "id", rec.ID, "name", rec.FileName, "type", rec.FileType, "size", rec.FileSize)

	// Enrichment is fire-and-forget: the caller gets its response now, the
	// summary and index entry become consistent eventually. The two tasks are
	// independent and may complete in either order.
	if hasText {
		s.bg.Add(2)
		go s.summarizeInBackground(rec.ID, text)
		go s.indexInBackground(*rec, text)
	}

	return rec, nil
}

// persistUpload streams src to a uniquely named file under the upload
// directory, preserving the original extension. The name combines a
// time-based prefix with a random suffix so concurrent uploads cannot collide.
func (s *DocumentService) persistUpload(src io.Reader, declaredName string) (string, error) {
	ext := filepath.Ext(declaredName)
	storedName := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
	storedPath := filepath.Join(s.uploadDir, storedName)

	dst, err := os.OpenFile(storedPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", WrapError(err, "failed to create stored file")
	}

	// Copy at most one byte past the limit so oversize detection is cheap
	_, copyErr := io.Copy(dst, io.LimitReader(src, MaxUploadBytes+1))
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		s.removeStoredFile(storedName)
		if copyErr != nil {
			return "", WrapError(copyErr, "failed to write stored file")
		}
		return "", WrapError(closeErr, "failed to write stored file")
	}

	return storedName, nil
}

func (s *DocumentService) removeStoredFile(storedName string) {
	if err := os.Remove(filepath.Join(s.uploadDir, storedName)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove stored file", "path", storedName, "error", err)
	}
}

// summarizeInBackground requests a summary and persists it. Failures become
// the fixed placeholder rather than leaving the row null forever, and never
// propagate anywhere: the upload response has already been sent.
func (s *DocumentService) summarizeInBackground(id int64, text string) {
	defer s.bg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("summarize task panicked", "id", id, "panic", r)
		}
	}()

	ctx := context.Background()

	summary, err := s.enricher.Summarize(ctx, truncateRunes(text, SummaryInputRunes))
	if err != nil {
		s.logger.Warn("summarization failed, storing placeholder", "id", id, "error", err)
		summary = SummaryFailedPlaceholder
	}

	if err := s.files.UpdateSummary(ctx, id, summary); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Document deleted while the summary was in flight; nothing to do
			s.logger.Debug("summary arrived after deletion", "id", id)
			return
		}
		s.logger.Error("failed to store summary", "id", id, "error", err)
	}
}

// indexInBackground adds the document to the vector index. Indexing is
// best-effort; failures are logged and the stored record is unaffected.
func (s *DocumentService) indexInBackground(rec storage.FileRecord, text string) {
	defer s.bg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("index task panicked", "id", rec.ID, "panic", r)
		}
	}()

	ctx := context.Background()

	meta := mlservice.DocumentMetadata{
		FileID:     strconv.FormatInt(rec.ID, 10),
		FileName:   rec.FileName,
		FileType:   rec.FileType,
		UploadDate: rec.UploadDate.Format(time.RFC3339),
	}

	if err := s.enricher.AddDocument(ctx, mlservice.DocID(rec.ID), truncateRunes(text, IndexInputRunes), meta); err != nil {
		s.logger.Warn("vector indexing failed", "id", rec.ID, "error", err)
	}
}

// Get returns a DocumentView for the given id.
func (s *DocumentService) Get(ctx context.Context, id int64) (*DocumentView, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, WrapError(err, "failed to load file record")
	}

	view := &DocumentView{
		Record:  *rec,
		FileURL: s.publicBaseURL + "/uploads/" + rec.FilePath,
	}
	storedPath := filepath.Join(s.uploadDir, rec.FilePath)

	switch rec.FileType {
	case extract.MIMEText:
		// Serve the full on-disk content, not the possibly truncated column
		data, err := os.ReadFile(storedPath)
		if err != nil {
			return nil, WrapError(err, "failed to read stored file")
		}
		view.Content = string(data)

		if strings.HasSuffix(strings.ToLower(rec.FileName), ".md") {
			html, err := s.extractor.MarkdownHTML(view.Content)
			if err != nil {
				logger.WarnContext(ctx, "markdown rendering failed", "id", id, "error", err)
			} else {
				view.ContentHTML = html
			}
		}
	case extract.MIMEDocx:
		html, err := s.extractor.DocxHTML(storedPath)
		if err != nil {
			return nil, WrapError(err, "failed to render document")
		}
		view.ContentHTML = html
	}
	// PDFs are rendered client-side from the file URL

	return view, nil
}

// List returns every stored document, newest first.
func (s *DocumentService) List(ctx context.Context) ([]storage.FileRecord, error) {
	records, err := s.files.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list files")
	}
	return records, nil
}

// Delete removes a document's index entry, metadata row and stored file.
// The row removal is the authoritative step; index and file removal are
// best-effort and their failures are only logged.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	logger := contextutil.LoggerFromContext(ctx)

	rec, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return WrapError(err, "failed to load file record")
	}

	// Orphaned index entries are harmless: context search re-validates every
	// hit against the files table.
	if err := s.enricher.RemoveDocument(ctx, mlservice.DocID(id)); err != nil {
		logger.WarnContext(ctx, "failed to remove document from vector index", "id", id, "error", err)
	}

	// The row goes before the file so no surviving row can reference a file
	// whose fate is unknown.
	if err := s.files.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return WrapError(err, "failed to delete file record")
	}

	if err := os.Remove(filepath.Join(s.uploadDir, rec.FilePath)); err != nil && !os.IsNotExist(err) {
		logger.WarnContext(ctx, "failed to remove stored file", "id", id, "path", rec.FilePath, "error", err)
	}

	logger.InfoContext(ctx, "file deleted", "id", id, "name", rec.FileName)
	return nil
}

// KeywordSearch matches the query as a case-insensitive substring against
// name, summary and content, optionally narrowed by type. An empty query with
// a type filter acts as browse-by-type.
func (s *DocumentService) KeywordSearch(ctx context.Context, query, typeFilter string) ([]storage.FileRecord, error) {
	records, err := s.files.Search(ctx, query, mimeFilterFor(typeFilter))
	if err != nil {
		return nil, WrapError(err, "failed to search files")
	}
	return records, nil
}

// ContextSearch performs a semantic search via the ML service and merges the
// ranked vector results with metadata rows. DB presence is the source of
// truth: vector hits whose rows are gone are silently dropped.
func (s *DocumentService) ContextSearch(ctx context.Context, query, typeFilter string) (*ContextSearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Message: "query is required"}
	}

	// Gate on a cheap probe so an unreachable service reports as unavailable
	// instead of a confusing downstream timeout
	if !s.enricher.IsAvailable(ctx) {
		return nil, ErrMLUnavailable
	}

	vectorResults, err := s.enricher.Search(ctx, query, nil)
	if err != nil {
		return nil, WrapError(err, "vector search failed")
	}

	// Map ids to their best-ranked vector result; results lacking a parseable
	// id are discarded
	ids := make([]int64, 0, len(vectorResults))
	byID := make(map[int64]mlservice.SearchResult, len(vectorResults))
	for _, vr := range vectorResults {
		id, ok := parseFileID(vr.Metadata)
		if !ok {
			logger.DebugContext(ctx, "dropping vector result without parseable file id", "metadata", vr.Metadata)
			continue
		}
		if _, seen := byID[id]; seen {
			continue
		}
		byID[id] = vr
		ids = append(ids, id)
	}

	resp := &ContextSearchResponse{Query: query, Results: []ContextSearchResult{}}
	if len(ids) == 0 {
		return resp, nil
	}

	records, err := s.files.GetByIDs(ctx, ids, mimeFilterFor(typeFilter))
	if err != nil {
		return nil, WrapError(err, "failed to load matched records")
	}

	for _, rec := range records {
		vr := byID[rec.ID]
		resp.Results = append(resp.Results, ContextSearchResult{
			Record:          rec,
			SimilarityScore: 1 - vr.Distance,
			MatchedText:     truncateRunes(vr.Document, MatchedTextRunes) + "...",
		})
	}

	// Rank by similarity, not by the external service's order or upload date
	sort.Slice(resp.Results, func(i, j int) bool {
		return resp.Results[i].SimilarityScore > resp.Results[j].SimilarityScore
	})
	resp.TotalFound = len(resp.Results)

	return resp, nil
}

// mimeFilterFor maps the public type-filter values onto MIME constraints.
// Unknown values behave like "all".
func mimeFilterFor(typeFilter string) storage.MIMEFilter {
	switch strings.ToLower(typeFilter) {
	case "pdf":
		return storage.MIMEFilter{Exact: extract.MIMEPDF}
	case "docx":
		return storage.MIMEFilter{Contains: "wordprocessingml"}
	case "txt":
		return storage.MIMEFilter{Exact: extract.MIMEText}
	default:
		return storage.MIMEFilter{}
	}
}

// parseFileID extracts the originating document id from vector result
// metadata. The id may arrive as a string or a JSON number.
func parseFileID(meta map[string]any) (int64, bool) {
	raw, ok := meta["file_id"]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case string:
		id, err := strconv.ParseInt(strings.TrimPrefix(v, "file_"), 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// truncateRunes bounds s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
