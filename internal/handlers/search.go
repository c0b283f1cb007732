package handlers

import (
	"encoding/json"
	"net/http"

	"docvault/internal/contextutil"
	"docvault/internal/storage"
)

// SearchHandler implements keyword substring search over stored documents.
type SearchHandler struct {
	documents DocumentService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(documents DocumentService) *SearchHandler {
	return &SearchHandler{documents: documents}
}

// ServeHTTP matches the `q` query parameter case-insensitively against file
// name, summary and content, narrowed by the `type` parameter
// (all|pdf|docx|txt). An empty `q` with a type filter browses by type.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	typeFilter := r.URL.Query().Get("type")

	records, err := h.documents.KeywordSearch(ctx, query, typeFilter)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to search files")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// ContextSearchRequest is the request payload for semantic search.
type ContextSearchRequest struct {
	Query          string `json:"query"`
	FileTypeFilter string `json:"file_type_filter,omitempty"`
}

// ContextSearchResultResponse is one merged semantic search result.
type ContextSearchResultResponse struct {
	storage.FileRecord
	SimilarityScore float64 `json:"similarity_score"`
	MatchedText     string  `json:"matched_text"`
}

// ContextSearchResponse is the semantic search response payload.
type ContextSearchResponse struct {
	Query      string                        `json:"query"`
	Results    []ContextSearchResultResponse `json:"results"`
	TotalFound int                           `json:"total_found"`
}

// ContextSearchHandler implements semantic search via the ML service.
type ContextSearchHandler struct {
	documents DocumentService
}

// NewContextSearchHandler creates a new ContextSearchHandler.
func NewContextSearchHandler(documents DocumentService) *ContextSearchHandler {
	return &ContextSearchHandler{documents: documents}
}

func (h *ContextSearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ContextSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid context search body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.documents.ContextSearch(ctx, req.Query, req.FileTypeFilter)
	if err != nil {
		writeServiceError(ctx, w, err, "Context search failed")
		return
	}

	results := make([]ContextSearchResultResponse, 0, len(result.Results))
	for _, res := range result.Results {
		results = append(results, ContextSearchResultResponse{
			FileRecord:      res.Record,
			SimilarityScore: res.SimilarityScore,
			MatchedText:     res.MatchedText,
		})
	}

	writeJSON(w, http.StatusOK, ContextSearchResponse{
		Query:      result.Query,
		Results:    results,
		TotalFound: result.TotalFound,
	})
}
