// Package mlservice is a thin HTTP client for the external ML microservice
// that performs summarization, embedding and vector search. Every operation
// has its own timeout and is attempted exactly once; fallback behavior on
// failure is the caller's responsibility.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Per-operation timeouts. A slow or hung ML service must never stall a
// request or a background task indefinitely.
const (
	availabilityTimeout = 5 * time.Second
	embedTimeout        = 15 * time.Second
	searchTimeout       = 15 * time.Second
	summarizeTimeout    = 30 * time.Second
	indexTimeout        = 30 * time.Second
)

// Summarization request defaults, matching the service's documented contract.
const (
	summaryMaxLength   = 150
	summaryTemperature = 0.3
)

// DocID returns the vector-index key for a stored file id.
// The numeric DB id is the only identifier used for cross-store correlation.
func DocID(fileID int64) string {
	return fmt.Sprintf("file_%d", fileID)
}

// Client is a client for the ML microservice HTTP API.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a new ML service client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		client:  http.DefaultClient,
	}
}

// SummarizeRequest represents the request payload for summarization.
type SummarizeRequest struct {
	Text        string  `json:"text"`
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

// SummarizeResponse represents the response from the summarize endpoint.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// EmbedRequest represents the request payload for embedding generation.
type EmbedRequest struct {
	Text string `json:"text"`
}

// EmbedResponse represents the response from the embed endpoint.
type EmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// AddDocumentRequest represents the request payload for indexing a document.
type AddDocumentRequest struct {
	DocumentID string           `json:"document_id"`
	Text       string           `json:"text"`
	Metadata   DocumentMetadata `json:"metadata"`
}

// DocumentMetadata is the metadata stored alongside an indexed document.
type DocumentMetadata struct {
	FileID     string `json:"file_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	UploadDate string `json:"upload_date"`
}

// SearchRequest represents the request payload for vector search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters,omitempty"`
}

// SearchResult is one ranked result from the vector search.
type SearchResult struct {
	Document string         `json:"document"`
	Distance float64        `json:"distance"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResponse represents the response from the search endpoint.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// IsAvailable probes the service's health endpoint with a short timeout.
func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Summarize requests a summary for the given text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	payload := SummarizeRequest{
		Text:        text,
		MaxLength:   summaryMaxLength,
		Temperature: summaryTemperature,
	}

	var result SummarizeResponse
	if err := c.postJSON(ctx, "/summarize", payload, &result); err != nil {
		return "", fmt.Errorf("summarize failed: %w", err)
	}
	if result.Summary == "" {
		return "", fmt.Errorf("summarize returned an empty summary")
	}

	return result.Summary, nil
}

// Embed generates an embedding vector for the given text.
// This is a legacy direct-call path; the upload and search flows go through
// Summarize, AddDocument and Search instead.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	var result EmbedResponse
	if err := c.postJSON(ctx, "/embed", EmbedRequest{Text: text}, &result); err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embed returned an empty vector")
	}

	return result.Embedding, nil
}

// AddDocument stores a document in the vector index. Repeated calls with the
// same id overwrite on the service side.
func (c *Client) AddDocument(ctx context.Context, docID, text string, meta DocumentMetadata) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	payload := AddDocumentRequest{
		DocumentID: docID,
		Text:       text,
		Metadata:   meta,
	}

	if err := c.postJSON(ctx, "/documents", payload, nil); err != nil {
		return fmt.Errorf("add document failed: %w", err)
	}
	return nil
}

// RemoveDocument removes a document from the vector index.
func (c *Client) RemoveDocument(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/documents/%s", c.BaseURL, docID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remove document failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("remove document failed: bad status %d: %s", resp.StatusCode, string(raw))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Search performs a semantic search against the vector index.
func (c *Client) Search(ctx context.Context, query string, filters map[string]any) ([]SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	var result SearchResponse
	if err := c.postJSON(ctx, "/search", SearchRequest{Query: query, Filters: filters}, &result); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return result.Results, nil
}

// postJSON sends a JSON POST request and decodes the JSON response into out
// (out may be nil when the response body is irrelevant).
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
