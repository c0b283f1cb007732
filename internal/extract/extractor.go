// Package extract turns stored files into plain text for search and
// summarization, and into sanitized HTML for client-side rendering.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Supported MIME types. Anything else is rejected before extraction.
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupportedType is returned for MIME types the extractor cannot handle.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor extracts text and renders HTML from uploaded documents.
type Extractor struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Supported reports whether the declared MIME type has an extraction strategy.
func Supported(mimeType string) bool {
	switch mimeType {
	case MIMEText, MIMEPDF, MIMEDocx:
		return true
	}
	return false
}

// Text extracts plain text from the file at path according to its declared
// MIME type. An empty result is not an error (e.g. image-only PDFs).
func (e *Extractor) Text(path, mimeType string) (string, error) {
	switch mimeType {
	case MIMEText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil
	case MIMEPDF:
		return pdfText(path)
	case MIMEDocx:
		return e.docxText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
}

// DocxHTML converts a word-processing document to sanitized paragraph HTML
// for client-side rendering. Conversion happens on demand and is not cached.
func (e *Extractor) DocxHTML(path string) (string, error) {
	paragraphs, err := docxParagraphs(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(p))
		sb.WriteString("</p>\n")
	}

	return e.policy.Sanitize(sb.String()), nil
}

// MarkdownHTML renders markdown source to sanitized HTML.
func (e *Extractor) MarkdownHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return e.policy.Sanitize(buf.String()), nil
}

func pdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	return buf.String(), nil
}

func (e *Extractor) docxText(path string) (string, error) {
	paragraphs, err := docxParagraphs(path)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

func docxParagraphs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph, *docx.Table:
			paragraphs = append(paragraphs, fmt.Sprint(item))
		}
	}

	return paragraphs, nil
}
