package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks docvault/internal/storage FileStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// MIMEFilter narrows queries by MIME type. The zero value matches everything.
type MIMEFilter struct {
	Exact    string // match file_type exactly
	Contains string // match file_type containing this substring
}

// IsZero reports whether the filter matches all types.
func (f MIMEFilter) IsZero() bool {
	return f.Exact == "" && f.Contains == ""
}

// FileStore defines the interface for document metadata storage.
type FileStore interface {
	// Insert stores a new record and fills in its ID and UploadDate.
	Insert(ctx context.Context, rec *FileRecord) error
	// GetByID returns the record with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*FileRecord, error)
	// GetByIDs returns the records matching the given ids and filter, in no
	// particular order. Missing ids are silently omitted.
	GetByIDs(ctx context.Context, ids []int64, filter MIMEFilter) ([]FileRecord, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]FileRecord, error)
	// Search returns records whose name, summary or content contains the query
	// (case-insensitive), optionally narrowed by MIME type, newest first.
	// An empty query matches every record.
	Search(ctx context.Context, query string, filter MIMEFilter) ([]FileRecord, error)
	// UpdateSummary sets file_summary for the given id. Returns ErrNotFound if
	// the row no longer exists.
	UpdateSummary(ctx context.Context, id int64, summary string) error
	// Delete removes the record with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

// FileRepo provides methods for document metadata operations.
// It implements the FileStore interface.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

const fileColumns = "id, file_name, file_path, file_size, file_type, file_summary, file_content, upload_date"

// Insert stores a new record and fills in its ID and UploadDate.
func (r *FileRepo) Insert(ctx context.Context, rec *FileRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO files (file_name, file_path, file_size, file_type, file_summary, file_content)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.FileName, rec.FilePath, rec.FileSize, rec.FileType, rec.FileSummary, rec.FileContent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	rec.ID = id

	// Read back the server-assigned upload timestamp
	inserted, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read back inserted record: %w", err)
	}
	rec.UploadDate = inserted.UploadDate

	return nil
}

// GetByID returns the record with the given id, or ErrNotFound.
func (r *FileRepo) GetByID(ctx context.Context, id int64) (*FileRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = ?", id)

	rec, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}
	return rec, nil
}

// GetByIDs returns the records matching the given ids and filter.
func (r *FileRepo) GetByIDs(ctx context.Context, ids []int64, filter MIMEFilter) ([]FileRecord, error) {
	if len(ids) == 0 {
		return []FileRecord{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := "SELECT " + fileColumns + " FROM files WHERE id IN (" + strings.Join(placeholders, ", ") + ")"
	query, args = applyMIMEFilter(query, args, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query file records by ids: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectFiles(rows)
}

// ListAll returns every record, newest first.
func (r *FileRepo) ListAll(ctx context.Context) ([]FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files ORDER BY upload_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectFiles(rows)
}

// Search returns records whose name, summary or content contains the query.
// An empty query matches every record, so an empty query plus a type filter
// acts as browse-by-type.
func (r *FileRepo) Search(ctx context.Context, query string, filter MIMEFilter) ([]FileRecord, error) {
	pattern := "%" + query + "%"
	sqlQuery := "SELECT " + fileColumns + ` FROM files
		WHERE (file_name LIKE ? OR IFNULL(file_summary, '') LIKE ? OR file_content LIKE ?)`
	args := []any{pattern, pattern, pattern}
	sqlQuery, args = applyMIMEFilter(sqlQuery, args, filter)
	sqlQuery += " ORDER BY upload_date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search file records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectFiles(rows)
}

// UpdateSummary sets file_summary for the given id.
func (r *FileRepo) UpdateSummary(ctx context.Context, id int64, summary string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE files SET file_summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with the given id.
func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// applyMIMEFilter appends the MIME constraint to a query that already has a
// WHERE clause.
func applyMIMEFilter(query string, args []any, filter MIMEFilter) (string, []any) {
	if filter.Exact != "" {
		query += " AND file_type = ?"
		args = append(args, filter.Exact)
	} else if filter.Contains != "" {
		query += " AND file_type LIKE ?"
		args = append(args, "%"+filter.Contains+"%")
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var rec FileRecord
	var uploadDateStr string

	err := row.Scan(&rec.ID, &rec.FileName, &rec.FilePath, &rec.FileSize,
		&rec.FileType, &rec.FileSummary, &rec.FileContent, &uploadDateStr)
	if err != nil {
		return nil, err
	}

	// Parse upload_date DATETIME string
	rec.UploadDate, err = time.Parse("2006-01-02 15:04:05", uploadDateStr)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		rec.UploadDate, err = time.Parse(time.RFC3339, uploadDateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload_date timestamp: %w", err)
		}
	}

	return &rec, nil
}

func collectFiles(rows *sql.Rows) ([]FileRecord, error) {
	records := []FileRecord{}
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file records: %w", err)
	}
	return records, nil
}
