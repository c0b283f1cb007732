package storage

import "time"

// FileRecord represents one uploaded document in the files table.
type FileRecord struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`    // Original client-supplied name, display only
	FilePath    string    `json:"file_path"`    // Server-generated storage key under the upload dir
	FileSize    int64     `json:"file_size"`    // Byte length at upload time
	FileType    string    `json:"file_type"`    // Declared MIME type
	FileSummary *string   `json:"file_summary"` // Nil until the background summarization completes
	FileContent string    `json:"-"`            // Extracted plain text, truncated for storage
	UploadDate  time.Time `json:"upload_date"`
}
