package storage

import (
	"context"
	"testing"
)

func newTestRepo(t *testing.T) *FileRepo {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	return NewFileRepo(db)
}

func insertTestFile(t *testing.T, repo *FileRepo, name, mime, content string) *FileRecord {
	t.Helper()

	rec := &FileRecord{
		FileName:    name,
		FilePath:    "stored-" + name,
		FileSize:    int64(len(content)),
		FileType:    mime,
		FileContent: content,
	}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert(%s) error = %v", name, err)
	}
	return rec
}

func TestFileRepo_InsertAndGetByID(t *testing.T) {
	repo := newTestRepo(t)

	rec := insertTestFile(t, repo, "report.pdf", "application/pdf", "quarterly budget report")

	if rec.ID == 0 {
		t.Fatal("Insert() did not assign an id")
	}
	if rec.UploadDate.IsZero() {
		t.Fatal("Insert() did not fill in the upload date")
	}

	got, err := repo.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FileName != "report.pdf" || got.FileType != "application/pdf" {
		t.Errorf("GetByID() = %+v, want name/type of inserted record", got)
	}
	if got.FileSummary != nil {
		t.Errorf("GetByID() summary = %v, want nil before summarization", *got.FileSummary)
	}
}

func TestFileRepo_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.GetByID(context.Background(), 9999); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestFileRepo_Search(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	insertTestFile(t, repo, "budget-2026.pdf", "application/pdf", "annual budget planning")
	insertTestFile(t, repo, "notes.txt", "text/plain", "meeting notes about the Budget")
	insertTestFile(t, repo, "contract.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"signed contract")

	tests := []struct {
		name      string
		query     string
		filter    MIMEFilter
		wantNames []string
	}{
		{
			name:      "substring match across name and content",
			query:     "budget",
			wantNames: []string{"notes.txt", "budget-2026.pdf"},
		},
		{
			name:      "case-insensitive match",
			query:     "BUDGET",
			wantNames: []string{"notes.txt", "budget-2026.pdf"},
		},
		{
			name:      "query plus exact MIME filter",
			query:     "budget",
			filter:    MIMEFilter{Exact: "application/pdf"},
			wantNames: []string{"budget-2026.pdf"},
		},
		{
			name:      "empty query browses by type",
			query:     "",
			filter:    MIMEFilter{Contains: "wordprocessingml"},
			wantNames: []string{"contract.docx"},
		},
		{
			name:      "empty query and no filter matches everything",
			query:     "",
			wantNames: []string{"contract.docx", "notes.txt", "budget-2026.pdf"},
		},
		{
			name:      "no matches",
			query:     "nonexistent-term",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.query, tt.filter)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("Search() returned %d records, want %d", len(got), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if got[i].FileName != want {
					t.Errorf("Search() result[%d] = %s, want %s", i, got[i].FileName, want)
				}
			}
		})
	}
}

func TestFileRepo_ListAll_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)

	insertTestFile(t, repo, "first.txt", "text/plain", "a")
	insertTestFile(t, repo, "second.txt", "text/plain", "b")
	insertTestFile(t, repo, "third.txt", "text/plain", "c")

	got, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListAll() returned %d records, want 3", len(got))
	}
	if got[0].FileName != "third.txt" || got[2].FileName != "first.txt" {
		t.Errorf("ListAll() order = [%s %s %s], want newest first",
			got[0].FileName, got[1].FileName, got[2].FileName)
	}
}

func TestFileRepo_GetByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pdf := insertTestFile(t, repo, "a.pdf", "application/pdf", "x")
	txt := insertTestFile(t, repo, "b.txt", "text/plain", "y")

	// Batch fetch including an id that no longer exists
	got, err := repo.GetByIDs(ctx, []int64{pdf.ID, txt.ID, 9999}, MIMEFilter{})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("GetByIDs() returned %d records, want 2 (missing id dropped)", len(got))
	}

	// Type filter applies to the batch fetch
	got, err = repo.GetByIDs(ctx, []int64{pdf.ID, txt.ID}, MIMEFilter{Exact: "application/pdf"})
	if err != nil {
		t.Fatalf("GetByIDs() with filter error = %v", err)
	}
	if len(got) != 1 || got[0].ID != pdf.ID {
		t.Errorf("GetByIDs() with filter = %+v, want only the pdf record", got)
	}

	// Empty id list short-circuits
	got, err = repo.GetByIDs(ctx, nil, MIMEFilter{})
	if err != nil {
		t.Fatalf("GetByIDs(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("GetByIDs(nil) returned %d records, want 0", len(got))
	}
}

func TestFileRepo_UpdateSummary(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := insertTestFile(t, repo, "doc.txt", "text/plain", "content")

	if err := repo.UpdateSummary(ctx, rec.ID, "a short summary"); err != nil {
		t.Fatalf("UpdateSummary() error = %v", err)
	}

	got, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FileSummary == nil || *got.FileSummary != "a short summary" {
		t.Errorf("summary = %v, want 'a short summary'", got.FileSummary)
	}

	// Updating a deleted row reports ErrNotFound so the background task can
	// treat it as a no-op
	if err := repo.UpdateSummary(ctx, 9999, "late summary"); err != ErrNotFound {
		t.Errorf("UpdateSummary(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFileRepo_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := insertTestFile(t, repo, "doc.txt", "text/plain", "content")

	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(ctx, rec.ID); err != ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != ErrNotFound {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
