package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/achrafdevl/talentbridge/internal/wizard"
)

var _ wizard.Recorder = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := New(filepath.Join(t.TempDir(), "nested", "history.yaml"))
	fixed := time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	return s
}

func TestMissingFileIsEmptyHistory(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.Entries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	if _, err := s.Last(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordAndRead(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordGeneration(wizard.Generated{JobID: "job-1", CVID: "cv-1", GeneratedID: "gen-1", Similarity: 72}); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := s.RecordGeneration(wizard.Generated{JobID: "job-2", CVID: "cv-2", GeneratedID: "gen-2", Similarity: 88}); err != nil {
		t.Fatalf("record second: %v", err)
	}
	if err := s.RecordDownload("gen-1", "/tmp/tailored_cv_gen-1.docx"); err != nil {
		t.Fatalf("record download: %v", err)
	}

	// A fresh store reads what the first one wrote.
	reopened := New(s.Path())

	entries, err := reopened.Entries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.GeneratedID != "gen-1" || first.JobID != "job-1" || first.CVID != "cv-1" || first.Similarity != 72 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.File != "/tmp/tailored_cv_gen-1.docx" {
		t.Fatalf("expected download path to be recorded, got %q", first.File)
	}
	if !first.CreatedAt.Equal(time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %v", first.CreatedAt)
	}

	last, err := reopened.Last()
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if last.GeneratedID != "gen-2" {
		t.Fatalf("expected gen-2 to be last, got %s", last.GeneratedID)
	}
}

func TestFindByID(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordGeneration(wizard.Generated{GeneratedID: "gen-1", Similarity: 61}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entry, err := s.FindByID("gen-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if entry.Similarity != 61 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := s.FindByID("gen-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordDownloadWithoutGeneration(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordDownload("gen-7", "out.docx"); err != nil {
		t.Fatalf("record download: %v", err)
	}

	entry, err := s.FindByID("gen-7")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if entry.File != "out.docx" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	if err := os.WriteFile(path, []byte("entries: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := New(path)
	if _, err := s.Entries(); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := s.RecordGeneration(wizard.Generated{GeneratedID: "gen-1"}); err == nil {
		t.Fatalf("expected record to refuse overwriting a broken file")
	}
}

func TestEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := New(path).Entries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
