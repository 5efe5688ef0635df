package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesSubtreeAndLocks(t *testing.T) {
	dir := t.TempDir()

	h, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	for _, sub := range []string{"actions", "briefs", "debug/prompts", "debug/responses"} {
		if info, err := os.Stat(filepath.Join(h.Root, sub)); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist, err = %v", sub, err)
		}
	}
	if h.SessionID == "" {
		t.Error("expected a non-empty session id")
	}
}

func TestOpen_SecondOpenOnSamePathFails(t *testing.T) {
	dir := t.TempDir()

	h1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	defer h1.Close()

	if _, err := Open(dir); err == nil {
		t.Error("expected a second Open() on the same project path to fail while the first holds the lock")
	}
}

func TestOpen_ReleasesLockOnClose(t *testing.T) {
	dir := t.TempDir()

	h1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if err := h1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	h2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() after Close() should succeed, error = %v", err)
	}
	defer h2.Close()
}

func TestHome_ReadNotes_MissingFileIsEmpty(t *testing.T) {
	h, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	notes, err := h.ReadNotes()
	if err != nil {
		t.Fatalf("ReadNotes() error = %v", err)
	}
	if notes != "" {
		t.Errorf("ReadNotes() on missing file = %q, want empty", notes)
	}
}

func TestHome_PathsAreDistinct(t *testing.T) {
	h, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	paths := map[string]bool{
		h.ProjectStructurePath(): true,
		h.TechnicalBriefPath():   true,
		h.TestProgressPath():     true,
		h.NotesPath():            true,
		h.ActionHistoryPath():    true,
		h.HistoryBriefPath():     true,
	}
	if len(paths) != 6 {
		t.Errorf("expected 6 distinct paths, got %d", len(paths))
	}
}
