package scaffold

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsZeroBrief(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(b.Directories) != 0 || b.Notes != "" {
		t.Errorf("Load() = %+v, want zero Brief", b)
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project_technical_brief.json")
	want := Brief{
		Notes: "ingested from design.pdf",
		Directories: []DirBrief{
			{Path: "pkg/store", Summary: "iteration bookkeeping", Files: []FileBrief{
				{Path: "pkg/store/log.go", Summary: "append-only action log"},
			}},
		},
	}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Notes != want.Notes || len(got.Directories) != 1 || got.Directories[0].Path != "pkg/store" {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestIngestDesignDoc_MissingFileErrors(t *testing.T) {
	if _, err := IngestDesignDoc(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Error("IngestDesignDoc() error = nil, want error for missing file")
	}
}
