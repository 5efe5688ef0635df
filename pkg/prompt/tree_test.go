package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestSnapshot_SkipsDotfilesAndNodeModules(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "main.go"), "package main")
	mustWriteFile(t, filepath.Join(dir, ".git", "HEAD"), "ref: refs/heads/main")
	mustWriteFile(t, filepath.Join(dir, "node_modules", "left-pad", "index.js"), "")

	snap, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	var names []string
	for _, f := range snap.Files {
		names = append(names, f.Name)
	}
	for _, skip := range []string{".git", "node_modules"} {
		for _, n := range names {
			if n == skip {
				t.Errorf("Snapshot() should skip %q, got children %v", skip, names)
			}
		}
	}
	found := false
	for _, n := range names {
		if n == "main.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("Snapshot() should include main.go, got %v", names)
	}
}

func TestRenderTree_IndentsByDepth(t *testing.T) {
	snap := Node{
		Name: "root",
		Dir:  true,
		Files: []Node{
			{Name: "a.go"},
			{Name: "sub", Dir: true, Files: []Node{{Name: "b.go"}}},
		},
	}
	rendered := RenderTree(snap)
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("RenderTree() produced %d lines, want 4: %q", len(lines), rendered)
	}
	if !strings.HasPrefix(lines[2], "  sub/") {
		t.Errorf("expected indented directory line, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "    b.go") {
		t.Errorf("expected doubly-indented file line, got %q", lines[3])
	}
}
