// Package scaffold is the seam for the one-shot project-scaffold
// generator and its technical-brief JSON store (spec §1 Non-goals, §6
// "generate mode and the technical-brief JSON lifecycle belong to the
// scaffold collaborator, not the core"). The generator itself runs out
// of core; this package gives it a typed store to write to and, for the
// common case of an operator handing over a PDF design doc, a way to
// turn that into the brief's free-form notes field.
package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBrief is one file's entry in the technical brief (spec §6
// "per-directory and per-file metadata used by the scaffold generator").
type FileBrief struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

// DirBrief is one directory's entry: its own summary plus the files it
// directly contains.
type DirBrief struct {
	Path    string      `json:"path"`
	Summary string      `json:"summary"`
	Files   []FileBrief `json:"files"`
}

// Brief is the full technical-brief document: per-directory metadata plus
// a free-form notes field the generator seeds from an operator-supplied
// design document (spec §6 `project_technical_brief.json`).
type Brief struct {
	Notes       string     `json:"notes,omitempty"`
	Directories []DirBrief `json:"directories"`
}

// Load reads a technical brief from path. A missing file returns a zero
// Brief, matching the generator's "not yet scaffolded" state.
func Load(path string) (Brief, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Brief{}, nil
	}
	if err != nil {
		return Brief{}, fmt.Errorf("scaffold: read technical brief: %w", err)
	}
	var b Brief
	if err := json.Unmarshal(data, &b); err != nil {
		return Brief{}, fmt.Errorf("scaffold: parse technical brief: %w", err)
	}
	return b, nil
}

// Save writes b to path via a temp-file-then-rename so a reader never
// observes a partially written brief (spec §6: "written via atomic
// rename").
func Save(path string, b Brief) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("scaffold: marshal technical brief: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".technical-brief-*.tmp")
	if err != nil {
		return fmt.Errorf("scaffold: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("scaffold: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("scaffold: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("scaffold: rename temp file into place: %w", err)
	}
	return nil
}
