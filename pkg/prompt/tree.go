// Package prompt builds the directory snapshot and assembles the
// next-iteration prompt handed to the LLM transport (spec §3, §4.7).
package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// skipPatterns names directories (matched by basename) the snapshot never
// descends into: dotfiles, dependency trees, and common build output.
var skipPatterns = []string{
	".*",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"target",
	"__pycache__",
	".*cache*",
}

func skipped(name string) bool {
	for _, pat := range skipPatterns {
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// Node is one entry in the project tree snapshot: a directory with child
// files and subdirectories, or a leaf file.
type Node struct {
	Name  string `json:"name"`
	Dir   bool   `json:"dir"`
	Files []Node `json:"files,omitempty"`
}

// Snapshot walks root and returns a simplified tree: directories map to
// their child files/subdirectories, skipping dotfiles, node_modules, and
// common build output (spec §3). It is regenerated every iteration and is
// a hint for the prompt, not authoritative.
func Snapshot(root string) (Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Node{}, err
	}
	return walk(root, filepath.Base(root), info)
}

func walk(path, name string, info os.FileInfo) (Node, error) {
	if !info.IsDir() {
		return Node{Name: name, Dir: false}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Node{Name: name, Dir: true}, nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	node := Node{Name: name, Dir: true}
	for _, e := range entries {
		if skipped(e.Name()) {
			continue
		}
		childInfo, err := e.Info()
		if err != nil {
			continue
		}
		child, err := walk(filepath.Join(path, e.Name()), e.Name(), childInfo)
		if err != nil {
			continue
		}
		node.Files = append(node.Files, child)
	}
	return node, nil
}

// SaveSnapshot persists snap as project_structure.json at path.
func SaveSnapshot(path string, snap Node) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderTree renders snap as an indented plain-text listing for embedding
// directly in a prompt, rather than raw JSON.
func RenderTree(snap Node) string {
	var b []byte
	b = renderNode(b, snap, 0)
	return string(b)
}

func renderNode(b []byte, n Node, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, "  "...)
	}
	b = append(b, n.Name...)
	if n.Dir {
		b = append(b, '/')
	}
	b = append(b, '\n')
	for _, child := range n.Files {
		b = renderNode(b, child, depth+1)
	}
	return b
}
