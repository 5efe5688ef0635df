package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jg-phare/devlm/pkg/llm"
	"gopkg.in/yaml.v3"
)

// Brief is the history-brief wire format: a short JSON object of "key
// events" carried past the rolling-window horizon (spec §3, §4.4).
type Brief struct {
	KeyEvents []string `json:"key_events"`
}

// briefFrontMatter is an optional YAML block an operator can prepend to a
// hand-edited brief file to annotate it; devlm parses and ignores the
// fields so the file still loads. The block is not kept: the next SaveBrief
// overwrites the file with plain JSON.
type briefFrontMatter struct {
	Note string `yaml:"note,omitempty"`
}

const frontMatterDelim = "---"

// LoadBrief reads a brief file written by SaveBrief or hand-edited by an
// operator. A leading "---\n...\n---\n" block, if present, is parsed as
// YAML front matter and stripped before the JSON body is decoded.
func LoadBrief(path string) (Brief, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Brief{}, nil
	}
	if err != nil {
		return Brief{}, fmt.Errorf("store: read history brief: %w", err)
	}
	body := stripFrontMatter(string(data))
	if strings.TrimSpace(body) == "" {
		return Brief{}, nil
	}
	var b Brief
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return Brief{}, fmt.Errorf("store: parse history brief: %w", err)
	}
	return b, nil
}

func stripFrontMatter(s string) string {
	if !strings.HasPrefix(s, frontMatterDelim) {
		return s
	}
	rest := s[len(frontMatterDelim):]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end == -1 {
		return s
	}
	var fm briefFrontMatter
	_ = yaml.Unmarshal([]byte(rest[:end]), &fm)
	return rest[end+len("\n"+frontMatterDelim):]
}

// SaveBrief writes b to path as plain JSON (no front matter — that's only
// ever added by an operator hand-editing the file).
func SaveBrief(path string, b Brief) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal history brief: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write history brief: %w", err)
	}
	return nil
}

const briefPromptSchema = `Respond with nothing but a single JSON object of the exact shape {"key_events": ["...", ...]}. Each string is one concise, already-resolved fact worth remembering past the next few iterations. Do not repeat facts already present in the previous brief unless they still matter.`

// Regenerate issues the secondary LLM call that refreshes the history
// brief: the last BriefLookback records, the previous brief, and the
// current user notes. If the model's reply fails to parse as the strict
// {"key_events": [...]} schema, the previous brief is retained unchanged
// (spec §4.4).
func Regenerate(ctx context.Context, client llm.Client, previous Brief, records []Record, notes string) (Brief, error) {
	recordJSON, err := json.Marshal(records)
	if err != nil {
		return previous, fmt.Errorf("store: marshal records for brief: %w", err)
	}
	prevJSON, err := json.Marshal(previous)
	if err != nil {
		return previous, fmt.Errorf("store: marshal previous brief: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Previous brief:\n%s\n\n", prevJSON)
	fmt.Fprintf(&prompt, "User notes:\n%s\n\n", notes)
	fmt.Fprintf(&prompt, "Last %d iteration records:\n%s\n\n", len(records), recordJSON)
	prompt.WriteString(briefPromptSchema)

	result, err := client.Generate(ctx, prompt.String(), 1000)
	if err != nil {
		return previous, fmt.Errorf("store: regenerate history brief: %w", err)
	}

	var next Brief
	if err := json.Unmarshal([]byte(extractJSONObject(result.Text)), &next); err != nil {
		return previous, nil
	}
	return next, nil
}

// extractJSONObject trims surrounding prose the model may have added
// despite being told not to, returning the substring between the first
// '{' and the last '}'.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
