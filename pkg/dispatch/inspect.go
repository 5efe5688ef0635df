package dispatch

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// maxInspectBytes is the per-file truncation bound for INSPECT (spec
// §4.5).
const maxInspectBytes = 20_000

func (d *Dispatcher) dispatchInspect(ctx context.Context, prompt string, paths []string) (Outcome, error) {
	if d.InspectGuard != nil && d.InspectGuard.Check(paths) {
		return Outcome{
			Output:  "refused: this is an exact repeat of the immediately preceding inspection",
			Success: false,
		}, nil
	}

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "=== %s ===\n", p)
		content, err := readNumberedTruncated(p)
		if err != nil {
			fmt.Fprintf(&b, "error: %s\n\n", err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}

	output := b.String()
	return Outcome{Output: output, Success: true, Analysis: d.analyze(ctx, prompt, output)}, nil
}

// readNumberedTruncated reads path, prefixes each line with its 1-based
// line number, and truncates the result to maxInspectBytes.
func readNumberedTruncated(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(string(data), "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	s := b.String()
	if len(s) > maxInspectBytes {
		s = s[:maxInspectBytes]
	}
	return s, nil
}
