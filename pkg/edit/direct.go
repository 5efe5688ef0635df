package edit

import (
	"fmt"
	"strings"
)

// ApplyDirect implements direct mode (spec §4.3): the model returns the full
// new file content; the engine writes only if bytes differ and returns a
// unified-diff-flavoured summary. There is no partial-edit parsing.
func ApplyDirect(original, newContent string) Result {
	if original == newContent {
		return Result{Content: original}
	}
	return Result{Content: newContent, Summary: lineDiff(original, newContent), Applied: true}
}

// lineDiff produces a compact -old/+new summary by trimming the common
// prefix and suffix of lines and reporting only the differing middle span —
// a cheap approximation of a unified diff, not a minimal-edit-distance one.
func lineDiff(a, b string) string {
	aLines := strings.Split(a, "\n")
	bLines := strings.Split(b, "\n")

	prefix := 0
	for prefix < len(aLines) && prefix < len(bLines) && aLines[prefix] == bLines[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(aLines)-prefix && suffix < len(bLines)-prefix &&
		aLines[len(aLines)-1-suffix] == bLines[len(bLines)-1-suffix] {
		suffix++
	}

	var out strings.Builder
	fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n", prefix+1, len(aLines)-prefix-suffix, prefix+1, len(bLines)-prefix-suffix)
	for _, l := range aLines[prefix : len(aLines)-suffix] {
		fmt.Fprintf(&out, "-%s\n", l)
	}
	for _, l := range bLines[prefix : len(bLines)-suffix] {
		fmt.Fprintf(&out, "+%s\n", l)
	}
	return out.String()
}
