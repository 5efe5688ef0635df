package edit

import (
	"fmt"
	"sort"
	"strings"
)

// Result is what Apply produces: the new file content, a human-readable
// change summary (unified-diff-flavoured -old/+new blocks, plus any
// out-of-range warnings), and whether anything was actually applied.
type Result struct {
	Content string
	Summary string
	Applied bool
}

// Apply applies a same-kind batch of commands to content. Line numbers are
// 1-based and refer to positions in the *original* file; commands are walked
// in ascending start-line order while a running offset keeps later commands
// aligned to the same original coordinates (spec §4.3 application
// semantics). Out-of-range commands are skipped with a warning line in the
// summary rather than aborting the batch.
func Apply(content string, cmds []Command) Result {
	if len(cmds) == 0 {
		return Result{Content: content}
	}

	sorted := make([]Command, len(cmds))
	copy(sorted, cmds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	lines := strings.Split(content, "\n")
	offset := 0
	var summary strings.Builder
	applied := false

	for _, cmd := range sorted {
		switch cmd.Kind {
		case KindRemove:
			a, b := cmd.Start+offset, cmd.End+offset
			if cmd.Start > cmd.End || a < 1 || b > len(lines) {
				fmt.Fprintf(&summary, "REMOVE %s: out of range\n", rangeStr(cmd))
				continue
			}
			removed := lines[a-1 : b]
			for _, l := range removed {
				fmt.Fprintf(&summary, "-%s\n", l)
			}
			lines = append(lines[:a-1:a-1], lines[b:]...)
			offset -= (b - a + 1)
			applied = true

		case KindModify:
			a, b := cmd.Start+offset, cmd.End+offset
			if cmd.Start > cmd.End || a < 1 || b > len(lines) {
				fmt.Fprintf(&summary, "MODIFY %s: out of range\n", rangeStr(cmd))
				continue
			}
			newLines := splitPayload(cmd.Content)
			for _, l := range lines[a-1 : b] {
				fmt.Fprintf(&summary, "-%s\n", l)
			}
			for _, l := range newLines {
				fmt.Fprintf(&summary, "+%s\n", l)
			}
			tail := append([]string{}, lines[b:]...)
			lines = append(lines[:a-1:a-1], append(newLines, tail...)...)
			offset += len(newLines) - (b - a + 1)
			applied = true

		case KindAdd:
			n := cmd.Start + offset
			if n < 0 || n > len(lines) {
				fmt.Fprintf(&summary, "ADD %d: out of range\n", cmd.Start)
				continue
			}
			newLines := splitPayload(cmd.Content)
			for _, l := range newLines {
				fmt.Fprintf(&summary, "+%s\n", l)
			}
			tail := append([]string{}, lines[n:]...)
			lines = append(lines[:n:n], append(newLines, tail...)...)
			offset += len(newLines)
			applied = true
		}
	}

	return Result{Content: strings.Join(lines, "\n"), Summary: summary.String(), Applied: applied}
}

func splitPayload(content string) []string {
	if content == "" {
		return []string{""}
	}
	return strings.Split(content, "\n")
}

func rangeStr(cmd Command) string {
	if cmd.Start == cmd.End {
		return fmt.Sprintf("%d", cmd.Start)
	}
	return fmt.Sprintf("%d-%d", cmd.Start, cmd.End)
}
