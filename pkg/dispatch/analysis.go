package dispatch

import (
	"context"
	"fmt"
)

const analysisMaxWords = 100

// analyze issues the secondary LLM call following RUN/CHECK/INSPECT/
// READ-MODIFY (spec §4.5): the primary prompt plus the captured output,
// asking for a short analysis to carry into the next prompt. Failures are
// swallowed to an empty string — analysis is advisory, never fatal to the
// iteration that produced it.
func (d *Dispatcher) analyze(ctx context.Context, prompt, output string) string {
	if d.Client == nil {
		return ""
	}
	req := fmt.Sprintf(
		"%s\n\n# Captured output\n%s\n\nIn %d words or fewer, summarise what this output means for the task and what to do next.",
		prompt, output, analysisMaxWords,
	)
	result, err := d.Client.Generate(ctx, req, 300)
	if err != nil {
		return ""
	}
	return result.Text
}
