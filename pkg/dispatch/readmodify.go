package dispatch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jg-phare/devlm/pkg/edit"
)

func (d *Dispatcher) dispatchReadModify(ctx context.Context, prompt string, paths []string, target string) (Outcome, error) {
	if d.Lockout != nil && d.Lockout.Locked(target) {
		return Outcome{
			Output:  fmt.Sprintf("refused: %s is locked out for %d more iteration(s) after a prior identity edit", target, d.Lockout.Remaining(target)),
			Success: false,
		}, nil
	}

	var b strings.Builder
	targetMissing := false
	for _, p := range paths {
		fmt.Fprintf(&b, "=== %s ===\n", p)
		content, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) && p == target {
				targetMissing = true
			}
			fmt.Fprintf(&b, "error: %s\n\n", err)
			continue
		}
		b.WriteString(string(content))
		b.WriteString("\n\n")
	}

	if targetMissing {
		approved, err := d.approve(ctx, target+" does not exist; create it?")
		if err != nil {
			return Outcome{}, err
		}
		if !approved {
			return Outcome{Output: "operator declined to create " + target, Success: false}, nil
		}
	}

	original, err := os.ReadFile(target)
	if err != nil && !os.IsNotExist(err) {
		return Outcome{Error: err.Error(), Success: false}, nil
	}

	instruction := fmt.Sprintf(
		"%s\n\n# Files read\n%s\nPropose changes to %s only, using %s mode.",
		prompt, b.String(), target, d.writeMode(),
	)
	reply, err := d.Client.Generate(ctx, instruction, 4000)
	if err != nil {
		return Outcome{Error: err.Error(), Success: false}, nil
	}

	var result edit.Result
	if d.writeMode() == "direct" {
		result = edit.ApplyDirect(string(original), reply.Text)
	} else {
		result, err = edit.ApplyReply(string(original), reply.Text)
		if err != nil {
			return Outcome{Error: err.Error(), Success: false}, nil
		}
	}

	if result.Content == string(original) {
		if d.Lockout != nil {
			d.Lockout.Lock(target)
		}
		return Outcome{Output: "no change: edit produced byte-identical content", Success: true}, nil
	}

	if err := os.WriteFile(target, []byte(result.Content), 0o644); err != nil {
		return Outcome{Error: err.Error(), Success: false}, nil
	}

	outcome := Outcome{Output: result.Summary, Success: true, Diff: result.Summary, FileModified: target}
	outcome.Analysis = d.analyze(ctx, prompt, result.Summary)
	return outcome, nil
}
