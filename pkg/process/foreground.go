package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultForegroundTimeout is the RUN default from spec §4.2.
const DefaultForegroundTimeout = 600 * time.Second

// ForegroundResult is what a completed (or timed-out) RUN produces.
type ForegroundResult struct {
	Transcript string
	ExitCode   int
	Success    bool
	TimedOut   bool
}

// RunForeground executes cmd synchronously via /bin/bash -c, enforcing
// timeout. The operator's working directory is never touched — bash -c runs
// in its own process with Dir=cwd, so any `cd` inside cmd only affects that
// subshell (spec §4.2).
func RunForeground(ctx context.Context, cmd string, cwd string, timeout time.Duration) (ForegroundResult, error) {
	if timeout <= 0 {
		timeout = DefaultForegroundTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, "/bin/bash", "-c", cmd)
	if cwd != "" {
		c.Dir = cwd
	}

	output, err := c.CombinedOutput()
	transcript := string(output)

	if runCtx.Err() == context.DeadlineExceeded {
		return ForegroundResult{
			Transcript: transcript,
			ExitCode:   -1,
			Success:    false,
			TimedOut:   true,
		}, nil
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return ForegroundResult{
				Transcript: withPermissionHint(transcript, cmd, err),
				ExitCode:   exitErr.ExitCode(),
				Success:    false,
			}, nil
		}
		// Launch-level failure (not found, permission denied, ...): report
		// without aborting the whole agent.
		return ForegroundResult{
			Transcript: withPermissionHint(transcript, cmd, err),
			ExitCode:   -1,
			Success:    false,
		}, nil
	}

	return ForegroundResult{Transcript: transcript, ExitCode: 0, Success: true}, nil
}

// withPermissionHint appends a hint for common launch mistakes (spec §4.2
// failure modes): running a .go file directly instead of `go run`, or a
// permission-denied script that needs +x.
func withPermissionHint(transcript string, cmd string, err error) string {
	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "permission denied"):
		hint = "hint: the target is not executable (chmod +x) or this command needs elevated permission."
	case strings.Contains(msg, "no such file or directory") && strings.Contains(cmd, ".go") && !strings.HasPrefix(strings.TrimSpace(cmd), "go "):
		hint = "hint: did you mean to run this with `go run <file>.go` from the module root?"
	}
	if hint == "" {
		return fmt.Sprintf("%s\n%s", transcript, msg)
	}
	return fmt.Sprintf("%s\n%s\n%s", transcript, msg, hint)
}
