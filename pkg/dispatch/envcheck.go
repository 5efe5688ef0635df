package dispatch

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// envCheckTimeout bounds the version probe run before a RUN whose leading
// command is go/python (spec §4.5).
const envCheckTimeout = 10 * time.Second

var versionFlag = map[string]string{
	"go":      "version",
	"python":  "--version",
	"python3": "--version",
}

// checkEnvironment runs the appropriate version probe for cmd's leading
// token, if any, and reports an error describing the failure. A command
// whose leading token isn't go/python is always nil (no probe needed).
func checkEnvironment(ctx context.Context, cmd string) error {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil
	}
	flag, ok := versionFlag[fields[0]]
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, envCheckTimeout)
	defer cancel()

	probe := exec.CommandContext(ctx, fields[0], flag)
	if out, err := probe.CombinedOutput(); err != nil {
		return &EnvironmentError{Cmd: fields[0], Output: string(out), Err: err}
	}
	return nil
}

// EnvironmentError means the interpreter/toolchain a RUN depends on is
// missing or broken; the RUN is short-circuited before it executes.
type EnvironmentError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *EnvironmentError) Error() string {
	return "dispatch: environment check for " + e.Cmd + " failed: " + e.Err.Error()
}

func (e *EnvironmentError) Unwrap() error { return e.Err }
