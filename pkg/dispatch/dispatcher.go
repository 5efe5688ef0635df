package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jg-phare/devlm/pkg/llm"
	"github.com/jg-phare/devlm/pkg/process"
	"github.com/jg-phare/devlm/pkg/store"
)

// Approver is how the dispatcher asks a human for a synchronous yes/no —
// approval-required commands (RAW, approval-listed RUN prefixes) and a
// missing READ/MODIFY target file. Implementations block until answered.
type Approver interface {
	Approve(ctx context.Context, message string) (bool, error)
}

// Outcome is what Dispatch produces for one action: everything the caller
// needs to populate the next store.Record and the next prompt's optional
// blocks.
type Outcome struct {
	Output       string
	Success      bool
	Analysis     string
	Error        string
	Diff         string
	FileModified string // path of the file actually rewritten, if any
	Suggestion   string // non-empty when a RUN was intercepted (spec §4.2)
	Done         bool
}

// Dispatcher wires the action grammar to the process supervisor, the
// file-edit engine, and a secondary LLM call for output analysis (spec
// §4.5). It owns none of the state it's handed — the control loop owns the
// iteration store, lockout table, last-inspected set, and suggestion state
// (spec §3 Ownership) and passes them in by reference.
type Dispatcher struct {
	Supervisor        *process.Supervisor
	AllowList         process.AllowList
	Client            llm.Client
	Approver          Approver
	Lockout           *store.Lockout
	InspectGuard      *store.InspectGuard
	Suggestions       *store.SuggestionState
	WriteMode         string // "direct" or "diff"; defaults to "diff"
	ProjectPath       string
	ForegroundTimeout time.Duration
}

func (d *Dispatcher) writeMode() string {
	if d.WriteMode == "" {
		return "diff"
	}
	return d.WriteMode
}

// Dispatch executes action and returns its outcome. Tags that also run a
// secondary analysis call (RUN, CHECK, INSPECT, READ-MODIFY per spec §4.5)
// populate Outcome.Analysis before returning.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt string, action Action) (Outcome, error) {
	switch action.Tag {
	case TagRun:
		return d.dispatchRun(ctx, prompt, action.Cmd)
	case TagIndef:
		return d.dispatchIndef(ctx, action.Cmd)
	case TagCheck:
		return d.dispatchCheck(ctx, prompt, action.Cmd)
	case TagRestart:
		return d.dispatchRestart(ctx, action.Cmd)
	case TagRaw:
		return d.dispatchRaw(ctx, action.Cmd)
	case TagInspect:
		return d.dispatchInspect(ctx, prompt, action.Paths)
	case TagReadModify:
		return d.dispatchReadModify(ctx, prompt, action.Paths, action.Target)
	case TagChat:
		return Outcome{Output: action.ChatText, Success: true}, nil
	case TagDone:
		return Outcome{Success: true, Done: true}, nil
	default:
		return Outcome{}, fmt.Errorf("dispatch: unhandled action tag %v", action.Tag)
	}
}

func (d *Dispatcher) dispatchRun(ctx context.Context, prompt, cmd string) (Outcome, error) {
	compound := process.ParseCompound(cmd)

	if d.AllowList.RequiresApproval(compound.Run) {
		approved, err := d.approve(ctx, "approval required to run: "+cmd)
		if err != nil {
			return Outcome{}, err
		}
		if !approved {
			return Outcome{Output: "operator declined to approve this command", Success: false}, nil
		}
	}

	if d.Suggestions != nil && process.LooksIndefinite(compound.Run) {
		key := normalizeCmd(cmd)
		if d.Suggestions.ShouldSuggest(key) {
			return Outcome{
				Suggestion: fmt.Sprintf("%q looks like a long-running process; use INDEF: %s instead of RUN:", cmd, cmd),
				Success:    false,
			}, nil
		}
	}

	if err := checkEnvironment(ctx, compound.Run); err != nil {
		return Outcome{Error: err.Error(), Success: false}, nil
	}

	result, err := process.RunForeground(ctx, cmd, d.cwd(compound), d.foregroundTimeout())
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Output: result.Transcript, Success: result.Success}
	outcome.Analysis = d.analyze(ctx, prompt, result.Transcript)
	return outcome, nil
}

func (d *Dispatcher) dispatchIndef(ctx context.Context, cmd string) (Outcome, error) {
	compound := process.ParseCompound(cmd)
	sample, _, err := d.Supervisor.Launch(ctx, cmd, d.cwd(compound))
	if err != nil {
		return Outcome{Error: err.Error(), Success: false}, nil
	}
	return Outcome{Output: sample, Success: true}, nil
}

func (d *Dispatcher) dispatchCheck(ctx context.Context, prompt, cmd string) (Outcome, error) {
	tail, running, found := d.Supervisor.Status(cmd)
	if !found {
		return Outcome{Output: "no supervised process matches " + cmd, Success: false}, nil
	}
	status := "running"
	if !running {
		status = "terminated"
	}
	output := fmt.Sprintf("%s: %s\n%s", process.Key(cmd), status, tail)
	return Outcome{Output: output, Success: true, Analysis: d.analyze(ctx, prompt, output)}, nil
}

func (d *Dispatcher) dispatchRestart(ctx context.Context, cmd string) (Outcome, error) {
	compound := process.ParseCompound(cmd)
	sample, _, err := d.Supervisor.Restart(ctx, cmd, d.cwd(compound))
	if err != nil {
		return Outcome{Error: err.Error(), Success: false}, nil
	}
	return Outcome{Output: sample, Success: true}, nil
}

func (d *Dispatcher) dispatchRaw(ctx context.Context, cmd string) (Outcome, error) {
	approved, err := d.approve(ctx, "approval required to run (RAW): "+cmd)
	if err != nil {
		return Outcome{}, err
	}
	if !approved {
		return Outcome{Output: "operator declined to approve this command", Success: false}, nil
	}
	compound := process.ParseCompound(cmd)
	result, err := process.RunForeground(ctx, cmd, d.cwd(compound), d.foregroundTimeout())
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Output: result.Transcript, Success: result.Success}, nil
}

func (d *Dispatcher) approve(ctx context.Context, message string) (bool, error) {
	if d.Approver == nil {
		return false, nil
	}
	return d.Approver.Approve(ctx, message)
}

// cwd is the directory the shell starts in. Callers hand the shell the full
// command, leading `cd` included, so it starts from the project root and the
// shell applies the `cd` itself.
func (d *Dispatcher) cwd(c process.Compound) string {
	return d.ProjectPath
}

func (d *Dispatcher) foregroundTimeout() time.Duration {
	if d.ForegroundTimeout <= 0 {
		return process.DefaultForegroundTimeout
	}
	return d.ForegroundTimeout
}
