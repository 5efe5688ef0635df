package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jg-phare/devlm/internal/config"
	"github.com/jg-phare/devlm/pkg/dispatch"
	"github.com/jg-phare/devlm/pkg/llm"
	"github.com/jg-phare/devlm/pkg/process"
	"github.com/jg-phare/devlm/pkg/prompt"
	"github.com/jg-phare/devlm/pkg/store"
)

// generateMaxTokens is the completion budget for the primary per-iteration
// LLM call (spec §4.6 pseudocode: "LLM.generate(prompt, 4000)").
const generateMaxTokens = 4000

// Loop is the control loop (spec §4.6): it owns the iteration store,
// lockout table, last-inspected set, and command-suggestion state, and
// drives one action per iteration through the dispatcher until the model
// says DONE or the operator exits.
type Loop struct {
	Config     config.Config
	Home       *store.Home
	Log        *store.Log
	Lockout    *store.Lockout
	Inspect    *store.InspectGuard
	Suggest    *store.SuggestionState
	Client     llm.Client
	Supervisor *process.Supervisor
	Dispatcher *dispatch.Dispatcher
	Notes      *NotesWatcher
	Interrupt  *InterruptHandler
	Operator   Operator

	brief        store.Brief
	globalError  string
	lastAnalysis string
	lastDiff     string
	lastModified string
}

// Run executes the control loop until the model replies DONE, the operator
// interrupts twice, or ctx is cancelled. It always tears down supervised
// processes before returning (spec §8 invariant 2: exit cleanup).
func (l *Loop) Run(ctx context.Context) error {
	defer l.Supervisor.TerminateAll()

	task := l.Config.Task
	if task == "" && l.Operator != nil {
		task = l.Operator.Task()
	}
	if task == "exit" {
		return nil
	}
	if err := l.Log.Append(store.Record{
		Seq: l.Log.NextSeq(), Action: "TASK", Reason: task, Success: true, Time: time.Now(),
	}); err != nil {
		return fmt.Errorf("agent: append task record: %w", err)
	}

	l.brief, _ = store.LoadBrief(l.Home.HistoryBriefPath())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		iteration := l.Log.NextSeq()
		done, err := l.step(ctx, iteration, iteration <= 1)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// step runs one full iteration: regenerate the project snapshot, read
// notes, poll the supervisor, optionally refresh the history brief,
// assemble the prompt, call the model, parse and dispatch its reply, and
// append the resulting record.
func (l *Loop) step(ctx context.Context, iteration int, sessionStart bool) (done bool, err error) {
	tree, err := prompt.Snapshot(l.Config.ProjectPath)
	if err != nil {
		log.Printf("agent: snapshot failed: %v", err)
	}
	if err := prompt.SaveSnapshot(l.Home.ProjectStructurePath(), tree); err != nil {
		log.Printf("agent: save snapshot failed: %v", err)
	}

	notes, err := l.Home.ReadNotes()
	if err != nil {
		log.Printf("agent: read notes failed: %v", err)
	}
	if l.Notes != nil && l.Notes.Consume() && l.Operator != nil {
		l.Operator.PauseForEnter("notes file changed")
	}

	var statuses []prompt.ProcessStatus
	for _, s := range l.Supervisor.Snapshot() {
		statuses = append(statuses, prompt.ProcessStatus{Key: s.Key, Alive: s.Alive, Tail: s.Tail})
	}

	if store.ShouldRegenerateBrief(iteration) {
		l.regenerateBrief(ctx, notes)
	}

	operatorInterrupt := ""
	if l.Interrupt != nil {
		operatorInterrupt = l.Interrupt.TakeSuggestion()
	}

	promptText, err := prompt.Assemble(prompt.Inputs{
		ProjectSummary:    "",
		Tree:              tree,
		Notes:             notes,
		Brief:             l.brief,
		Window:            l.Log.Window(),
		ProcessStatus:     statuses,
		FileModified:      l.lastModified != "",
		SessionStart:      sessionStart,
		OperatorInterrupt: operatorInterrupt,
		PreviousAnalysis:  l.lastAnalysis,
		PreviousDiff:      l.lastDiff,
		GlobalErrorBanner: l.globalError,
	})
	if err != nil {
		return false, fmt.Errorf("agent: assemble prompt: %w", err)
	}
	l.globalError = ""

	result, genErr := l.Client.Generate(ctx, promptText, generateMaxTokens)
	rec := store.Record{Seq: iteration, Time: time.Now()}
	if genErr != nil {
		rec.Action = "GENERATE_ERROR"
		rec.Success = false
		rec.Error = genErr.Error()
		if err := l.Log.Append(rec); err != nil {
			return false, err
		}
		l.Lockout.Decrement()
		if l.Inspect != nil {
			l.Inspect.Record(nil)
		}
		return false, nil
	}
	if result.Truncated {
		l.globalError = "the previous prompt exceeded the size limit and was truncated; keep future prompts smaller"
	}

	reply, parseErr := dispatch.ParseReply(result.Text)
	rec.Goal, rec.Reason = reply.Goal, reply.Reason
	if parseErr != nil {
		rec.Action = "FORMAT_ERROR"
		rec.Error = parseErr.Error()
		rec.Success = false
		if err := l.Log.Append(rec); err != nil {
			return false, err
		}
		l.Lockout.Decrement()
		if l.Inspect != nil {
			l.Inspect.Record(nil)
		}
		return false, nil
	}
	rec.Action = reply.Action.Tag.String()

	outcome, dispatchErr := l.Dispatcher.Dispatch(ctx, promptText, reply.Action)
	if dispatchErr != nil {
		rec.Success = false
		rec.Error = dispatchErr.Error()
	} else {
		rec.Success = outcome.Success
		rec.Output = store.TruncateOutput(outcome.Output)
		rec.Analysis = outcome.Analysis
		rec.Error = outcome.Error
		if outcome.Suggestion != "" {
			rec.Output = outcome.Suggestion
		}
	}

	l.lastAnalysis = outcome.Analysis
	l.lastDiff = outcome.Diff
	l.lastModified = outcome.FileModified

	if reply.Action.Tag == dispatch.TagInspect && l.Inspect != nil {
		l.Inspect.Record(reply.Action.Paths)
	} else if l.Inspect != nil {
		l.Inspect.Record(nil)
	}

	if err := l.Log.Append(rec); err != nil {
		return false, err
	}
	l.Lockout.Decrement()

	return outcome.Done, nil
}

func (l *Loop) regenerateBrief(ctx context.Context, notes string) {
	records := l.Log.BriefWindow()
	next, err := store.Regenerate(ctx, l.Client, l.brief, records, notes)
	if err != nil {
		log.Printf("agent: history brief regeneration failed: %v", err)
		return
	}
	l.brief = next
	if err := store.SaveBrief(l.Home.HistoryBriefPath(), l.brief); err != nil {
		log.Printf("agent: save history brief failed: %v", err)
	}
}
