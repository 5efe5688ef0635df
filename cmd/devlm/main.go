// Command devlm runs the autonomous coding-agent control loop (spec §4.6)
// against a project checkout: one action per iteration, driven by an LLM
// reply parsed against a fixed action grammar and executed by the process
// supervisor and file-edit engine.
//
// Usage:
//
//	devlm -mode test -project-path . -task "fix the failing tests"
//	devlm -mode generate -project-path ./new-service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jg-phare/devlm/internal/config"
	"github.com/jg-phare/devlm/pkg/agent"
	"github.com/jg-phare/devlm/pkg/dispatch"
	"github.com/jg-phare/devlm/pkg/process"
	"github.com/jg-phare/devlm/pkg/store"
)

func main() {
	cfg, err := config.Parse(os.Args[1:], ".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "devlm: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "devlm: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	home, err := store.Open(cfg.ProjectPath)
	if err != nil {
		return fmt.Errorf("open agent home: %w", err)
	}
	defer home.Close()

	iterationLog, err := store.OpenLog(home.ActionHistoryPath())
	if err != nil {
		return fmt.Errorf("open action history: %w", err)
	}

	debugger := store.NewDebugDumper(home)
	debugger.Enabled = cfg.DebugPrompt

	operator := agent.NewStdOperator()

	client, err := agent.NewClient(cfg, debugger, operator)
	if err != nil {
		return fmt.Errorf("build LLM client: %w", err)
	}

	supervisor := process.NewSupervisor()

	dispatcher := &dispatch.Dispatcher{
		Supervisor:   supervisor,
		AllowList:    process.DefaultAllowList(),
		Client:       client,
		Approver:     operator,
		Lockout:      store.NewLockout(),
		InspectGuard: store.NewInspectGuard(),
		Suggestions:  store.NewSuggestionState(),
		WriteMode:    cfg.WriteMode,
		ProjectPath:  cfg.ProjectPath,
	}

	notes := agent.NewNotesWatcher(home.NotesPath())
	if err := notes.Start(); err != nil {
		return fmt.Errorf("start notes watcher: %w", err)
	}
	defer notes.Stop()

	loop := &agent.Loop{
		Config:     cfg,
		Home:       home,
		Log:        iterationLog,
		Lockout:    dispatcher.Lockout,
		Inspect:    dispatcher.InspectGuard,
		Suggest:    dispatcher.Suggestions,
		Client:     client,
		Supervisor: supervisor,
		Dispatcher: dispatcher,
		Notes:      notes,
		Operator:   operator,
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stopSignals()

	interrupt := agent.NewInterruptHandler()
	interrupt.Start(operator.CaptureSuggestion, supervisor.TerminateAll)
	defer interrupt.Stop()
	loop.Interrupt = interrupt

	return loop.Run(ctx)
}
