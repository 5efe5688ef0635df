package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jg-phare/devlm/pkg/store"
)

// ActionCatalogue is the literal grammar the action dispatcher parses (spec
// §4.5, §6): part of the external contract with the model, preserved
// bit-exact rather than regenerated from Go source so it never drifts from
// what the dispatcher actually accepts.
const ActionCatalogue = `ACTION: RUN: <cmd>        — foreground, allow-listed command
ACTION: INDEF: <cmd>      — background, any command
ACTION: CHECK: <cmd>      — tail a running background command
ACTION: RESTART: <cmd>    — kill and relaunch a known background command
ACTION: RAW: <cmd>        — foreground, requires human approval
ACTION: INSPECT: p1,p2,…  — read and analyse up to 4 files
ACTION: READ: p1..p4; MODIFY: pk — read up to 4 files, edit one of them
ACTION: CHAT: <text>      — human interjection, no side effect
ACTION: DONE              — the task is complete, terminate the loop

Reply with, in order: ACTION:, GOAL:, REASON:, then <CoT>...</CoT>.`

// Directives is the canonical directives block embedded in every prompt
// (spec §4.7): constraints the model must respect regardless of the
// specific action it chooses.
const Directives = `- Never change code to work around an environment problem without being asked to.
- After any code change, restart the affected process before re-testing it.
- Never repeat the exact same action two iterations in a row.
- Prefer the smallest action that makes progress on the stated task.`

// Inputs holds everything the assembler needs to build one iteration's
// prompt. Optional fields are omitted from the rendered prompt when empty
// (spec §4.7).
type Inputs struct {
	ProjectSummary string
	Tree           Node
	Notes          string
	Brief          store.Brief
	Window         []store.Record
	ProcessStatus  []ProcessStatus
	FileModified   bool
	SessionStart   bool

	OperatorInterrupt  string
	PreviousAnalysis   string
	PreviousDiff       string
	GlobalErrorBanner  string
}

// ProcessStatus is one running-process line surfaced to the prompt: the
// supervisor-assigned key, whether it's alive, and its output tail.
type ProcessStatus struct {
	Key   string
	Alive bool
	Tail  string
}

// Assemble builds the next-iteration prompt in the stable order spec §4.7
// requires. Each optional block is rendered only when non-empty.
func Assemble(in Inputs) (string, error) {
	var parts []string

	if in.ProjectSummary != "" {
		parts = append(parts, "# Project summary\n"+in.ProjectSummary)
	}

	parts = append(parts, "# Project tree\n"+RenderTree(in.Tree))

	if in.Notes != "" {
		parts = append(parts, "# User notes\n"+in.Notes)
	}

	if len(in.Brief.KeyEvents) > 0 {
		parts = append(parts, "# History brief\n- "+strings.Join(in.Brief.KeyEvents, "\n- "))
	}

	if len(in.Window) > 0 {
		recordJSON, err := json.MarshalIndent(in.Window, "", "  ")
		if err != nil {
			return "", fmt.Errorf("prompt: marshal iteration window: %w", err)
		}
		parts = append(parts, "# Recent iterations\n"+string(recordJSON))
	}

	if len(in.ProcessStatus) > 0 {
		parts = append(parts, "# Running processes\n"+renderProcessStatus(in.ProcessStatus))
	}

	if in.FileModified {
		parts = append(parts, "# Note: a file was modified during the previous iteration.")
	}

	if in.SessionStart {
		parts = append(parts, "# Note: this is the first iteration of a new session.")
	}

	parts = append(parts, "# Directives\n"+Directives)
	parts = append(parts, "# Actions\n"+ActionCatalogue)

	if in.OperatorInterrupt != "" {
		parts = append(parts, "# Operator interjection\n"+in.OperatorInterrupt)
	}
	if in.PreviousAnalysis != "" {
		parts = append(parts, "# Previous action analysis\n"+in.PreviousAnalysis)
	}
	if in.PreviousDiff != "" {
		parts = append(parts, "# Previous action diff\n"+in.PreviousDiff)
	}
	if in.GlobalErrorBanner != "" {
		parts = append(parts, "# Warning\n"+in.GlobalErrorBanner)
	}

	return strings.Join(parts, "\n\n"), nil
}

func renderProcessStatus(statuses []ProcessStatus) string {
	var b strings.Builder
	for _, s := range statuses {
		state := "running"
		if !s.Alive {
			state = "terminated"
		}
		fmt.Fprintf(&b, "%s: %s\n", s.Key, state)
		if s.Tail != "" {
			fmt.Fprintf(&b, "---\n%s\n---\n", s.Tail)
		}
	}
	return b.String()
}
