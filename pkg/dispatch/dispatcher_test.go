package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jg-phare/devlm/pkg/llm"
	"github.com/jg-phare/devlm/pkg/process"
	"github.com/jg-phare/devlm/pkg/store"
)

type fakeClient struct {
	text string
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, maxOutputTokens int) (llm.Result, error) {
	return llm.Result{Text: f.text}, nil
}
func (f *fakeClient) SetModel(name string) {}

type fakeApprover struct{ approve bool }

func (f *fakeApprover) Approve(ctx context.Context, message string) (bool, error) {
	return f.approve, nil
}

func TestDispatch_Chat(t *testing.T) {
	d := &Dispatcher{}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagChat, ChatText: "hello"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Output != "hello" || !out.Success {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestDispatch_Done(t *testing.T) {
	d := &Dispatcher{}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagDone})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !out.Done {
		t.Error("expected Done outcome for DONE action")
	}
}

func TestDispatch_RunForegroundSuccess(t *testing.T) {
	d := &Dispatcher{
		AllowList: process.DefaultAllowList(),
		Client:    &fakeClient{text: "looks fine"},
	}
	out, err := d.Dispatch(context.Background(), "prompt", Action{Tag: TagRun, Cmd: "echo hello"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !out.Success {
		t.Errorf("expected success, got %+v", out)
	}
	if out.Analysis != "looks fine" {
		t.Errorf("Analysis = %q, want secondary LLM output", out.Analysis)
	}
}

func TestDispatch_RunSuggestsIndefFirstThenProceeds(t *testing.T) {
	d := &Dispatcher{
		AllowList:   process.DefaultAllowList(),
		Suggestions: store.NewSuggestionState(),
		Client:      &fakeClient{},
	}
	action := Action{Tag: TagRun, Cmd: "npm run dev"}

	first, err := d.Dispatch(context.Background(), "", action)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if first.Suggestion == "" {
		t.Fatal("expected the first RUN of a server-looking command to be suggested away")
	}

	second, err := d.Dispatch(context.Background(), "", action)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if second.Suggestion != "" {
		t.Errorf("expected the second RUN to proceed, got suggestion %q", second.Suggestion)
	}
}

func TestDispatch_RunRequiringApprovalDeclined(t *testing.T) {
	d := &Dispatcher{
		AllowList: process.DefaultAllowList(),
		Approver:  &fakeApprover{approve: false},
		Client:    &fakeClient{},
	}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagRun, Cmd: "rm -rf /tmp/whatever"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Success {
		t.Error("a declined approval-required command should not succeed")
	}
}

func TestDispatch_Inspect_RefusesImmediateRepeat(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.go")
	if err := os.WriteFile(fileA, []byte("package a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	guard := store.NewInspectGuard()
	guard.Record([]string{fileA})

	d := &Dispatcher{InspectGuard: guard, Client: &fakeClient{text: "ok"}}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagInspect, Paths: []string{fileA}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Success {
		t.Error("expected the repeat inspection to be refused")
	}
}

func TestDispatch_Inspect_MissingFileReportsErrorWithoutAborting(t *testing.T) {
	d := &Dispatcher{Client: &fakeClient{text: "ok"}}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagInspect, Paths: []string{"/no/such/file.go"}})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !out.Success {
		t.Error("a missing file should be reported inline, not fail the whole INSPECT")
	}
}

func TestDispatch_ReadModify_LockedPathRefused(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "foo.go")
	if err := os.WriteFile(target, []byte("package foo\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	lockout := store.NewLockout()
	lockout.Lock(target)

	d := &Dispatcher{Lockout: lockout, Client: &fakeClient{}}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagReadModify, Paths: []string{target}, Target: target})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Success {
		t.Error("expected a locked-out path to be refused")
	}
}

func TestDispatch_ReadModify_IdenticalContentTriggersLockout(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "foo.go")
	original := "package foo\n"
	if err := os.WriteFile(target, []byte(original), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	lockout := store.NewLockout()
	d := &Dispatcher{Lockout: lockout, Client: &fakeClient{text: original}, WriteMode: "direct"}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagReadModify, Paths: []string{target}, Target: target})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !out.Success || out.FileModified != "" {
		t.Errorf("identity edit should succeed with no file-modified marker, got %+v", out)
	}
	if !lockout.Locked(target) {
		t.Error("expected the identity edit to install a lockout on the target path")
	}
}

func TestDispatch_ReadModify_ChangedContentWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "foo.go")
	if err := os.WriteFile(target, []byte("package foo\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	newContent := "package foo\n\nfunc New() {}\n"
	d := &Dispatcher{Lockout: store.NewLockout(), Client: &fakeClient{text: newContent}, WriteMode: "direct"}
	out, err := d.Dispatch(context.Background(), "", Action{Tag: TagReadModify, Paths: []string{target}, Target: target})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !out.Success || out.FileModified != target {
		t.Errorf("expected the file to be written, got %+v", out)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != newContent {
		t.Errorf("file content = %q, want %q", got, newContent)
	}
}
