package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const homeDirName = ".devlm"

// lockAcquireTimeout bounds how long Home waits for the agent-home advisory
// lock before giving up; a held lock almost always means a second devlm
// process is already targeting this project path.
const lockAcquireTimeout = 500 * time.Millisecond

// Home is the per-project agent-home directory: the rolling action log,
// periodic history brief, notes side-channel, and debug dumps for one
// session. The spec assumes a single human user interleaving with a single
// agent process in one working directory; Home enforces that with an
// advisory file lock rather than merely hoping it holds.
type Home struct {
	Root      string
	SessionID string

	lock *flock.Flock
}

// Open creates (if absent) the agent-home subtree under projectPath and
// takes the exclusive advisory lock. Callers must call Close when the
// session ends.
func Open(projectPath string) (*Home, error) {
	root := filepath.Join(projectPath, homeDirName)
	for _, sub := range []string{"actions", "briefs", "debug/prompts", "debug/responses"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("store: create agent home: %w", err)
		}
	}

	lockPath := filepath.Join(root, ".lock")
	fl := flock.New(lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), lockAcquireTimeout)
	defer cancel()
	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("store: acquire agent-home lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("store: agent home %s is locked by another devlm process", root)
	}

	sessionID := sessionTimestamp(time.Now()) + "-" + shortID()
	return &Home{Root: root, SessionID: sessionID, lock: fl}, nil
}

// Close releases the agent-home lock. It does not purge any files — the
// spec's lifecycle is "created on start, never purged by the agent".
func (h *Home) Close() error {
	if h.lock == nil {
		return nil
	}
	return h.lock.Unlock()
}

func sessionTimestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func shortID() string {
	id := uuid.New().String()
	return strings.SplitN(id, "-", 2)[0]
}

func (h *Home) ProjectStructurePath() string    { return filepath.Join(h.Root, "project_structure.json") }
func (h *Home) TechnicalBriefPath() string      { return filepath.Join(h.Root, "project_technical_brief.json") }
func (h *Home) TestProgressPath() string        { return filepath.Join(h.Root, "test_progress.json") }
func (h *Home) NotesPath() string                { return filepath.Join(h.Root, "chat.txt") }
func (h *Home) ActionHistoryPath() string {
	return filepath.Join(h.Root, "actions", fmt.Sprintf("action_history_%s.json", h.SessionID))
}
func (h *Home) HistoryBriefPath() string {
	return filepath.Join(h.Root, "briefs", fmt.Sprintf("history_brief_%s.json", h.SessionID))
}
func (h *Home) DebugPromptPath(n int) string {
	return filepath.Join(h.Root, "debug", "prompts", fmt.Sprintf("prompt_%s_%04d.txt", h.SessionID, n))
}
func (h *Home) DebugResponsePath(n int) string {
	return filepath.Join(h.Root, "debug", "responses", fmt.Sprintf("response_%s_%04d.txt", h.SessionID, n))
}

// ReadNotes returns the current contents of the notes side-channel, or ""
// if it does not exist yet.
func (h *Home) ReadNotes() (string, error) {
	data, err := os.ReadFile(h.NotesPath())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: read notes: %w", err)
	}
	return string(data), nil
}

// NotesModTime returns the notes file's modification time, or the zero
// time if it does not exist.
func (h *Home) NotesModTime() time.Time {
	info, err := os.Stat(h.NotesPath())
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
