package store

import (
	"os"
	"sync/atomic"
)

// DebugDumper implements llm.Debugger by writing each prompt/response pair
// to timestamped files under the agent home's debug/ subtree (spec §6).
// It is a no-op when disabled so callers can wire it in unconditionally and
// flip Enabled based on the --debug-prompt flag.
type DebugDumper struct {
	home    *Home
	Enabled bool

	n atomic.Int64
}

// NewDebugDumper returns a dumper rooted at home. Enable it by setting
// Enabled to true; it defaults to off.
func NewDebugDumper(home *Home) *DebugDumper {
	return &DebugDumper{home: home}
}

func (d *DebugDumper) DumpPrompt(prompt string) {
	if !d.Enabled {
		return
	}
	n := d.n.Load()
	_ = os.WriteFile(d.home.DebugPromptPath(int(n)), []byte(prompt), 0o644)
}

func (d *DebugDumper) DumpResponse(response string) {
	if !d.Enabled {
		return
	}
	n := d.n.Load()
	_ = os.WriteFile(d.home.DebugResponsePath(int(n)), []byte(response), 0o644)
	d.n.Add(1)
}
