package process

import "strings"

// Compound is a parsed `cd X && Y` style command: the directory a leading
// `cd` lifts out of the pipeline, and the remainder that actually runs.
type Compound struct {
	// Dir is the working-directory override, or "" if the command had no
	// leading `cd`.
	Dir string
	// Run is the command to execute after the leading `cd` is peeled off.
	// It may itself contain further `&&` stages; those are left intact and
	// run by the shell, not re-parsed here.
	Run string
}

// ParseCompound splits cmd on the first `&&` and, if the first segment is a
// bare `cd <dir>`, lifts that directory into Dir and treats everything after
// the first `&&` as Run. Any other shape leaves Dir empty and Run equal to
// cmd unchanged.
func ParseCompound(cmd string) Compound {
	trimmed := strings.TrimSpace(cmd)
	parts := strings.SplitN(trimmed, "&&", 2)
	if len(parts) != 2 {
		return Compound{Run: trimmed}
	}

	first := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(first, "cd ") {
		return Compound{Run: trimmed}
	}

	dir := strings.TrimSpace(strings.TrimPrefix(first, "cd "))
	dir = strings.Trim(dir, `"'`)
	if dir == "" {
		return Compound{Run: trimmed}
	}

	return Compound{Dir: dir, Run: strings.TrimSpace(parts[1])}
}

// Key derives the supervisor lookup key for a command: for `npm run <script>`
// the script name, otherwise the last whitespace-separated token of the
// run-part (spec §4.2 CHECK).
func Key(cmd string) string {
	run := ParseCompound(cmd).Run
	run = strings.TrimSpace(run)
	if run == "" {
		return ""
	}

	const npmRun = "npm run "
	if strings.HasPrefix(run, npmRun) {
		rest := strings.TrimSpace(strings.TrimPrefix(run, npmRun))
		fields := strings.Fields(rest)
		if len(fields) > 0 {
			return fields[0]
		}
		return ""
	}

	fields := strings.Fields(run)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
