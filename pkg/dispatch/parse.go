package dispatch

import (
	"fmt"
	"strings"
)

// FormatError records a reply that doesn't conform to the
// ACTION:/GOAL:/REASON:/<CoT> grammar (spec §4.5: "recorded as a format
// error; no state mutation").
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("dispatch: %s", e.Reason) }

const cotOpen = "<CoT>"
const cotClose = "</CoT>"

// ParseReply extracts ACTION:, GOAL:, REASON:, and <CoT>...</CoT> from a
// model reply and parses the action head into a tagged Action. A reply with
// no ACTION: line is a *FormatError; reply.Raw is still populated so the
// caller can log it.
func ParseReply(reply string) (Reply, error) {
	r := Reply{Raw: reply}

	actionLine, ok := extractField(reply, "ACTION:")
	if !ok {
		return r, &FormatError{Reason: "no ACTION: field found in reply"}
	}
	if goal, ok := extractField(reply, "GOAL:"); ok {
		r.Goal = goal
	}
	if reason, ok := extractField(reply, "REASON:"); ok {
		r.Reason = reason
	}
	if cot, ok := extractDelimited(reply, cotOpen, cotClose); ok {
		r.CoT = cot
	}

	action, err := parseAction(actionLine)
	if err != nil {
		return r, err
	}
	r.Action = action
	return r, nil
}

// extractField returns the text following the first line that begins with
// prefix (case-insensitive), up to the end of that line.
func extractField(reply, prefix string) (string, bool) {
	lines := strings.Split(reply, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", false
}

func extractDelimited(reply, open, close string) (string, bool) {
	start := strings.Index(reply, open)
	if start == -1 {
		return "", false
	}
	start += len(open)
	end := strings.Index(reply[start:], close)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(reply[start : start+end]), true
}

func parseAction(head string) (Action, error) {
	tag, rest := splitTag(head)
	switch strings.ToUpper(tag) {
	case "RUN":
		return Action{Tag: TagRun, Cmd: strings.TrimSpace(rest)}, nil
	case "INDEF":
		return Action{Tag: TagIndef, Cmd: strings.TrimSpace(rest)}, nil
	case "CHECK":
		return Action{Tag: TagCheck, Cmd: strings.TrimSpace(rest)}, nil
	case "RESTART":
		return Action{Tag: TagRestart, Cmd: strings.TrimSpace(rest)}, nil
	case "RAW":
		return Action{Tag: TagRaw, Cmd: strings.TrimSpace(rest)}, nil
	case "CHAT":
		return Action{Tag: TagChat, ChatText: strings.TrimSpace(rest)}, nil
	case "DONE":
		return Action{Tag: TagDone}, nil
	case "INSPECT":
		paths := splitPaths(rest)
		if len(paths) == 0 {
			return Action{}, &FormatError{Reason: "INSPECT requires at least one path"}
		}
		if len(paths) > 4 {
			return Action{}, &FormatError{Reason: "INSPECT accepts at most 4 paths"}
		}
		return Action{Tag: TagInspect, Paths: paths}, nil
	case "READ":
		return parseReadModify(rest)
	default:
		return Action{}, &FormatError{Reason: fmt.Sprintf("unrecognized action tag %q", tag)}
	}
}

// splitTag splits "TAG: rest of line" into ("TAG", "rest of line").
func splitTag(s string) (tag, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexByte(s, ':')
	if idx == -1 {
		return s, ""
	}
	return strings.TrimSpace(s[:idx]), s[idx+1:]
}

// parseReadModify parses "p1,p2,p3,p4; MODIFY: pk" (rest following the
// initial "READ:" tag, already stripped by splitTag).
func parseReadModify(rest string) (Action, error) {
	parts := strings.SplitN(rest, ";", 2)
	paths := splitPaths(parts[0])
	if len(paths) == 0 {
		return Action{}, &FormatError{Reason: "READ requires at least one path"}
	}
	if len(paths) > 4 {
		return Action{}, &FormatError{Reason: "READ accepts at most 4 paths"}
	}
	if len(parts) != 2 {
		return Action{}, &FormatError{Reason: "READ must be paired with a MODIFY: clause"}
	}
	modTag, modRest := splitTag(parts[1])
	if !strings.EqualFold(strings.TrimSpace(modTag), "MODIFY") {
		return Action{}, &FormatError{Reason: "READ must be paired with a MODIFY: clause"}
	}
	target := strings.TrimSpace(modRest)
	found := false
	for _, p := range paths {
		if p == target {
			found = true
			break
		}
	}
	if !found {
		return Action{}, &FormatError{Reason: "MODIFY target must be one of the READ paths"}
	}
	return Action{Tag: TagReadModify, Paths: paths, Target: target}, nil
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
