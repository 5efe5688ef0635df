package edit

import (
	"regexp"
	"strconv"
	"strings"
)

var headerRe = regexp.MustCompile(`(?mi)^[ \t]*(ADD|REMOVE|MODIFY)[ \t]+(\d+)(?:-(\d+))?[ \t]*:?`)

// ParseBatch scans reply (arbitrary prose with embedded edit commands) and
// returns every ADD/REMOVE/MODIFY command found, in source order. All
// commands must share one Kind; a mixed batch is rejected wholesale with no
// partial result. An ADD/MODIFY header with no content block, or one whose
// content block is never closed, also rejects the whole batch.
func ParseBatch(reply string) ([]Command, error) {
	var cmds []Command
	var kind *Kind

	pos := 0
	for pos < len(reply) {
		loc := headerRe.FindStringSubmatchIndex(reply[pos:])
		if loc == nil {
			break
		}
		// Adjust all indices to be relative to reply, not reply[pos:].
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}

		k, err := parseKind(reply[loc[2]:loc[3]])
		if err != nil {
			pos = loc[1]
			continue
		}
		start, _ := strconv.Atoi(reply[loc[4]:loc[5]])
		end := start
		if loc[6] >= 0 {
			end, _ = strconv.Atoi(reply[loc[6]:loc[7]])
		}
		headerEnd := loc[1]

		if kind == nil {
			kind = &k
		} else if *kind != k {
			return nil, errMixedKinds(*kind, k)
		}

		if k == KindRemove {
			cmds = append(cmds, Command{Kind: k, Start: start, End: end})
			pos = headerEnd
			continue
		}

		content, newPos, err := extractContent(reply, headerEnd, k, start)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, Command{Kind: k, Start: start, End: end, Content: content})
		pos = newPos
	}

	if len(cmds) == 0 {
		return nil, errNoValidCommands
	}
	return cmds, nil
}

func parseKind(s string) (Kind, error) {
	switch strings.ToUpper(s) {
	case "ADD":
		return KindAdd, nil
	case "REMOVE":
		return KindRemove, nil
	case "MODIFY":
		return KindModify, nil
	default:
		return 0, &BatchError{Reason: "unrecognized verb " + s}
	}
}

// extractContent locates the <CONTENT_START>...<CONTENT_END> payload that
// must follow an ADD/MODIFY header, starting the search at from. It returns
// the payload (with exactly one leading/trailing newline trimmed, matching
// the conventional "marker on its own line" authoring style) and the
// position immediately after the closing marker.
func extractContent(reply string, from int, kind Kind, line int) (content string, next int, err error) {
	startIdx := strings.Index(reply[from:], ContentStart)
	if startIdx == -1 {
		return "", 0, errMissingContent(kind, line)
	}
	startIdx += from
	payloadStart := startIdx + len(ContentStart)

	endIdx := strings.Index(reply[payloadStart:], ContentEnd)
	if endIdx == -1 {
		return "", 0, errUnterminatedContent(kind, line)
	}
	endIdx += payloadStart

	payload := reply[payloadStart:endIdx]
	payload = strings.TrimPrefix(payload, "\n")
	payload = strings.TrimSuffix(payload, "\n")
	return payload, endIdx + len(ContentEnd), nil
}
