package process

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// AllowList gates foreground execution: commands matching an approval
// pattern pause for a synchronous operator yes/no before running; commands
// matching neither set are still executed (the allow-list is advisory, not a
// sandbox — spec §1 Non-goals), but an unmatched-and-unapproved command is
// surfaced to the caller so it can choose to refuse.
type AllowList struct {
	Allowed          []string
	ApprovalRequired []string
}

// DefaultAllowList mirrors the common, low-risk development commands a
// coding agent issues routinely; everything else falls through to approval
// matching.
func DefaultAllowList() AllowList {
	return AllowList{
		Allowed: []string{
			"go build*", "go vet*", "go test*", "go run*", "go fmt*", "go mod*",
			"npm test*", "npm run*", "npm install*", "yarn*", "pnpm*",
			"python*", "python3*", "pytest*",
			"ls*", "cat*", "grep*", "find*", "head*", "tail*", "wc*",
			"git status*", "git diff*", "git log*", "git show*",
		},
		ApprovalRequired: []string{
			"rm *", "rm -rf*", "git push*", "git reset --hard*", "git checkout*",
			"curl*", "wget*", "sudo*", "chmod*", "chown*", "kill*", "docker*",
		},
	}
}

// RequiresApproval reports whether run (the compound's actual command, after
// `cd` lifting) matches an approval-required prefix pattern.
func (a AllowList) RequiresApproval(run string) bool {
	return matchAny(a.ApprovalRequired, run)
}

// IsAllowed reports whether run matches a known-safe prefix pattern.
func (a AllowList) IsAllowed(run string) bool {
	return matchAny(a.Allowed, run)
}

func matchAny(patterns []string, run string) bool {
	run = strings.TrimSpace(run)
	for _, p := range patterns {
		ok, err := doublestar.Match(p, run)
		if err == nil && ok {
			return true
		}
		// doublestar patterns are path-shaped; commands are plain strings,
		// so also allow a simple prefix match for the literal part before
		// any `*`.
		if prefix, _, cut := strings.Cut(p, "*"); cut && strings.HasPrefix(run, strings.TrimSpace(prefix)) {
			return true
		}
	}
	return false
}

// looksIndefinitePatterns are substrings of commands that typically start a
// long-running server/watch process rather than completing on their own.
var looksIndefinitePatterns = []string{
	"go run", "npm start", "npm run dev", "npm run watch",
	"yarn start", "yarn dev", "flask run", "rails server", "rails s",
	"python -m http.server", "serve ", "next dev", "vite", "nodemon",
}

// LooksIndefinite reports whether run resembles a command that blocks
// forever rather than exiting, the heuristic used to nudge the model toward
// INDEF instead of RUN (spec §3 command-suggestion state, §4.2).
func LooksIndefinite(run string) bool {
	run = strings.ToLower(strings.TrimSpace(run))
	for _, p := range looksIndefinitePatterns {
		if strings.Contains(run, p) {
			return true
		}
	}
	return false
}
