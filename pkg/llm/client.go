// Package llm implements the LLM transport abstraction: three provider
// variants behind a single Client interface, sharing retry/backoff,
// prompt-length clamping, and response-continuation behaviour.
package llm

import (
	"context"
	"net/http"
)

// MaxPromptChars is the hard cap on assembled prompt length (spec §4.1).
// Prompts longer than this are truncated before being sent to any provider.
const MaxPromptChars = 200_000

// Client is the single capability every provider variant satisfies.
type Client interface {
	// Generate sends prompt to the model and returns its full response text.
	// maxOutputTokens bounds the completion; providers that support
	// response-continuation may issue additional requests transparently to
	// assemble a response that exceeded the first request's budget.
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (Result, error)

	// SetModel switches the model used by subsequent Generate calls.
	SetModel(name string)
}

// Result is what a successful Generate call returns.
type Result struct {
	Text string
	// Truncated is true if the prompt handed to the provider was clamped to
	// MaxPromptChars before being sent.
	Truncated bool
	// Continuations counts how many continuation round-trips were needed to
	// assemble Text (vendor-gateway provider only; always 0 otherwise).
	Continuations int
}

// Debugger optionally records every prompt/response pair for offline
// inspection. Implementations must not block the caller materially; they are
// invoked synchronously around each HTTP round-trip.
type Debugger interface {
	DumpPrompt(prompt string)
	DumpResponse(response string)
}

// Operator is how a transport asks a human for an out-of-band decision:
// acknowledging credit or quota exhaustion before the request is retried.
// Implementations block until the human responds.
type Operator interface {
	// Await blocks displaying message until the operator acknowledges.
	Await(ctx context.Context, message string) error
}

// noopOperator never blocks; used when no Operator is configured so headless
// runs fail fast with the underlying error instead of hanging.
type noopOperator struct{}

func (noopOperator) Await(context.Context, string) error { return nil }

// truncatePrompt clamps prompt to MaxPromptChars, reporting whether it had to.
func truncatePrompt(prompt string) (string, bool) {
	if len(prompt) <= MaxPromptChars {
		return prompt, false
	}
	return prompt[:MaxPromptChars], true
}

func dumpPrompt(d Debugger, prompt string) {
	if d != nil {
		d.DumpPrompt(prompt)
	}
}

func dumpResponse(d Debugger, response string) {
	if d != nil {
		d.DumpResponse(response)
	}
}

// sharedHTTPClient is used by every provider unless its config's HTTPClient
// field overrides it.
var sharedHTTPClient = &http.Client{}
