package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// HostedConfig configures the hosted chat API provider.
type HostedConfig struct {
	BaseURL    string // default "https://api.anthropic.com/v1/messages"
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Debugger   Debugger
	Operator   Operator
	Now        func() time.Time // injectable for tests; defaults to time.Now
}

// hostedClient implements Client against a single-model hosted chat API.
type hostedClient struct {
	cfg  HostedConfig
	http *http.Client
	now  func() time.Time
	op   Operator

	mu    sync.RWMutex
	model string
}

// NewHostedClient builds the hosted chat API provider.
func NewHostedClient(cfg HostedConfig) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1/messages"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = sharedHTTPClient
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	op := cfg.Operator
	if op == nil {
		op = noopOperator{}
	}
	return &hostedClient{cfg: cfg, http: cfg.HTTPClient, now: cfg.Now, op: op, model: cfg.Model}
}

func (c *hostedClient) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

func (c *hostedClient) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = name
}

type hostedRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []wireMessage `json:"messages"`
}

type hostedResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage usage `json:"usage"`
}

const (
	hostedMaxAttempts    = 6
	hostedInitialBackoff = 2 * time.Second
	hostedMaxBackoff     = 60 * time.Second
	hostedBackoffFactor  = 2.0
	hostedJitter         = 0.2
)

// Generate implements Client. Retry policy per spec §4.1(1): rate-limit and
// overloaded sleep for the advertised Retry-After (60s when none is given),
// credit exhaustion blocks on the
// operator, daily cap sleeps until local midnight, and transient 5xx use
// capped exponential backoff with jitter.
func (c *hostedClient) Generate(ctx context.Context, prompt string, maxOutputTokens int) (Result, error) {
	prompt, truncated := truncatePrompt(prompt)
	dumpPrompt(c.cfg.Debugger, prompt)

	req := hostedRequest{
		Model:     c.Model(),
		MaxTokens: maxOutputTokens,
		Messages:  []wireMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("llm: marshal hosted request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= hostedMaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: hostedInitialBackoff, MaxBackoff: hostedMaxBackoff,
				Factor: hostedBackoffFactor, JitterFraction: hostedJitter,
			}, attempt)); werr != nil {
				return Result{}, werr
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			var out hostedResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return Result{}, fmt.Errorf("llm: decode hosted response: %w", err)
			}
			text := joinText(out.Content)
			dumpResponse(c.cfg.Debugger, text)
			return Result{Text: text, Truncated: truncated}, nil
		}

		terr := classifyHostedError(resp)
		resp.Body.Close()
		lastErr = terr

		switch terr.Kind {
		case kindCreditExhausted:
			if werr := c.op.Await(ctx, "LLM credit exhausted: "+terr.Message); werr != nil {
				return Result{}, werr
			}
			continue
		case kindDailyCap:
			if werr := sleepUntilMidnight(ctx, c.now); werr != nil {
				return Result{}, werr
			}
			continue
		case KindRateLimit, KindOverloaded:
			wait := terr.RetryAfter
			if !terr.HasRetryAfter {
				wait = 60 * time.Second
			}
			if werr := sleep(ctx, wait); werr != nil {
				return Result{}, werr
			}
			continue
		case KindInternal:
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: hostedInitialBackoff, MaxBackoff: hostedMaxBackoff,
				Factor: hostedBackoffFactor, JitterFraction: hostedJitter,
			}, attempt)); werr != nil {
				return Result{}, werr
			}
			continue
		default:
			// Non-retryable (invalid_request, auth, ...): surface immediately.
			return Result{}, terr
		}
	}

	return Result{}, &ErrMaxRetriesExceeded{Attempts: hostedMaxAttempts, Last: lastErr}
}

func (c *hostedClient) doRequest(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	return c.http.Do(httpReq)
}

// Additional Kinds specific to the hosted provider's richer error taxonomy.
const (
	kindCreditExhausted Kind = "credit_exhausted"
	kindDailyCap        Kind = "daily_cap"
)

func classifyHostedError(resp *http.Response) *TransportError {
	data, _ := io.ReadAll(resp.Body)
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = string(data)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	kind, _ := classifyStatus(resp.StatusCode)
	switch eb.Error.Type {
	case "credit_exhausted", "billing_error":
		kind = kindCreditExhausted
	case "daily_limit_exceeded":
		kind = kindDailyCap
	}

	retryAfter, hasRetryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	return &TransportError{
		Kind:          kind,
		StatusCode:    resp.StatusCode,
		Message:       msg,
		RetryAfter:    retryAfter,
		HasRetryAfter: hasRetryAfter,
	}
}

func joinText(blocks []struct {
	Type string `json:"type"`
	Text string `json:"text"`
}) string {
	var out []byte
	for _, b := range blocks {
		if b.Type == "text" {
			out = append(out, b.Text...)
		}
	}
	return string(out)
}

// parseRetryAfter parses seconds or HTTP-date Retry-After header values.
// ok is false when the header was absent or unparseable.
func parseRetryAfter(value string) (d time.Duration, ok bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		if until := time.Until(t); until > 0 {
			return until, true
		}
		return 0, true
	}
	return 0, false
}
