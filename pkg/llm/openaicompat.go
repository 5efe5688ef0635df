package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// OpenAICompatConfig configures the OpenAI-compatible endpoint provider:
// configurable base URL and model, per spec §4.1(3).
type OpenAICompatConfig struct {
	BaseURL    string // e.g. "http://localhost:1234/v1"
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Debugger   Debugger
	Operator   Operator
}

const (
	openaiMaxAttempts    = 5
	openaiInitialBackoff = 1 * time.Second
	openaiMaxBackoff     = 30 * time.Second
	openaiBackoffFactor  = 2.0
	openaiJitter         = 0.25
)

type openaiClient struct {
	cfg  OpenAICompatConfig
	http *http.Client
	op   Operator

	mu    sync.RWMutex
	model string
}

// NewOpenAICompatClient builds the OpenAI-compatible provider.
func NewOpenAICompatClient(cfg OpenAICompatConfig) Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = sharedHTTPClient
	}
	op := cfg.Operator
	if op == nil {
		op = noopOperator{}
	}
	return &openaiClient{cfg: cfg, http: cfg.HTTPClient, op: op, model: cfg.Model}
}

func (c *openaiClient) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = name
}

func (c *openaiClient) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	MaxTokens int          `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate implements Client. Retry policy per spec §4.1(3): rate-limit,
// connection, and API errors use capped exponential backoff
// (base*2^attempt + jitter, 5 attempts); insufficient-quota pauses on the
// operator instead of retrying.
func (c *openaiClient) Generate(ctx context.Context, prompt string, maxOutputTokens int) (Result, error) {
	prompt, truncated := truncatePrompt(prompt)
	dumpPrompt(c.cfg.Debugger, prompt)

	req := chatCompletionRequest{
		Model:     c.Model(),
		MaxTokens: maxOutputTokens,
		Messages:  []wireMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("llm: marshal openai request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= openaiMaxAttempts; attempt++ {
		resp, herr := c.doRequest(ctx, body)
		if herr != nil {
			lastErr = herr
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: openaiInitialBackoff, MaxBackoff: openaiMaxBackoff,
				Factor: openaiBackoffFactor, JitterFraction: openaiJitter,
			}, attempt)); werr != nil {
				return Result{}, werr
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			var out chatCompletionResponse
			if derr := json.NewDecoder(resp.Body).Decode(&out); derr != nil {
				return Result{}, fmt.Errorf("llm: decode openai response: %w", derr)
			}
			text := ""
			if len(out.Choices) > 0 {
				text = out.Choices[0].Message.Content
			}
			dumpResponse(c.cfg.Debugger, text)
			return Result{Text: text, Truncated: truncated}, nil
		}

		terr := classifyOpenAIError(resp)
		resp.Body.Close()
		lastErr = terr

		if terr.Kind == KindInsufficientQta {
			if werr := c.op.Await(ctx, "LLM quota exhausted: "+terr.Message); werr != nil {
				return Result{}, werr
			}
			continue
		}
		if terr.Kind == KindRateLimit || terr.Kind == KindConnection || terr.Kind == KindInternal {
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: openaiInitialBackoff, MaxBackoff: openaiMaxBackoff,
				Factor: openaiBackoffFactor, JitterFraction: openaiJitter,
			}, attempt)); werr != nil {
				return Result{}, werr
			}
			continue
		}
		return Result{}, terr
	}

	return Result{}, &ErrMaxRetriesExceeded{Attempts: openaiMaxAttempts, Last: lastErr}
}

func (c *openaiClient) doRequest(ctx context.Context, body []byte) (*http.Response, error) {
	url := c.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return c.http.Do(httpReq)
}

func classifyOpenAIError(resp *http.Response) *TransportError {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	kind, _ := classifyStatus(resp.StatusCode)
	if eb.Error.Type == "insufficient_quota" {
		kind = KindInsufficientQta
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
