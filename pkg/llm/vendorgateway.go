package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// VendorGatewayConfig configures the vendor-gateway provider (project/region
// auth instead of a bearer API key), per spec §4.1(2).
type VendorGatewayConfig struct {
	BaseURL   string // default "https://{region}-aiplatform.googleapis.com/v1"
	ProjectID string
	Region    string
	Model     string
	Token     string // bearer token for the gateway's auth
	HTTPClient *http.Client
	Debugger   Debugger
	Operator   Operator
}

const (
	gatewayMaxContinuations  = 3
	gatewayContinuationRatio = 0.999 // >=99.9% of requested budget triggers a continuation
	gatewayInitialBackoff    = 32 * time.Second
	gatewayMaxBackoff        = 64 * time.Second
	gatewayMaxAttempts       = 5
)

// continuationStart / continuationEnd are the literal delimiter markers the
// continuation protocol wraps the accumulated partial output in (spec §4.1(2)).
const (
	continuationStart = "<<<START>>>"
	continuationEnd   = "<<<END>>>"
)

type gatewayClient struct {
	cfg  VendorGatewayConfig
	http *http.Client
	op   Operator

	mu    sync.RWMutex
	model string
}

// NewVendorGatewayClient builds the vendor-gateway provider.
func NewVendorGatewayClient(cfg VendorGatewayConfig) Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = sharedHTTPClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", cfg.Region)
	}
	op := cfg.Operator
	if op == nil {
		op = noopOperator{}
	}
	return &gatewayClient{cfg: cfg, http: cfg.HTTPClient, op: op, model: cfg.Model}
}

func (c *gatewayClient) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = name
}

func (c *gatewayClient) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

type gatewayRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []wireMessage `json:"messages"`
	Project   string        `json:"project"`
	Region    string        `json:"region"`
}

type gatewayResponse struct {
	Text  string `json:"text"`
	Usage usage  `json:"usage"`
}

// Generate implements Client with response-continuation: if the completion
// used >=99.9% of the requested output budget, up to 3 continuation requests
// are issued, each resending the original prompt plus the accumulated partial
// output wrapped in <<<START>>>/<<<END>>> markers and an instruction not to
// repeat it, and the responses are concatenated verbatim; overlap between
// continuations is not detected or removed.
func (c *gatewayClient) Generate(ctx context.Context, prompt string, maxOutputTokens int) (Result, error) {
	prompt, truncated := truncatePrompt(prompt)
	dumpPrompt(c.cfg.Debugger, prompt)

	var accumulated strings.Builder
	continuations := 0

	for {
		text, outTokens, err := c.doOnce(ctx, c.continuationPrompt(prompt, accumulated.String(), continuations), maxOutputTokens)
		if err != nil {
			return Result{}, err
		}
		accumulated.WriteString(text)

		if continuations >= gatewayMaxContinuations {
			break
		}
		if float64(outTokens) < gatewayContinuationRatio*float64(maxOutputTokens) {
			break
		}
		continuations++
	}

	full := accumulated.String()
	dumpResponse(c.cfg.Debugger, full)
	return Result{Text: full, Truncated: truncated, Continuations: continuations}, nil
}

// continuationPrompt builds the request body for the (continuations+1)th
// round. The first round sends prompt unmodified; later rounds append the
// accumulated partial output wrapped in the delimiter markers.
func (c *gatewayClient) continuationPrompt(original, accumulated string, continuations int) string {
	if continuations == 0 {
		return original
	}
	return original + "\n\n" + continuationStart + "\n" + accumulated + "\n" + continuationEnd +
		"\n\nResume exactly where the text above left off. Do not repeat any of it."
}

func (c *gatewayClient) doOnce(ctx context.Context, prompt string, maxOutputTokens int) (text string, outputTokens int, err error) {
	req := gatewayRequest{
		Model:     c.Model(),
		MaxTokens: maxOutputTokens,
		Messages:  []wireMessage{{Role: "user", Content: prompt}},
		Project:   c.cfg.ProjectID,
		Region:    c.cfg.Region,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", 0, fmt.Errorf("llm: marshal gateway request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= gatewayMaxAttempts; attempt++ {
		resp, herr := c.send(ctx, body)
		if herr != nil {
			lastErr = herr
			if ctx.Err() != nil {
				return "", 0, ctx.Err()
			}
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: gatewayInitialBackoff, MaxBackoff: gatewayMaxBackoff,
				Factor: 2, JitterFraction: 0.2,
			}, attempt)); werr != nil {
				return "", 0, werr
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			var out gatewayResponse
			if derr := json.NewDecoder(resp.Body).Decode(&out); derr != nil {
				return "", 0, fmt.Errorf("llm: decode gateway response: %w", derr)
			}
			return out.Text, out.Usage.OutputTokens, nil
		}

		terr := classifyGatewayError(resp)
		resp.Body.Close()
		lastErr = terr

		if terr.Kind == KindInsufficientQta {
			if werr := c.op.Await(ctx, "LLM quota exhausted: "+terr.Message); werr != nil {
				return "", 0, werr
			}
			continue
		}
		if terr.Kind == KindRateLimit || terr.Kind == KindOverloaded || terr.Kind == KindInternal {
			if werr := sleep(ctx, backoffDelay(BackoffConfig{
				InitialBackoff: gatewayInitialBackoff, MaxBackoff: gatewayMaxBackoff,
				Factor: 2, JitterFraction: 0.2,
			}, attempt)); werr != nil {
				return "", 0, werr
			}
			continue
		}
		return "", 0, terr
	}

	return "", 0, &ErrMaxRetriesExceeded{Attempts: gatewayMaxAttempts, Last: lastErr}
}

func (c *gatewayClient) send(ctx context.Context, body []byte) (*http.Response, error) {
	url := c.cfg.BaseURL + "/projects/" + c.cfg.ProjectID + "/locations/" + c.cfg.Region + ":generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	return c.http.Do(httpReq)
}

func classifyGatewayError(resp *http.Response) *TransportError {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	kind, _ := classifyStatus(resp.StatusCode)
	retryAfter, hasRetryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	return &TransportError{
		Kind:          kind,
		StatusCode:    resp.StatusCode,
		Message:       msg,
		RetryAfter:    retryAfter,
		HasRetryAfter: hasRetryAfter,
	}
}
