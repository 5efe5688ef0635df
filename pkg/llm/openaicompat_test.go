package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestOpenAIClient_InsufficientQuotaAwaitsOperator(t *testing.T) {
	var attempt atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempt.Add(1) == 1 {
			w.WriteHeader(429)
			fmt.Fprint(w, `{"error":{"type":"insufficient_quota","message":"buy credits"}}`)
			return
		}
		w.WriteHeader(200)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"done"}}]}`)
	}))
	defer srv.Close()

	var asked bool
	op := operatorFunc(func(_ context.Context, _ string) error {
		asked = true
		return nil
	})
	c := NewOpenAICompatClient(OpenAICompatConfig{BaseURL: srv.URL, Model: "local-model", Operator: op})
	res, err := c.Generate(context.Background(), "hi", 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !asked {
		t.Error("operator was never consulted on insufficient_quota")
	}
	if res.Text != "done" {
		t.Errorf("Text = %q, want %q", res.Text, "done")
	}
}

func TestOpenAIClient_ServerErrorRetried(t *testing.T) {
	var attempt atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempt.Add(1) <= 2 {
			w.WriteHeader(503)
			fmt.Fprint(w, `{"error":{"type":"server_error","message":"down"}}`)
			return
		}
		w.WriteHeader(200)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAICompatClient(OpenAICompatConfig{BaseURL: srv.URL, Model: "m"})
	res, err := c.Generate(context.Background(), "hi", 10)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Text != "ok" {
		t.Errorf("Text = %q, want %q", res.Text, "ok")
	}
	if attempt.Load() != 3 {
		t.Errorf("attempts = %d, want 3", attempt.Load())
	}
}
