package llm

import (
	"testing"
	"time"
)

func TestBackoffDelay_CapsAtMax(t *testing.T) {
	cfg := BackoffConfig{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, Factor: 2, JitterFraction: 0}
	d := backoffDelay(cfg, 10)
	if d != 5*time.Second {
		t.Errorf("backoffDelay = %v, want capped at %v", d, cfg.MaxBackoff)
	}
}

func TestBackoffDelay_GrowsExponentially(t *testing.T) {
	cfg := BackoffConfig{InitialBackoff: time.Second, MaxBackoff: time.Minute, Factor: 2, JitterFraction: 0}
	d1 := backoffDelay(cfg, 1)
	d2 := backoffDelay(cfg, 2)
	if d1 != time.Second {
		t.Errorf("attempt 1 = %v, want %v", d1, time.Second)
	}
	if d2 != 2*time.Second {
		t.Errorf("attempt 2 = %v, want %v", d2, 2*time.Second)
	}
}

func TestTruncatePrompt(t *testing.T) {
	short := "hello"
	got, truncated := truncatePrompt(short)
	if truncated || got != short {
		t.Errorf("short prompt should pass through unchanged")
	}

	long := make([]byte, MaxPromptChars+1)
	for i := range long {
		long[i] = 'a'
	}
	got, truncated = truncatePrompt(string(long))
	if !truncated {
		t.Error("expected truncation flag")
	}
	if len(got) != MaxPromptChars {
		t.Errorf("len(got) = %d, want %d", len(got), MaxPromptChars)
	}
}
