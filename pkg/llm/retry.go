package llm

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig parameterizes the capped-exponential backoff shared by every
// provider variant. Each provider keeps its own constants; only the
// computation is shared (mirrors the teacher's doWithRetry helper).
type BackoffConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Factor         float64
	JitterFraction float64
	MaxAttempts    int
}

// backoffDelay computes the sleep duration before retry attempt n (1-based).
func backoffDelay(cfg BackoffConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Factor, float64(attempt-1))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	jitter := backoff * cfg.JitterFraction * rand.Float64()
	return time.Duration(backoff + jitter)
}

// sleep waits out a duration or returns early if the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// sleepUntilMidnight blocks until local midnight, used for the hosted API's
// daily-cap cooldown.
func sleepUntilMidnight(ctx context.Context, now func() time.Time) error {
	n := now()
	next := time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, n.Location())
	return sleep(ctx, next.Sub(n))
}
