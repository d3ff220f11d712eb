package llm

import (
	"context"
	"time"

	"github.com/yungbote/screenplay-backend/internal/platform/httpx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

const (
	retryBase = 1 * time.Second
	retryMax  = 10 * time.Second
)

type retrying struct {
	log        *logger.Logger
	next       Client
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// WithRetry retries transient failures (timeouts, 408, 429, 5xx) with jittered exponential backoff.
// A stream is only retried while nothing has been forwarded to the caller.
func WithRetry(log *logger.Logger, next Client, maxRetries int) Client {
	if maxRetries <= 0 {
		return next
	}
	return &retrying{log: log.With("service", "LLMRetry"), next: next, maxRetries: maxRetries, sleep: httpx.Sleep}
}

func (r *retrying) Model() string { return r.next.Model() }

func (r *retrying) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	var out map[string]any
	err := r.do(ctx, schemaName, func() (bool, error) {
		var err error
		out, err = r.next.GenerateJSON(ctx, system, user, schemaName, schema)
		return true, err
	})
	return out, err
}

func (r *retrying) StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error) {
	var out string
	err := r.do(ctx, "stream", func() (bool, error) {
		forwarded := false
		var err error
		out, err = r.next.StreamText(ctx, system, user, func(d string) {
			forwarded = true
			if onDelta != nil {
				onDelta(d)
			}
		})
		return !forwarded, err
	})
	return out, err
}

func (r *retrying) do(ctx context.Context, op string, call func() (retryable bool, err error)) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		canRetry, err := call()
		if err == nil {
			return nil
		}
		if !canRetry || !httpx.IsRetryableError(err) || attempt >= r.maxRetries {
			return err
		}
		wait := httpx.Backoff(attempt, retryBase, retryMax)
		r.log.Warn("LLM request retrying",
			"op", op,
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if serr := r.sleep(ctx, wait); serr != nil {
			return err
		}
	}
}
