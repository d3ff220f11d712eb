package llm

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yungbote/screenplay-backend/internal/platform/httpx"
)

const (
	opJSON   = "generate_json"
	opStream = "stream_text"

	statusOK      = "success"
	statusEmpty   = "empty"
	statusRefused = "refused"
	statusInvalid = "invalid_json"
	statusError   = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenplay_llm_requests_total",
			Help: "LLM requests by provider, model, operation and outcome.",
		},
		[]string{"provider", "model", "op", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screenplay_llm_request_duration_seconds",
			Help:    "LLM request latency.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider", "model", "op"},
	)
	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenplay_llm_tokens_total",
			Help: "Prompt and completion tokens, reported or estimated.",
		},
		[]string{"provider", "model", "kind"},
	)
)

func observeRequest(provider, model, op, status string, dur time.Duration, inputTokens, outputTokens int) {
	requestsTotal.WithLabelValues(provider, model, op, status).Inc()
	requestDuration.WithLabelValues(provider, model, op).Observe(dur.Seconds())
	if inputTokens > 0 {
		tokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		tokensTotal.WithLabelValues(provider, model, "completion").Add(float64(outputTokens))
	}
}

func statusOf(err error) string {
	if err == nil {
		return statusOK
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() > 0 {
		return strconv.Itoa(sc.HTTPStatusCode())
	}
	return statusError
}
