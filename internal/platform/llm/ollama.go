package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type ollamaClient struct {
	log         *logger.Logger
	client      *api.Client
	model       string
	temperature float64
	maxTokens   int
}

func newOllamaClient(log *logger.Logger, cfg Config) (Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "http://localhost:11434"
	}
	base = strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/v1")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url %q: %w", base, err)
	}
	return &ollamaClient{
		log:         log.With("service", "OllamaClient"),
		client:      api.NewClient(u, &http.Client{Timeout: cfg.Timeout}),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *ollamaClient) Model() string { return c.model }

func (c *ollamaClient) request(system, user string, stream bool) *api.ChatRequest {
	return &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}
}

func (c *ollamaClient) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	rawSchema, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", schemaName, err)
	}
	req := c.request(system, user, false)
	req.Format = json.RawMessage(rawSchema)

	start := time.Now()
	var (
		text             strings.Builder
		promptTokens     int
		completionTokens int
	)
	err = c.client.Chat(ctx, req, func(r api.ChatResponse) error {
		text.WriteString(r.Message.Content)
		if r.Done {
			promptTokens, completionTokens = r.PromptEvalCount, r.EvalCount
		}
		return nil
	})
	if err != nil {
		err = wrapOllamaErr(err)
		observeRequest(ProviderOllama, c.model, opJSON, statusOf(err), time.Since(start), 0, 0)
		return nil, err
	}
	obj, err := parseObject(text.String())
	if err != nil {
		observeRequest(ProviderOllama, c.model, opJSON, statusInvalid, time.Since(start), promptTokens, completionTokens)
		c.log.Warn("Model returned unparseable JSON", "schema", schemaName, "error", err)
		return nil, err
	}
	observeRequest(ProviderOllama, c.model, opJSON, statusOK, time.Since(start), promptTokens, completionTokens)
	return obj, nil
}

func (c *ollamaClient) StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error) {
	start := time.Now()
	var (
		full             strings.Builder
		promptTokens     int
		completionTokens int
	)
	err := c.client.Chat(ctx, c.request(system, user, true), func(r api.ChatResponse) error {
		if d := r.Message.Content; d != "" {
			full.WriteString(d)
			if onDelta != nil {
				onDelta(d)
			}
		}
		if r.Done {
			promptTokens, completionTokens = r.PromptEvalCount, r.EvalCount
			if r.DoneReason != "" && r.DoneReason != "stop" {
				c.log.Warn("Ollama stream finished early", "reason", r.DoneReason)
			}
		}
		return nil
	})
	if err != nil {
		err = wrapOllamaErr(err)
		observeRequest(ProviderOllama, c.model, opStream, statusOf(err), time.Since(start), promptTokens, completionTokens)
		return full.String(), err
	}
	observeRequest(ProviderOllama, c.model, opStream, statusOK, time.Since(start), promptTokens, completionTokens)
	return full.String(), nil
}

func wrapOllamaErr(err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		return &StatusError{Provider: ProviderOllama, StatusCode: se.StatusCode, Message: se.ErrorMessage}
	}
	return err
}
