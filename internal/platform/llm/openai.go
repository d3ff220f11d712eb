package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type openAIClient struct {
	log         *logger.Logger
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAIClient(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY for provider %s", cfg.Provider)
	}
	var oc openai.ClientConfig
	if cfg.Provider == ProviderAzure {
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("missing LLM_BASE_URL for azure")
		}
		oc = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if v := strings.TrimSpace(cfg.AzureAPIVersion); v != "" {
			oc.APIVersion = v
		}
		// Deployment names equal the configured model.
		model := cfg.Model
		oc.AzureModelMapperFunc = func(string) string { return model }
	} else {
		oc = openai.DefaultConfig(cfg.APIKey)
		if u := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); u != "" {
			oc.BaseURL = u
		}
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &openAIClient{
		log:         log.With("service", "OpenAIClient", "provider", cfg.Provider),
		client:      openai.NewClientWithConfig(oc),
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *openAIClient) Model() string { return c.model }

func (c *openAIClient) messages(system, user string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
}

func (c *openAIClient) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
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

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.messages(system, user),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: json.RawMessage(rawSchema),
				Strict: true,
			},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		err = c.wrapErr(err)
		observeRequest(c.provider, c.model, opJSON, statusOf(err), time.Since(start), EstimateTokens(c.model, system+user), 0)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		observeRequest(c.provider, c.model, opJSON, statusEmpty, time.Since(start), resp.Usage.PromptTokens, 0)
		return nil, ErrEmptyResponse
	}
	msg := resp.Choices[0].Message
	if strings.TrimSpace(msg.Refusal) != "" {
		observeRequest(c.provider, c.model, opJSON, statusRefused, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		return nil, fmt.Errorf("%w: %s", ErrRefused, msg.Refusal)
	}
	obj, err := parseObject(msg.Content)
	if err != nil {
		observeRequest(c.provider, c.model, opJSON, statusInvalid, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		c.log.Warn("Model returned unparseable JSON", "schema", schemaName, "error", err)
		return nil, err
	}
	observeRequest(c.provider, c.model, opJSON, statusOK, time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return obj, nil
}

func (c *openAIClient) StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.messages(system, user),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	}
	start := time.Now()
	inputTokens := EstimateTokens(c.model, system) + EstimateTokens(c.model, user)

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		err = c.wrapErr(err)
		observeRequest(c.provider, c.model, opStream, statusOf(err), time.Since(start), inputTokens, 0)
		return "", err
	}
	defer stream.Close()

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = c.wrapErr(err)
			observeRequest(c.provider, c.model, opStream, statusOf(err), time.Since(start), inputTokens, EstimateTokens(c.model, full.String()))
			return full.String(), err
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		d := chunk.Choices[0].Delta.Content
		if d == "" {
			continue
		}
		full.WriteString(d)
		if onDelta != nil {
			onDelta(d)
		}
	}
	observeRequest(c.provider, c.model, opStream, statusOK, time.Since(start), inputTokens, EstimateTokens(c.model, full.String()))
	return full.String(), nil
}

func (c *openAIClient) wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{Provider: c.provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		msg := reqErr.HTTPStatus
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &StatusError{Provider: c.provider, StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}
	return err
}
