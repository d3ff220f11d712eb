// Package llm is the text generation capability used by the screenplay workflows. Providers are
// OpenAI-compatible chat completions (OpenAI or Azure OpenAI) and a local Ollama server.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

// Client generates structured JSON against a schema, or streams free text.
type Client interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)

	// StreamText forwards every non-empty delta to onDelta and returns the full text.
	StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error)

	Model() string
}

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

type Config struct {
	Provider        string
	Model           string
	BaseURL         string
	APIKey          string
	AzureAPIVersion string
	Timeout         time.Duration
	MaxRetries      int
	Temperature     float64
	MaxTokens       int
}

func (c Config) withDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if strings.TrimSpace(c.Model) == "" {
		if c.Provider == ProviderOllama {
			c.Model = "llama3.1"
		} else {
			c.Model = "gpt-4o-mini"
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	return c
}

var (
	ErrEmptyResponse = errors.New("llm returned an empty response")
	ErrRefused       = errors.New("llm refused the request")
)

// StatusError carries the upstream HTTP status so the retry policy can classify it.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// New builds the configured provider wrapped with retries.
func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg = cfg.withDefaults()
	var (
		base Client
		err  error
	)
	switch cfg.Provider {
	case ProviderOpenAI, ProviderAzure:
		base, err = newOpenAIClient(log, cfg)
	case ProviderOllama:
		base, err = newOllamaClient(log, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Info("LLM client initialized", "provider", cfg.Provider, "model", cfg.Model, "max_retries", cfg.MaxRetries)
	return WithRetry(log, base, cfg.MaxRetries), nil
}

// Decode maps a GenerateJSON result onto a typed struct.
func Decode(obj map[string]any, out any) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode llm object: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode llm object: %w", err)
	}
	return nil
}

func parseObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	text = stripFence(text)
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

// stripFence removes a ```json ... ``` wrapper some local models add despite the schema.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
