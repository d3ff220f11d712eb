package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/screenplay-backend/internal/data/db"
	billing "github.com/yungbote/screenplay-backend/internal/domain/billing"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/llm"
)

type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	LogMode string `envconfig:"LOG_MODE" default:"development"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName     string `envconfig:"POSTGRES_NAME" default:"screenplay"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	JWTSecretKey string `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTAudience  string `envconfig:"JWT_AUDIENCE"`

	LLMProvider     string        `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMModel        string        `envconfig:"LLM_MODEL"`
	LLMBaseURL      string        `envconfig:"LLM_BASE_URL"`
	LLMAPIKey       string        `envconfig:"LLM_API_KEY"`
	AzureAPIVersion string        `envconfig:"AZURE_OPENAI_API_VERSION"`
	LLMTimeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"120s"`
	LLMMaxRetries   int           `envconfig:"LLM_MAX_RETRIES" default:"2"`
	LLMTemperature  float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMMaxTokens    int           `envconfig:"LLM_MAX_TOKENS" default:"4096"`

	RedisAddr         string        `envconfig:"REDIS_ADDR"`
	GenerationLockTTL time.Duration `envconfig:"GENERATION_LOCK_TTL" default:"3m"`

	FreeTierCallLimit     int    `envconfig:"FREE_TIER_CALL_LIMIT" default:"10"`
	FreeTierResetInterval string `envconfig:"FREE_TIER_RESET_INTERVAL" default:"monthly"`

	RateLimitWindow      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1h"`
	RateLimitMaxRequests uint          `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	EnableTestEndpoints  bool `envconfig:"ENABLE_TEST_ENDPOINTS" default:"false"`
	MetricsEnabled       bool `envconfig:"METRICS_ENABLED" default:"true"`
	OtelEnabled          bool `envconfig:"OTEL_ENABLED" default:"false"`
	SeedTemplatesOnStart bool `envconfig:"SEED_TEMPLATES_ON_START" default:"true"`

	OtelEndpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	OtelSampleRatio float64 `envconfig:"OTEL_SAMPLER_RATIO" default:"0.1"`
}

// LoadConfig reads envFile when it exists, then the process environment. Variables already set in the
// environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	switch billing.ResetInterval(c.FreeTierResetInterval) {
	case billing.ResetMonthly, billing.ResetAnnual:
	default:
		return fmt.Errorf("FREE_TIER_RESET_INTERVAL must be monthly or annual, got %q", c.FreeTierResetInterval)
	}
	switch strings.ToLower(strings.TrimSpace(c.LLMProvider)) {
	case llm.ProviderOpenAI, llm.ProviderAzure, llm.ProviderOllama:
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, azure or ollama, got %q", c.LLMProvider)
	}
	if c.FreeTierCallLimit < 0 {
		return fmt.Errorf("FREE_TIER_CALL_LIMIT must not be negative")
	}
	return nil
}

func (c Config) Postgres() db.PostgresConfig {
	return db.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		Name:     c.PostgresName,
		SSLMode:  c.PostgresSSLMode,
	}
}

func (c Config) LLM() llm.Config {
	return llm.Config{
		Provider:        c.LLMProvider,
		Model:           c.LLMModel,
		BaseURL:         c.LLMBaseURL,
		APIKey:          c.LLMAPIKey,
		AzureAPIVersion: c.AzureAPIVersion,
		Timeout:         c.LLMTimeout,
		MaxRetries:      c.LLMMaxRetries,
		Temperature:     c.LLMTemperature,
		MaxTokens:       c.LLMMaxTokens,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: "screenplay-backend",
		Environment: c.AppEnv,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) CORSOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return nil
	}
	return strings.Split(c.CORSAllowedOrigins, ",")
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
