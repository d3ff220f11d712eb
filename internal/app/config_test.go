package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.FreeTierCallLimit)
	assert.Equal(t, "monthly", cfg.FreeTierResetInterval)
	assert.Equal(t, time.Hour, cfg.RateLimitWindow)
	assert.EqualValues(t, 100, cfg.RateLimitMaxRequests)
	assert.False(t, cfg.EnableTestEndpoints)
	assert.True(t, cfg.SeedTemplatesOnStart)
	assert.Nil(t, cfg.CORSOrigins())
	assert.Equal(t, "postgres://postgres:@localhost:5432/screenplay?sslmode=disable", cfg.Postgres().DSN())
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	cases := map[string][2]string{
		"reset interval": {"FREE_TIER_RESET_INTERVAL", "weekly"},
		"llm provider":   {"LLM_PROVIDER", "bard"},
		"negative limit": {"FREE_TIER_CALL_LIMIT", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "s3cret")
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig("")
			require.Error(t, err)
		})
	}
}

func TestLoadConfigReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "JWT_SECRET_KEY=from-file\nPORT=9090\nCORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("PORT", "7070")
	// registered so the value loaded from the file is cleared after the test
	t.Setenv("JWT_SECRET_KEY", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET_KEY"))
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	require.NoError(t, os.Unsetenv("CORS_ALLOWED_ORIGINS"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecretKey)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, []string{"https://a.example", " https://b.example"}, cfg.CORSOrigins())
}

func TestLoadConfigMissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
