package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_parseEnv(t *testing.T) {
	t.Run("reads process environment", func(t *testing.T) {
		clearEnv(t)
		withArgs(t, "-env-file", "/nonexistent/.env")
		t.Setenv(envOpenRouterAPIKey, "sk-env")
		t.Setenv(envCompletionTimeout, "45s")
		t.Setenv(envSiteName, "Coach")

		cfg := &Config{}
		cfg.LoadDefaults()
		parseEnv(cfg)

		assert.Equal(t, "sk-env", cfg.OpenRouterAPIKey)
		assert.Equal(t, 45*time.Second, cfg.CompletionTimeout)
		assert.Equal(t, "Coach", cfg.SiteName)
		assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterBaseURL, "unset vars keep defaults")
	})

	t.Run("loads dotenv file without overriding real env", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envSecretKey, "from-env")
		path := writeEnvFile(t, "OPENROUTER_API_KEY=sk-dotenv\nSECRET_KEY=from-file\n")
		withArgs(t, "-env-file", path)
		// godotenv never overrides a variable that exists, even when empty.
		t.Setenv(envOpenRouterAPIKey, "")
		require.NoError(t, os.Unsetenv(envOpenRouterAPIKey))

		cfg := &Config{}
		parseEnv(cfg)

		assert.Equal(t, "sk-dotenv", cfg.OpenRouterAPIKey)
		assert.Equal(t, "from-env", cfg.SecretKey)
	})

	t.Run("bad duration panics", func(t *testing.T) {
		clearEnv(t)
		withArgs(t, "-env-file", "/nonexistent/.env")
		t.Setenv(envAccessTokenTTL, "five minutes")

		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
