package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		} else {
			t.Cleanup(func() { _ = os.Unsetenv(key) })
		}
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "APP_PORT", "APP_ENV", "DEFAULT_PROVIDER", "CATALOG_SOURCE", "LOOKUP_CACHE_TTL")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.DefaultProvider)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.Gemini.Model)
	assert.Equal(t, "gpt-image-1.5", cfg.OpenAI.Model)
	assert.Equal(t, "https://api.decor8.ai", cfg.Decor8.BaseURL)
	assert.Equal(t, "embedded", cfg.Catalog.Source)
	assert.Equal(t, 15*time.Minute, cfg.LookupCacheTTL)
	assert.False(t, cfg.Development())
}

func TestLoadReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DEFAULT_PROVIDER=Decor8\nAPP_ENV=development\n"), 0o600))
	unsetenv(t, "DEFAULT_PROVIDER", "APP_ENV")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "decor8", cfg.DefaultProvider)
	assert.True(t, cfg.Development())
}

func TestEnvSecretReadsAtCallTime(t *testing.T) {
	secret := EnvSecret("ROOMVIZ_TEST_KEY")

	t.Setenv("ROOMVIZ_TEST_KEY", "")
	assert.Empty(t, secret.Value())

	t.Setenv("ROOMVIZ_TEST_KEY", "  sk-rotated ")
	assert.Equal(t, "sk-rotated", secret.Value())
}

func TestNilSecret(t *testing.T) {
	var secret Secret
	assert.Empty(t, secret.Value())
	assert.Equal(t, "x", StaticSecret("x").Value())
}
