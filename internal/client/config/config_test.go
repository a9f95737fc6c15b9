package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/societyhub/internal/client/repositories/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8000/api", c.APIBaseURL)
	assert.Equal(t, kv.BackendSQLite, c.Backend)
	assert.Equal(t, 500*time.Millisecond, c.SearchDebounce)
	assert.Zero(t, c.RateLimit)
}

func TestLoadConfig_UsesDefaultsWithoutSources(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"SOCIETYHUB_API_URL=http://env-file/api\n"+
			"SOCIETYHUB_STORAGE=memory\n"+
			"SOCIETYHUB_LOG_LEVEL=debug\n"+
			"SOCIETYHUB_RATE_LIMIT=3\n",
	), 0o600))

	jsonFile := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"storage":         "redis",
		"search_debounce": "1s",
	})

	t.Setenv("SOCIETYHUB_LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{
		"-env-file", envFile,
		"-config", jsonFile,
		"-rate", "7",
		"-unrelated", "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://env-file/api", cfg.APIBaseURL) // .env
	assert.Equal(t, "warn", cfg.LogLevel)                  // process env beats .env
	assert.Equal(t, "redis", cfg.Backend)                  // JSON beats .env
	assert.Equal(t, time.Second, cfg.SearchDebounce)       // JSON
	assert.Equal(t, 7.0, cfg.RateLimit)                    // flag beats .env
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)

	_, err = LoadConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	_, err = LoadConfig([]string{"-debounce", "soon"})
	assert.Error(t, err)
}

func TestConfig_Storage(t *testing.T) {
	c := Config{Backend: kv.BackendRedis, RedisAddr: "r:6379", RedisDB: 2, Namespace: "ns"}
	assert.Equal(t, kv.Options{Backend: kv.BackendRedis, RedisAddr: "r:6379", RedisDB: 2, Namespace: "ns"}, c.Storage())
}
