package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.App.HTTPAddr)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, 2*time.Minute, cfg.Ollama.Timeout)
	assert.Equal(t, "HS256", cfg.Security.JWTAlgorithm)
	assert.Equal(t, 30, cfg.Security.TokenTTLMinutes)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := getDefaultConfig()
	cfg.App.HTTPAddr = ":9001"
	cfg.Ollama.Model = "mistral"
	cfg.Ollama.Timeout = 90 * time.Second
	cfg.Security.TokenTTLMinutes = 60
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9001", loaded.App.HTTPAddr)
	assert.Equal(t, "mistral", loaded.Ollama.Model)
	assert.Equal(t, 90*time.Second, loaded.Ollama.Timeout)
	assert.Equal(t, 60, loaded.Security.TokenTTLMinutes)
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := &Config{}
	cfg.App.HTTPAddr = ":9002"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9002", loaded.App.HTTPAddr)
	// 没写的字段回落到默认值
	assert.Equal(t, "llama3", loaded.Ollama.Model)
	assert.Equal(t, "HS256", loaded.Security.JWTAlgorithm)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("OLLAMA_HOST", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "phi3")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Security.JWTSecret)
	assert.Equal(t, "HS512", cfg.Security.JWTAlgorithm)
	assert.Equal(t, 45, cfg.Security.TokenTTLMinutes)
	assert.Equal(t, "http://ollama:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "phi3", cfg.Ollama.Model)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestEnvOverrides_DBPieces(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "vibe")
	t.Setenv("DB_PASSWORD", "hunter2")
	t.Setenv("DB_NAME", "vibecycle_prod")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Contains(t, cfg.MySQL.DSN, "db.internal:3307")
	assert.Contains(t, cfg.MySQL.DSN, "vibe:hunter2@")
	assert.Contains(t, cfg.MySQL.DSN, "/vibecycle_prod")
}

func TestEnvOverrides_FullDSNWins(t *testing.T) {
	t.Setenv("DB_DSN", "user:pw@tcp(somewhere:3306)/other?parseTime=true")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, "user:pw@tcp(somewhere:3306)/other?parseTime=true", cfg.MySQL.DSN)
}
