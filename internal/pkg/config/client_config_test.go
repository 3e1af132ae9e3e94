package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SHOPFRONT_DOTENV", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, "/auth/refresh", cfg.API.RefreshPath)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, "none", cfg.Realtime.Transport)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	t.Setenv("SHOPFRONT_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	path := writeFile(t, "shopfront.yaml", `
env: production
api:
  base_url: https://shop.example.com/api
  timeout: 15s
  rate_limit: 5
  rate_burst: 10
realtime:
  transport: websocket
  url: wss://shop.example.com/socket
storage:
  backend: memory
ui:
  system_theme: dark
`)
	t.Setenv("SHOPFRONT_API_URL", "https://staging.example.com/api")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "https://staging.example.com/api", cfg.API.BaseURL, "环境变量优先于配置文件")
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5.0, cfg.API.RateLimit)
	assert.Equal(t, 10, cfg.API.RateBurst)
	assert.Equal(t, "websocket", cfg.Realtime.Transport)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "dark", cfg.UI.SystemTheme)
}

func TestLoadDotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "SHOPFRONT_LOG_LEVEL=debug\nSHOPFRONT_STORAGE=memory\n")
	t.Setenv("SHOPFRONT_DOTENV", envFile)
	// godotenv 不覆盖已存在的变量，先占位再由 t.Setenv 负责还原
	t.Setenv("SHOPFRONT_LOG_LEVEL", "")
	t.Setenv("SHOPFRONT_STORAGE", "")
	require.NoError(t, os.Unsetenv("SHOPFRONT_LOG_LEVEL"))
	require.NoError(t, os.Unsetenv("SHOPFRONT_STORAGE"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "默认配置有效", mutate: func(c *Config) {}},
		{name: "缺少 API 地址", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: "BaseURL"},
		{name: "未知的实时通道", mutate: func(c *Config) { c.Realtime.Transport = "sse" }, wantErr: "Transport"},
		{name: "实时通道缺少地址", mutate: func(c *Config) { c.Realtime.Transport = "nats" }, wantErr: "URL"},
		{name: "redis 缺少地址", mutate: func(c *Config) { c.Storage.Backend = "redis" }, wantErr: "RedisAddr"},
		{name: "redis 配置完整", mutate: func(c *Config) {
			c.Storage.Backend = "redis"
			c.Storage.RedisAddr = "localhost:6379"
		}},
		{name: "非法主题", mutate: func(c *Config) { c.UI.SystemTheme = "blue" }, wantErr: "SystemTheme"},
		{name: "负的超时", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLogFieldsRedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Storage.RedisPassword = "hunter2"

	fields := cfg.LogFields()
	assert.Equal(t, "***REDACTED***", fields["redis_password"])
	assert.Equal(t, cfg.API.BaseURL, fields["api_base_url"])
}
