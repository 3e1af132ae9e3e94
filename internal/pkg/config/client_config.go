package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 客户端运行配置
type Config struct {
	Env      string         `yaml:"env" validate:"omitempty,oneof=development production test"`
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Storage  StorageConfig  `yaml:"storage"`
	UI       UIConfig       `yaml:"ui"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// APIConfig 远端 REST API
type APIConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	RefreshPath string `yaml:"refresh_path" validate:"required,startswith=/"`
	// Timeout 为 0 时不设置截止时间，仅靠显式取消终止请求
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int           `yaml:"rate_burst" validate:"gte=0"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

// BreakerConfig 熔断器，MaxFailures 为 0 时关闭
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	OpenTimeout time.Duration `yaml:"open_timeout" validate:"gte=0"`
}

// RealtimeConfig 实时通道
type RealtimeConfig struct {
	Transport     string `yaml:"transport" validate:"oneof=nats websocket none"`
	URL           string `yaml:"url" validate:"required_unless=Transport none"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// StorageConfig 本地持久化（令牌与主题）
type StorageConfig struct {
	Backend       string `yaml:"backend" validate:"oneof=file redis memory"`
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`
	Prefix        string `yaml:"prefix"`
}

// UIConfig 界面偏好
type UIConfig struct {
	Language    string `yaml:"language"`
	SystemTheme string `yaml:"system_theme" validate:"omitempty,oneof=light dark"`
}

// LogConfig 日志
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// MetricsConfig 指标
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Default 返回本地开发默认值
func Default() Config {
	return Config{
		Env: "development",
		API: APIConfig{
			BaseURL:     "http://localhost:5000/api",
			RefreshPath: "/auth/refresh",
			Breaker: BreakerConfig{
				MaxFailures: 5,
				OpenTimeout: 30 * time.Second,
			},
		},
		Realtime: RealtimeConfig{
			Transport:     "none",
			SubjectPrefix: "shop.events",
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     defaultStorageDir(),
			Prefix:  "shopfront",
		},
		UI: UIConfig{
			Language: "en",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Namespace: "shopfront",
		},
	}
}

// Load 加载配置：.env（可选）→ YAML 文件（可选）→ 环境变量覆盖 → 校验
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return fmt.Errorf("invalid config: %s failed on %q", vErrs[0].Namespace(), vErrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogFields 返回可安全输出到日志的配置摘要
func (c *Config) LogFields() map[string]any {
	return SanitizeConfigForLog(map[string]any{
		"env":               c.Env,
		"api_base_url":      c.API.BaseURL,
		"realtime":          c.Realtime.Transport,
		"realtime_url":      c.Realtime.URL,
		"storage":           c.Storage.Backend,
		"storage_dir":       c.Storage.Dir,
		"redis_addr":        c.Storage.RedisAddr,
		"redis_password":    c.Storage.RedisPassword,
		"language":          c.UI.Language,
		"log_level":         c.Log.Level,
		"rate_limit":        c.API.RateLimit,
		"breaker_threshold": c.API.Breaker.MaxFailures,
	})
}

func applyEnv(c *Config) {
	c.Env = GetEnvOrDefault("SHOPFRONT_ENV", c.Env)
	c.API.BaseURL = GetEnvOrDefault("SHOPFRONT_API_URL", c.API.BaseURL)
	c.API.RefreshPath = GetEnvOrDefault("SHOPFRONT_REFRESH_PATH", c.API.RefreshPath)
	c.API.Timeout = GetEnvDuration("SHOPFRONT_API_TIMEOUT", c.API.Timeout)
	c.API.RateLimit = GetEnvFloat("SHOPFRONT_RATE_LIMIT", c.API.RateLimit)
	c.API.RateBurst = GetEnvInt("SHOPFRONT_RATE_BURST", c.API.RateBurst)
	c.Realtime.Transport = GetEnvOrDefault("SHOPFRONT_REALTIME", c.Realtime.Transport)
	c.Realtime.URL = GetEnvOrDefault("SHOPFRONT_REALTIME_URL", c.Realtime.URL)
	c.Storage.Backend = GetEnvOrDefault("SHOPFRONT_STORAGE", c.Storage.Backend)
	c.Storage.Dir = GetEnvOrDefault("SHOPFRONT_STORAGE_DIR", c.Storage.Dir)
	c.Storage.RedisAddr = GetEnvOrDefault("SHOPFRONT_REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = GetEnvOrDefault("SHOPFRONT_REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = GetEnvInt("SHOPFRONT_REDIS_DB", c.Storage.RedisDB)
	c.UI.Language = GetEnvOrDefault("SHOPFRONT_LANG", c.UI.Language)
	c.UI.SystemTheme = GetEnvOrDefault("SHOPFRONT_SYSTEM_THEME", c.UI.SystemTheme)
	c.Log.Level = GetEnvOrDefault("SHOPFRONT_LOG_LEVEL", c.Log.Level)
}

// loadDotEnv 当前目录存在 .env 时加载；已设置的环境变量不会被覆盖
func loadDotEnv() error {
	name := GetEnvOrDefault("SHOPFRONT_DOTENV", ".env")
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if err := godotenv.Load(name); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "shopfront")
	}
	return filepath.Join(os.TempDir(), "shopfront")
}
