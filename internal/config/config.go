package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	LogDir   string `mapstructure:"log_dir"`

	BaseURL            string `mapstructure:"base_url"`
	TimeoutSeconds     int64  `mapstructure:"timeout_seconds"`
	MaxRetries         int    `mapstructure:"max_retries"`
	BackoffBaseMs      int64  `mapstructure:"backoff_base_ms"`
	BackoffMaxMs       int64  `mapstructure:"backoff_max_ms"`
	RetryStatusList    string `mapstructure:"retry_statuses"`
	SchemaFile         string `mapstructure:"schema_file"`
	ReportersFile      string `mapstructure:"reporters_file"`
	ReportDir          string `mapstructure:"report_dir"`
	RunIntervalSeconds int64  `mapstructure:"run_interval"`
	UseMock            bool   `mapstructure:"use_mock"`
	MockAddr           string `mapstructure:"mock_addr"`

	Timeout       time.Duration `mapstructure:"-"`
	BackoffBase   time.Duration `mapstructure:"-"`
	BackoffMax    time.Duration `mapstructure:"-"`
	RunInterval   time.Duration `mapstructure:"-"`
	RetryStatuses []int         `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "apiprobe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "./logs")
	v.SetDefault("base_url", "https://jsonplaceholder.typicode.com")
	v.SetDefault("timeout_seconds", 10)
	v.SetDefault("max_retries", 3)
	v.SetDefault("backoff_base_ms", 300)
	v.SetDefault("backoff_max_ms", 10000)
	v.SetDefault("retry_statuses", "429,500,502,503,504")
	v.SetDefault("schema_file", "./configs/schemas/post.schema.json")
	v.SetDefault("reporters_file", "./configs/reporters.yaml")
	v.SetDefault("report_dir", "./reports")
	v.SetDefault("run_interval", 0) // seconds; 0 runs the suite once and exits
	v.SetDefault("use_mock", false)
	v.SetDefault("mock_addr", "127.0.0.1:8080")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("invalid base_url (must not be empty)")
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid max_retries (must be zero or positive)")
	}
	if cfg.BackoffBaseMs <= 0 {
		return nil, fmt.Errorf("invalid backoff_base_ms (must be positive milliseconds)")
	}
	if cfg.BackoffMaxMs < cfg.BackoffBaseMs {
		return nil, fmt.Errorf("invalid backoff_max_ms (must be >= backoff_base_ms)")
	}
	if cfg.RunIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid run_interval (must be zero or positive seconds)")
	}

	statuses, err := parseStatusList(cfg.RetryStatusList)
	if err != nil {
		return nil, fmt.Errorf("invalid retry_statuses: %w", err)
	}

	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	cfg.BackoffBase = time.Duration(cfg.BackoffBaseMs) * time.Millisecond
	cfg.BackoffMax = time.Duration(cfg.BackoffMaxMs) * time.Millisecond
	cfg.RunInterval = time.Duration(cfg.RunIntervalSeconds) * time.Second
	cfg.RetryStatuses = statuses

	return &cfg, nil
}

// parseStatusList parses a comma-separated list of HTTP status codes. An
// empty list is allowed and disables status-based retries.
func parseStatusList(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		code, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse status %q: %w", p, err)
		}
		if code < 100 || code > 599 {
			return nil, fmt.Errorf("status %d out of range", code)
		}
		out = append(out, code)
	}
	return out, nil
}
