// Package config loads papersumm configuration from files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates the loaded configuration is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

var envKeyReplacer = strings.NewReplacer(".", "_")

// LLMConfig configures the model client.
type LLMConfig struct {
	// Model is the primary model identifier.
	Model string `mapstructure:"model"`

	// FallbackModel is tried when the primary model fails. Empty
	// disables fallback.
	FallbackModel string `mapstructure:"fallback_model"`

	// APIKey authenticates against the provider. Falls back to the
	// OPENAI_API_KEY environment variable when empty.
	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint. Empty uses the default.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds a single model invocation.
	Timeout time.Duration `mapstructure:"timeout"`
}

// RetryConfig configures the retry controller.
type RetryConfig struct {
	MaxComplianceRetries int           `mapstructure:"max_compliance_retries"`
	MaxTransientRetries  int           `mapstructure:"max_transient_retries"`
	BackoffBase          time.Duration `mapstructure:"backoff_base"`
}

// ComplianceConfig configures the structural validator.
type ComplianceConfig struct {
	// CJKThreshold is the minimum fraction of CJK ideographs required
	// for Chinese-language templates.
	CJKThreshold float64 `mapstructure:"cjk_threshold"`
}

// RateLimitConfig configures client-side request throttling.
type RateLimitConfig struct {
	// RequestsPerSecond caps the sustained request rate. Zero or
	// negative disables throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// BurstSize is the token bucket capacity.
	BurstSize int `mapstructure:"burst_size"`
}

// PipelineConfig configures the daily batch runner.
type PipelineConfig struct {
	TemplateID    string        `mapstructure:"template_id"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	PaperTimeout  time.Duration `mapstructure:"paper_timeout"`
}

// FeedConfig configures the paper feed client.
type FeedConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// Config is the root papersumm configuration.
type Config struct {
	// DataDir is where papersumm keeps its database and fetched
	// paper lists.
	DataDir string `mapstructure:"data_dir"`

	// ArchiveDir is the root of the markdown archive.
	ArchiveDir string `mapstructure:"archive_dir"`

	// TemplateDirs are extra directories searched for template
	// variants, in addition to the built-in search paths.
	TemplateDirs []string `mapstructure:"template_dirs"`

	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	LLM        LLMConfig        `mapstructure:"llm"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Feed       FeedConfig       `mapstructure:"feed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".papersumm")

	return &Config{
		DataDir:    dataDir,
		ArchiveDir: ".",
		LogLevel:   "info",
		LLM: LLMConfig{
			Model:         "gpt-4o",
			FallbackModel: "gpt-4o-mini",
			Timeout:       2 * time.Minute,
		},
		Retry: RetryConfig{
			MaxComplianceRetries: 2,
			MaxTransientRetries:  3,
			BackoffBase:          500 * time.Millisecond,
		},
		Compliance: ComplianceConfig{
			CJKThreshold: 0.5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
		Pipeline: PipelineConfig{
			TemplateID:    "paper-digest",
			MaxConcurrent: 4,
			PaperTimeout:  5 * time.Minute,
		},
	}
}

// DatabasePath returns the sqlite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "papersumm.db")
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is required", ErrInvalidConfig)
	}
	if c.Compliance.CJKThreshold < 0 || c.Compliance.CJKThreshold > 1 {
		return fmt.Errorf("%w: compliance.cjk_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if c.Retry.MaxComplianceRetries < 0 {
		return fmt.Errorf("%w: retry.max_compliance_retries must not be negative", ErrInvalidConfig)
	}
	if c.Retry.MaxTransientRetries < 0 {
		return fmt.Errorf("%w: retry.max_transient_retries must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Load reads configuration with the usual precedence: explicit file,
// then ./papersumm.yaml, then ~/.config/papersumm/papersumm.yaml,
// then environment variables (PAPERSUMM_ prefix), then defaults.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("papersumm")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "papersumm"))
		}
		v.AddConfigPath("/etc/papersumm")
	}

	v.SetEnvPrefix("PAPERSUMM")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("archive_dir", defaults.ArchiveDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.fallback_model", defaults.LLM.FallbackModel)
	v.SetDefault("llm.timeout", defaults.LLM.Timeout)
	v.SetDefault("retry.max_compliance_retries", defaults.Retry.MaxComplianceRetries)
	v.SetDefault("retry.max_transient_retries", defaults.Retry.MaxTransientRetries)
	v.SetDefault("retry.backoff_base", defaults.Retry.BackoffBase)
	v.SetDefault("compliance.cjk_threshold", defaults.Compliance.CJKThreshold)
	v.SetDefault("rate_limit.requests_per_second", defaults.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", defaults.RateLimit.BurstSize)
	v.SetDefault("pipeline.template_id", defaults.Pipeline.TemplateID)
	v.SetDefault("pipeline.max_concurrent", defaults.Pipeline.MaxConcurrent)
	v.SetDefault("pipeline.paper_timeout", defaults.Pipeline.PaperTimeout)
	v.SetDefault("feed.base_url", defaults.Feed.BaseURL)
}
