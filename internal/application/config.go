// Package application orchestrates the evaluation pipeline: per-file
// text extraction, two-tier metric extraction, cohort resolution,
// benchmark comparison, scoring, and report assembly. Infrastructure
// adapters are injected through the ports interfaces.
package application

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/dealdesk/internal/domain"
)

// LLMConfig configures the completion client backing the analyst.
type LLMConfig struct {
	// Provider selects the completion backend. Gemini ("google") is the
	// default because the benchmark prompts were tuned against it.
	Provider string `yaml:"provider" validate:"omitempty,oneof=google openai anthropic"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	// APIKey authenticates with the provider. Usually injected from the
	// environment rather than the file.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single completion request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries caps retry attempts for transient failures.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RequestsPerSecond and Burst configure client-side rate limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=0"`
}

// BenchmarkConfig configures the benchmark dataset source.
type BenchmarkConfig struct {
	// Path is the local CSV file.
	Path string `yaml:"path"`

	// URL, when set, takes precedence over Path.
	URL string `yaml:"url"`

	// FetchTimeout bounds URL fetches.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	JSON  bool `yaml:"json"`
	Debug bool `yaml:"debug"`
}

// Config is the full pipeline configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Logging   LoggingConfig   `yaml:"logging"`

	// MaxConcurrentFiles bounds parallel per-file text extraction.
	MaxConcurrentFiles int `yaml:"max_concurrent_files" validate:"min=1,max=64"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:          "google",
			Timeout:           60 * time.Second,
			MaxRetries:        2,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Benchmark: BenchmarkConfig{
			Path: "data/benchmarks.csv",
		},
		MaxConcurrentFiles: 4,
	}
}

// LoadConfig reads a YAML configuration file, fills defaults for
// omitted fields, and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	return nil
}
