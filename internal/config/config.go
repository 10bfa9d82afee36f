// Package config loads and persists the ORC project configuration from
// .orc/config.yaml. The loaded Config is immutable and passed explicitly
// into component constructors; no package reads it from ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the supported config schema version.
const CurrentVersion = 1

// Config represents the complete ORC configuration
type Config struct {
	Version   int    `yaml:"version" mapstructure:"version"`
	ProjectID string `yaml:"projectId,omitempty" mapstructure:"projectId"`

	Languages  []string         `yaml:"languages" mapstructure:"languages"`
	Index      IndexConfig      `yaml:"index" mapstructure:"index"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	DeadCode   DeadCodeConfig   `yaml:"deadcode" mapstructure:"deadcode"`
	AI         AIConfig         `yaml:"ai" mapstructure:"ai"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// IndexConfig contains indexing configuration
type IndexConfig struct {
	Workers          int      `yaml:"workers" mapstructure:"workers"`
	MaxFileSizeBytes int      `yaml:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	ExcludeDirs      []string `yaml:"excludeDirs" mapstructure:"excludeDirs"`
}

// ThresholdsConfig contains the complexity severity table and size limits.
// A function whose cyclomatic complexity is >= Critical is bucketed
// "critical", >= High "high", >= Medium "medium", otherwise "low".
type ThresholdsConfig struct {
	ComplexityMedium   int `yaml:"complexityMedium" mapstructure:"complexityMedium"`
	ComplexityHigh     int `yaml:"complexityHigh" mapstructure:"complexityHigh"`
	ComplexityCritical int `yaml:"complexityCritical" mapstructure:"complexityCritical"`
	LargeFunctionLines int `yaml:"largeFunctionLines" mapstructure:"largeFunctionLines"`
	LargeFileLines     int `yaml:"largeFileLines" mapstructure:"largeFileLines"`
}

// DeadCodeConfig contains dead-code detection configuration
type DeadCodeConfig struct {
	MinConfidence    float64  `yaml:"minConfidence" mapstructure:"minConfidence"`
	DynamicAllowlist []string `yaml:"dynamicAllowlist" mapstructure:"dynamicAllowlist"`
	ExcludePatterns  []string `yaml:"excludePatterns" mapstructure:"excludePatterns"`
}

// AIConfig contains AI provider configuration
type AIConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	Model          string `yaml:"model" mapstructure:"model"`
	BaseURL        string `yaml:"baseUrl,omitempty" mapstructure:"baseUrl"`
	APIKeyEnv      string `yaml:"apiKeyEnv" mapstructure:"apiKeyEnv"`
	MaxRetries     int    `yaml:"maxRetries" mapstructure:"maxRetries"`
	TimeoutSeconds int    `yaml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	MaxTokens      int    `yaml:"maxTokens" mapstructure:"maxTokens"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentVersion,
		Languages: []string{"python", "javascript", "typescript"},
		Index: IndexConfig{
			Workers:          4,
			MaxFileSizeBytes: 1000000,
			ExcludeDirs: []string{
				"node_modules", "venv", ".venv", "__pycache__",
				"dist", "build", ".git", ".tox", ".mypy_cache",
			},
		},
		Thresholds: ThresholdsConfig{
			ComplexityMedium:   5,
			ComplexityHigh:     10,
			ComplexityCritical: 20,
			LargeFunctionLines: 80,
			LargeFileLines:     500,
		},
		DeadCode: DeadCodeConfig{
			MinConfidence: 0.7,
			DynamicAllowlist: []string{
				"main", "setup", "teardown", "setUp", "tearDown",
				"get", "post", "put", "delete", "patch",
			},
			ExcludePatterns: []string{},
		},
		AI: AIConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "ORC_API_KEY",
			MaxRetries:     3,
			TimeoutSeconds: 120,
			MaxTokens:      4096,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .orc/config.yaml.
// Missing file returns the defaults, not an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, ".orc"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Start from defaults so partial config files stay usable.
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to .orc/config.yaml
func (c *Config) Save(repoRoot string) error {
	orcDir := filepath.Join(repoRoot, ".orc")
	if err := os.MkdirAll(orcDir, 0755); err != nil {
		return fmt.Errorf("creating .orc directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(filepath.Join(orcDir, "config.yaml"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Index.Workers < 1 {
		return &ConfigError{Field: "index.workers", Message: "must be at least 1"}
	}
	t := c.Thresholds
	if !(t.ComplexityMedium < t.ComplexityHigh && t.ComplexityHigh < t.ComplexityCritical) {
		return &ConfigError{Field: "thresholds", Message: "complexity thresholds must be strictly increasing"}
	}
	if c.DeadCode.MinConfidence < 0 || c.DeadCode.MinConfidence > 1 {
		return &ConfigError{Field: "deadcode.minConfidence", Message: "must be between 0 and 1"}
	}
	switch c.AI.Provider {
	case "openai", "anthropic", "ollama", "":
	default:
		return &ConfigError{Field: "ai.provider", Message: "must be one of openai, anthropic, ollama"}
	}
	for _, lang := range c.Languages {
		switch lang {
		case "python", "javascript", "typescript", "tsx":
		default:
			return &ConfigError{Field: "languages", Message: "unsupported language: " + lang}
		}
	}
	return nil
}

// SetValue sets a dot-separated config key to the given value and persists
// the result. The value is coerced to the target field's type. Used by
// `orc config set`.
func SetValue(repoRoot, key, value string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, ".orc"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.Set(key, coerceValue(value))

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("applying %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(repoRoot); err != nil {
		return nil, err
	}
	return cfg, nil
}

// coerceValue converts a CLI-provided string into a bool, int, float, list,
// or string so viper sets the field with the right type.
func coerceValue(value string) interface{} {
	if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if strings.Contains(value, ",") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return value
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
