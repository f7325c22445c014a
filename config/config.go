// Package config loads server configuration from a YAML file with environment
// variable overrides. Precedence: defaults, then file values, then
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults applied before any file or environment value.
const (
	DefaultAddr                = ":8080"
	DefaultMaxIterations       = 10
	DefaultSimilarityThreshold = 0.7
	DefaultMaxResults          = 3
	DefaultMaxContentLength    = 2000
	DefaultProvider            = "gemini"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	Model     ModelConfig     `yaml:"model"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Manager   ManagerConfig   `yaml:"manager"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
}

// ModelConfig selects and parameterizes the language model provider.
type ModelConfig struct {
	// Provider is one of "gemini", "openai", "anthropic".
	Provider string `yaml:"provider"`
	// Name overrides the provider's default model name.
	Name string `yaml:"name"`
	// APIKey is normally supplied via environment, not the file.
	APIKey string `yaml:"api_key"`
}

// RetrievalConfig tunes document similarity search.
type RetrievalConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxResults          int     `yaml:"max_results"`
	MaxContentLength    int     `yaml:"max_content_length"`
}

// ManagerConfig tunes the orchestration loop.
type ManagerConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
}

// LogConfig tunes structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Default returns a configuration populated with the built-in defaults.
func Default() Config {
	return Config{
		Addr: DefaultAddr,
		Model: ModelConfig{
			Provider: DefaultProvider,
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: DefaultSimilarityThreshold,
			MaxResults:          DefaultMaxResults,
			MaxContentLength:    DefaultMaxContentLength,
		},
		Manager: ManagerConfig{
			MaxIterations: DefaultMaxIterations,
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides on top of defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// A missing file is not an error; env and defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyFloors()
	return cfg, nil
}

// applyEnv overlays TASKHIVE_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.Addr, "TASKHIVE_ADDR")
	setString(&c.Model.Provider, "TASKHIVE_MODEL_PROVIDER")
	setString(&c.Model.Name, "TASKHIVE_MODEL_NAME")
	setString(&c.Model.APIKey, "TASKHIVE_API_KEY")
	setString(&c.Store.Driver, "TASKHIVE_STORE_DRIVER")
	setString(&c.Store.Path, "TASKHIVE_STORE_PATH")
	setString(&c.Log.Level, "TASKHIVE_LOG_LEVEL")
	setString(&c.Log.Format, "TASKHIVE_LOG_FORMAT")
	setFloat(&c.Retrieval.SimilarityThreshold, "TASKHIVE_SIMILARITY_THRESHOLD")
	setInt(&c.Retrieval.MaxResults, "TASKHIVE_MAX_RESULTS")
	setInt(&c.Retrieval.MaxContentLength, "TASKHIVE_MAX_CONTENT_LENGTH")
	setInt(&c.Manager.MaxIterations, "TASKHIVE_MAX_ITERATIONS")

	// Provider-native key variables take effect when no explicit key is set.
	if c.Model.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				c.Model.APIKey = v
				break
			}
		}
	}
}

// applyFloors resets zero or negative tunables back to their defaults.
func (c *Config) applyFloors() {
	if c.Retrieval.SimilarityThreshold <= 0 {
		c.Retrieval.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if c.Retrieval.MaxResults <= 0 {
		c.Retrieval.MaxResults = DefaultMaxResults
	}
	if c.Retrieval.MaxContentLength <= 0 {
		c.Retrieval.MaxContentLength = DefaultMaxContentLength
	}
	if c.Manager.MaxIterations <= 0 {
		c.Manager.MaxIterations = DefaultMaxIterations
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
