// Package config holds the vizsel runtime configuration.
// Config is loaded from a YAML file with environment variable overrides
// (VIZSEL_* prefix); every field has a working default so a zero config
// still yields a fully deterministic pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level vizsel configuration.
type Config struct {
	// Workspace is the base directory for logs and caches.
	Workspace string `yaml:"workspace"`

	// CatalogPath optionally overrides the built-in variant catalog with a YAML file.
	CatalogPath string `yaml:"catalog_path"`

	Logging   LoggingConfig   `yaml:"logging"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// EmbeddingConfig configures the embedding backend used by the semantic tie-breaker.
type EmbeddingConfig struct {
	// Provider: "" (disabled), "ollama" or "genai"
	Provider string `yaml:"provider"`

	OllamaEndpoint string `yaml:"ollama_endpoint"` // Default: "http://localhost:11434"
	OllamaModel    string `yaml:"ollama_model"`    // Default: "embeddinggemma"

	GenAIAPIKey string `yaml:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model"` // Default: "gemini-embedding-001"

	// CachePath is an optional sqlite file for persisting corpus embeddings
	// across process restarts. Empty disables the persistent cache.
	CachePath string `yaml:"cache_path"`
}

// ReasoningConfig configures the LLM used for the reasoned tie-break.
type ReasoningConfig struct {
	// Enabled is the explicit kill-switch; false makes the layer a no-op.
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`   // Default: "gemini-2.0-flash"
	Timeout string `yaml:"timeout"` // Default: "30s"
}

// PipelineConfig carries the selection thresholds and executor choice.
type PipelineConfig struct {
	// AmbiguityGap: escalate past plain ranking when top-second gap is below this.
	AmbiguityGap float64 `yaml:"ambiguity_gap"`

	// MinTopScore: escalate when the top composite score is below this.
	MinTopScore float64 `yaml:"min_top_score"`

	// SemanticBlend is the semantic share of the blended score (composite gets 1-x).
	SemanticBlend float64 `yaml:"semantic_blend"`

	// ReasoningBonus is added to confidence when the LLM pick survives validation.
	ReasoningBonus float64 `yaml:"reasoning_bonus"`

	// UseGraphEngine selects the declarative graph executor; false runs the
	// sequential chain executor instead. Both produce identical results.
	UseGraphEngine bool `yaml:"use_graph_engine"`

	// SemanticEnabled gates the whole semantic tie-break layer.
	SemanticEnabled bool `yaml:"semantic_enabled"`

	// SemanticStrategy: "auto" tries strategies in priority order, "lexical"
	// forces the model-free TF-IDF path.
	SemanticStrategy string `yaml:"semantic_strategy"`

	// BackendCooldown throttles reconnection probing after a backend failure.
	BackendCooldown string `yaml:"backend_cooldown"` // Default: "60s"
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Workspace: ".",
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
		Embedding: EmbeddingConfig{
			Provider:       "",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "embeddinggemma",
			GenAIModel:     "gemini-embedding-001",
		},
		Reasoning: ReasoningConfig{
			Enabled: false,
			Model:   "gemini-2.0-flash",
			Timeout: "30s",
		},
		Pipeline: DefaultPipeline(),
	}
}

// DefaultPipeline returns the normative pipeline thresholds.
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		AmbiguityGap:     0.10,
		MinTopScore:      0.45,
		SemanticBlend:    0.25,
		ReasoningBonus:   0.15,
		UseGraphEngine:   true,
		SemanticEnabled:  true,
		SemanticStrategy: "auto",
		BackendCooldown:  "60s",
	}
}

// Load reads a YAML config file, applies defaults for missing fields,
// then applies environment overrides. A missing file is not an error:
// defaults plus environment are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override file settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("VIZSEL_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv("VIZSEL_CATALOG_PATH"); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv("VIZSEL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("VIZSEL_EMBEDDING_PROVIDER"); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv("VIZSEL_GENAI_API_KEY"); v != "" {
		c.Embedding.GenAIAPIKey = v
		if c.Reasoning.APIKey == "" {
			c.Reasoning.APIKey = v
		}
	}
	if v := os.Getenv("VIZSEL_REASONING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Reasoning.Enabled = b
		}
	}
	if v := os.Getenv("VIZSEL_SEMANTIC_STRATEGY"); v != "" {
		c.Pipeline.SemanticStrategy = v
	}
}

// fillDefaults backfills zero values that YAML may have blanked out.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Workspace == "" {
		c.Workspace = def.Workspace
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Embedding.OllamaEndpoint == "" {
		c.Embedding.OllamaEndpoint = def.Embedding.OllamaEndpoint
	}
	if c.Embedding.OllamaModel == "" {
		c.Embedding.OllamaModel = def.Embedding.OllamaModel
	}
	if c.Embedding.GenAIModel == "" {
		c.Embedding.GenAIModel = def.Embedding.GenAIModel
	}
	if c.Reasoning.Model == "" {
		c.Reasoning.Model = def.Reasoning.Model
	}
	if c.Reasoning.Timeout == "" {
		c.Reasoning.Timeout = def.Reasoning.Timeout
	}
	if c.Pipeline.AmbiguityGap == 0 {
		c.Pipeline.AmbiguityGap = def.Pipeline.AmbiguityGap
	}
	if c.Pipeline.MinTopScore == 0 {
		c.Pipeline.MinTopScore = def.Pipeline.MinTopScore
	}
	if c.Pipeline.SemanticBlend == 0 {
		c.Pipeline.SemanticBlend = def.Pipeline.SemanticBlend
	}
	if c.Pipeline.ReasoningBonus == 0 {
		c.Pipeline.ReasoningBonus = def.Pipeline.ReasoningBonus
	}
	if c.Pipeline.SemanticStrategy == "" {
		c.Pipeline.SemanticStrategy = def.Pipeline.SemanticStrategy
	}
	if c.Pipeline.BackendCooldown == "" {
		c.Pipeline.BackendCooldown = def.Pipeline.BackendCooldown
	}
}

// ReasoningTimeout parses the reasoning timeout, falling back to 30s.
func (c *Config) ReasoningTimeout() time.Duration {
	d, err := time.ParseDuration(c.Reasoning.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Cooldown parses the backend cooldown window, falling back to 60s.
func (c *Config) Cooldown() time.Duration {
	d, err := time.ParseDuration(c.Pipeline.BackendCooldown)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
