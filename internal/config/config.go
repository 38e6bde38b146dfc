// Package config loads the service configuration from YAML with
// environment-driven defaults for the model backend.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ragflow/internal/llm"
)

// Config is the full service configuration. Zero values are filled with
// defaults after load, so a partial file is valid.
type Config struct {
	LLM      LLM      `yaml:"llm"`
	Embedder Embedder `yaml:"embedder"`
	Index    Index    `yaml:"index"`
	Pipeline Pipeline `yaml:"pipeline"`
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
}

// LLM selects the completion backend. Type defaults to the LLM_TYPE
// environment variable, then to ollama.
type LLM struct {
	Type    string `yaml:"type"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Embedder selects the vectorizer for indexing and retrieval. Type is
// "hashing", "ollama" or "openai"; hashing needs no external service.
type Embedder struct {
	Type      string `yaml:"type"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Dimension int    `yaml:"dimension"`
}

// Index selects the vector store: "memory" or "postgres".
type Index struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// Pipeline carries the stage tunables.
type Pipeline struct {
	TopK       int `yaml:"top_k"`
	RerankKeep int `yaml:"rerank_keep"`
}

// Server configures the HTTP front end.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	EmbedderHashing = "hashing"
	EmbedderOllama  = "ollama"
	EmbedderOpenAI  = "openai"

	IndexMemory   = "memory"
	IndexPostgres = "postgres"
)

// Default returns the configuration used when no file is given: local
// ollama backend, hashing embedder, in-memory index.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and fills unset fields with defaults.
// An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Type == "" {
		c.LLM.Type = string(llm.TypeFromEnv(llm.TypeOllama))
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Embedder.Type == "" {
		c.Embedder.Type = EmbedderHashing
	}
	if c.Embedder.APIKey == "" {
		c.Embedder.APIKey = c.LLM.APIKey
	}
	if c.Index.Type == "" {
		c.Index.Type = IndexMemory
	}
	if c.Index.DSN == "" {
		c.Index.DSN = os.Getenv("DATABASE_URL")
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.RerankKeep <= 0 {
		c.Pipeline.RerankKeep = 3
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Embedder.Type {
	case EmbedderHashing, EmbedderOllama, EmbedderOpenAI:
	default:
		return fmt.Errorf("unknown embedder type %q", c.Embedder.Type)
	}
	switch c.Index.Type {
	case IndexMemory:
	case IndexPostgres:
		if c.Index.DSN == "" {
			return fmt.Errorf("index type %q requires a dsn", c.Index.Type)
		}
	default:
		return fmt.Errorf("unknown index type %q", c.Index.Type)
	}
	return nil
}
