package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docinsight API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Upload    UploadConfig    `yaml:"upload"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
	// JWTSecret signs user access tokens. Empty disables /auth.
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
	// RequireLogin rejects anonymous /api requests.
	RequireLogin bool `yaml:"require_login"`
}

// minJWTSecretBytes matches the HS256 key size.
const minJWTSecretBytes = 32

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store (valkey) connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds the document catalog connection settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string       `yaml:"api_key"`
	BaseURL    string       `yaml:"base_url"`
	Model      string       `yaml:"model"`
	Dimensions int          `yaml:"dimensions"`
	Cache      bool         `yaml:"cache"`
	CacheTTLH  int          `yaml:"cache_ttl_hours"`
	Budget     BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps embedding tokens per UTC day. A zero limit disables the cap.
type BudgetConfig struct {
	DailyTokens int64  `yaml:"daily_tokens"`
	Action      string `yaml:"action"` // warn (default), reject
}

// LLMConfig enumerates chat-completion providers and how to pick between them.
type LLMConfig struct {
	Strategy  string              `yaml:"strategy"` // round_robin (default), random
	Providers []LLMProviderConfig `yaml:"providers"`
}

// LLMProviderConfig describes one OpenAI-compatible chat provider.
type LLMProviderConfig struct {
	Name    string `yaml:"name"`
	Tier    string `yaml:"tier"` // fast, general
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// RAGConfig holds retrieval and generation settings.
type RAGConfig struct {
	TopK           int     `yaml:"top_k"`
	Temperature    float32 `yaml:"temperature"`
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	DefaultSamples int     `yaml:"default_samples"`
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxSizeMB int `yaml:"max_size_mb"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	// LLM calls dominate request latency.
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Postgres.MaxConns <= 0 {
		c.Postgres.MaxConns = 4
	}
	if c.Index.Name == "" {
		c.Index.Name = "chunks"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "docinsight:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.CacheTTLH <= 0 {
		c.Embedding.CacheTTLH = 168
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = "warn"
	}
	if c.LLM.Strategy == "" {
		c.LLM.Strategy = "round_robin"
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = 1000
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = 200
	}
	if c.RAG.DefaultSamples <= 0 {
		c.RAG.DefaultSamples = 20
	}
	if c.Upload.MaxSizeMB <= 0 {
		c.Upload.MaxSizeMB = 50
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		c.Auth.TokenTTLMinutes = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf(
			"rag.chunk_overlap (%d) must be smaller than rag.chunk_size (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize,
		)
	}
	if c.RAG.Temperature < 0 || c.RAG.Temperature > 2 {
		return fmt.Errorf("rag.temperature must be between 0 and 2, got %v", c.RAG.Temperature)
	}
	if c.Embedding.Budget.DailyTokens < 0 {
		return fmt.Errorf("embedding.budget.daily_tokens must not be negative")
	}
	switch c.Embedding.Budget.Action {
	case "warn", "reject":
		// ok
	default:
		return fmt.Errorf("embedding.budget.action must be \"warn\" or \"reject\", got %q", c.Embedding.Budget.Action)
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < minJWTSecretBytes {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretBytes)
	}
	if c.Auth.RequireLogin && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.require_login needs auth.jwt_secret")
	}
	switch c.LLM.Strategy {
	case "round_robin", "random":
		// ok
	default:
		return fmt.Errorf("llm.strategy must be \"round_robin\" or \"random\", got %q", c.LLM.Strategy)
	}
	for i, p := range c.LLM.Providers {
		if p.Name == "" {
			return fmt.Errorf("llm.providers[%d].name is required", i)
		}
		switch p.Tier {
		case "fast", "general":
			// ok
		default:
			return fmt.Errorf("llm.providers.%s.tier must be \"fast\" or \"general\", got %q", p.Name, p.Tier)
		}
		if p.Model == "" {
			return fmt.Errorf("llm.providers.%s.model is required", p.Name)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests and `go run` from subdirectories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
