package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the Learnora API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CORSConfig lists origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAgeSec      int      `yaml:"max_age_sec"`
}

// RateLimitConfig limits requests per client IP. Zero requests disables limiting.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"`
	MaxConns         int32    `yaml:"max_conns"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"` // 0 = no expiry
	CacheEnabled     *bool  `yaml:"cache_enabled"`
}

// CacheOn reports whether query embeddings are cached (default true).
func (e EmbeddingConfig) CacheOn() bool {
	return e.CacheEnabled == nil || *e.CacheEnabled
}

// ResilienceConfig tunes retries and the circuit breaker around the embedding provider.
type ResilienceConfig struct {
	MaxAttempts      int     `yaml:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier"`
	BreakerEnabled   *bool   `yaml:"breaker_enabled"`
	FailureRatio     float64 `yaml:"failure_ratio"`
	MinRequests      uint32  `yaml:"min_requests"`
	OpenTimeoutSec   int     `yaml:"open_timeout_sec"`
	HalfOpenMaxCalls uint32  `yaml:"half_open_max_calls"`
}

// BreakerOn reports whether the circuit breaker is enabled (default true).
func (r ResilienceConfig) BreakerOn() bool {
	return r.BreakerEnabled == nil || *r.BreakerEnabled
}

// RetrievalConfig holds default and maximum retrieval sizes.
type RetrievalConfig struct {
	SearchK      int `yaml:"search_k"`
	RoadmapK     int `yaml:"roadmap_k"`
	RoadmapSteps int `yaml:"roadmap_steps"`
	FishboneK    int `yaml:"fishbone_k"`
	MaxK         int `yaml:"max_k"`
	MaxSteps     int `yaml:"max_steps"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates the configuration at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration with ${VAR} expansion.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.CORS.MaxAgeSec <= 0 {
		c.CORS.MaxAgeSec = 300
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}

	c.applyDatabaseDefaults()
	c.applyEmbeddingDefaults()
	c.applyRetrievalDefaults()
}

func (c *Config) applyDatabaseDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.HNSWM <= 0 {
		c.Database.HNSWM = 16
	}
	if c.Database.HNSWEFConstruct <= 0 {
		c.Database.HNSWEFConstruct = 200
	}
}

func (c *Config) applyEmbeddingDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.Resilience.MaxAttempts <= 0 {
		c.Resilience.MaxAttempts = 3
	}
	if c.Resilience.InitialBackoffMs <= 0 {
		c.Resilience.InitialBackoffMs = 200
	}
	if c.Resilience.MaxBackoffMs <= 0 {
		c.Resilience.MaxBackoffMs = 2000
	}
	if c.Resilience.Multiplier <= 1 {
		c.Resilience.Multiplier = 2
	}
	if c.Resilience.FailureRatio <= 0 {
		c.Resilience.FailureRatio = 0.5
	}
	if c.Resilience.MinRequests == 0 {
		c.Resilience.MinRequests = 5
	}
	if c.Resilience.OpenTimeoutSec <= 0 {
		c.Resilience.OpenTimeoutSec = 30
	}
	if c.Resilience.HalfOpenMaxCalls == 0 {
		c.Resilience.HalfOpenMaxCalls = 1
	}
}

func (c *Config) applyRetrievalDefaults() {
	if c.Retrieval.SearchK <= 0 {
		c.Retrieval.SearchK = 10
	}
	if c.Retrieval.RoadmapK <= 0 {
		c.Retrieval.RoadmapK = 25
	}
	if c.Retrieval.RoadmapSteps <= 0 {
		c.Retrieval.RoadmapSteps = 5
	}
	if c.Retrieval.FishboneK <= 0 {
		c.Retrieval.FishboneK = 25
	}
	if c.Retrieval.MaxK <= 0 {
		c.Retrieval.MaxK = 100
	}
	if c.Retrieval.MaxSteps <= 0 {
		c.Retrieval.MaxSteps = 50
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative, got %d", c.RateLimit.Requests)
	}

	switch c.Database.Driver {
	case "redis", "valkey":
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"postgres\", got %q", c.Database.Driver)
	}

	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Resilience.FailureRatio > 1 {
		return fmt.Errorf("resilience.failure_ratio must be within (0, 1], got %g", c.Resilience.FailureRatio)
	}

	r := c.Retrieval
	for name, v := range map[string]int{
		"search_k": r.SearchK, "roadmap_k": r.RoadmapK, "fishbone_k": r.FishboneK,
	} {
		if v > r.MaxK {
			return fmt.Errorf("retrieval.%s (%d) exceeds retrieval.max_k (%d)", name, v, r.MaxK)
		}
	}
	if r.RoadmapSteps > r.MaxSteps {
		return fmt.Errorf("retrieval.roadmap_steps (%d) exceeds retrieval.max_steps (%d)", r.RoadmapSteps, r.MaxSteps)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
