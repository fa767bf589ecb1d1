package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis ok", func(*Config) {}, ""},
		{"valkey alias", func(c *Config) { c.Database.Driver = "valkey" }, ""},
		{"redis missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs is required"},
		{"postgres ok", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.DSN = "postgres://localhost/learnora"
		}, ""},
		{"postgres missing dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn is required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, `got "sqlite"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidate_RetrievalBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.RoadmapK = 500
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "roadmap_k") {
		t.Fatalf("expected roadmap_k error, got %v", err)
	}

	cfg = validConfig()
	cfg.Retrieval.RoadmapSteps = 51
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "roadmap_steps") {
		t.Fatalf("expected roadmap_steps error, got %v", err)
	}
}

func TestValidate_FailureRatio(t *testing.T) {
	cfg := validConfig()
	cfg.Resilience.FailureRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for failure ratio above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 30 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("cors origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("driver = %s", cfg.Database.Driver)
	}
	if cfg.Database.HNSWM != 16 || cfg.Database.HNSWEFConstruct != 200 {
		t.Errorf("hnsw defaults = %d/%d", cfg.Database.HNSWM, cfg.Database.HNSWEFConstruct)
	}
	if cfg.Retrieval.SearchK != 10 || cfg.Retrieval.RoadmapK != 25 ||
		cfg.Retrieval.RoadmapSteps != 5 || cfg.Retrieval.FishboneK != 25 {
		t.Errorf("retrieval defaults = %+v", cfg.Retrieval)
	}
	if cfg.Resilience.MaxAttempts != 3 || cfg.Resilience.Multiplier != 2 {
		t.Errorf("resilience defaults = %+v", cfg.Resilience)
	}
	if !cfg.Embedding.CacheOn() || !cfg.Resilience.BreakerOn() {
		t.Error("cache and breaker should default to on")
	}
	if cfg.RateLimit.Requests != 0 {
		t.Error("rate limiting should be off by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	off := false
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 3},
		Database:   DatabaseConfig{Driver: "postgres", MaxConns: 4},
		Embedding:  EmbeddingConfig{Model: "bge-small", CacheEnabled: &off},
		Retrieval:  RetrievalConfig{SearchK: 7},
		Resilience: ResilienceConfig{MaxAttempts: 1},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 3 || cfg.Database.Driver != "postgres" || cfg.Database.MaxConns != 4 {
		t.Errorf("explicit values overwritten: %+v %+v", cfg.HTTP, cfg.Database)
	}
	if cfg.Embedding.Model != "bge-small" || cfg.Embedding.CacheOn() {
		t.Errorf("embedding overwritten: %+v", cfg.Embedding)
	}
	if cfg.Retrieval.SearchK != 7 || cfg.Resilience.MaxAttempts != 1 {
		t.Error("retrieval/resilience overwritten")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEARNORA_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${LEARNORA_TEST_PORT}\nkey: ${LEARNORA_TEST_MISSING:-fallback}\nnone: ${LEARNORA_TEST_MISSING}")))
	want := "port: 9090\nkey: fallback\nnone: "
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("LEARNORA_TEST_DSN", "postgres://db/learnora")
	path := filepath.Join(t.TempDir(), "test.yaml")
	data := `
http:
  port: 8000
database:
  driver: postgres
  dsn: ${LEARNORA_TEST_DSN}
embedding:
  model: text-embedding-3-small
  dimensions: 384
cors:
  allowed_origins: ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Database.DSN != "postgres://db/learnora" {
		t.Errorf("dsn = %s", cfg.Database.DSN)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions = %d", cfg.Embedding.Dimensions)
	}
	if cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Retrieval.FishboneK != 25 {
		t.Errorf("defaults not applied: %+v", cfg.Retrieval)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8000\n")); err == nil {
		t.Fatal("expected validation error for missing addrs")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("default env = %s", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("env = %s", GetEnv())
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			cfg, err := Load(env)
			if err != nil {
				t.Fatalf("Load(%s): %v", env, err)
			}
			if cfg.HTTP.Port == 0 || cfg.Retrieval.RoadmapSteps != 5 {
				t.Errorf("unexpected config: %+v", cfg)
			}
		})
	}
}
