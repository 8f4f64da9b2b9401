package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			APIKey: "test-key",
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_TopKDefaultExceedsMax(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Catalog.DefaultTopK = 200
	cfg.Catalog.MaxTopK = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_top_k exceeds max_top_k")
	}
}

func TestValidate_ScoreThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Catalog.ScoreThreshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for score threshold above 1")
	}
}

func TestValidate_MarketTemplateMissingQuery(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	cfg.Buckets.Markets = map[string][]BucketTemplate{
		"IN": {{Name: "Crime"}},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for market template without query")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected default model: %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.CacheTTLSec != 7*24*3600 {
		t.Errorf("expected CacheTTLSec=604800, got %d", cfg.Embedding.CacheTTLSec)
	}
	if cfg.Catalog.IndexName != "myuze-content" {
		t.Errorf("unexpected default index name: %q", cfg.Catalog.IndexName)
	}
	if cfg.Catalog.KeyPrefix != "playsearch:" {
		t.Errorf("unexpected default key prefix: %q", cfg.Catalog.KeyPrefix)
	}
	if cfg.Catalog.DefaultTopK != 50 {
		t.Errorf("expected DefaultTopK=50, got %d", cfg.Catalog.DefaultTopK)
	}
	if cfg.Catalog.MaxTopK != 100 {
		t.Errorf("expected MaxTopK=100, got %d", cfg.Catalog.MaxTopK)
	}
	if cfg.Catalog.ScoreThreshold != 0.7 {
		t.Errorf("expected ScoreThreshold=0.7, got %g", cfg.Catalog.ScoreThreshold)
	}
	if cfg.Catalog.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Catalog.HNSWM)
	}
	if cfg.Catalog.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Catalog.HNSWEFConstruct)
	}
	if cfg.Buckets.AssignThreshold != 0.3 {
		t.Errorf("expected AssignThreshold=0.3, got %g", cfg.Buckets.AssignThreshold)
	}
	if cfg.Buckets.DefaultMarket != "IN" {
		t.Errorf("expected DefaultMarket=IN, got %q", cfg.Buckets.DefaultMarket)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Catalog:  CatalogConfig{IndexName: "custom", KeyPrefix: "custom:", DefaultTopK: 10, MaxTopK: 20},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Catalog.IndexName != "custom" {
		t.Errorf("expected IndexName=custom, got %q", cfg.Catalog.IndexName)
	}
	if cfg.Catalog.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Catalog.KeyPrefix)
	}
	if cfg.Catalog.DefaultTopK != 10 {
		t.Errorf("expected DefaultTopK=10, got %d", cfg.Catalog.DefaultTopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PLAYSEARCH_TEST_VAR", "secret-value")

	in := []byte("api_key: ${PLAYSEARCH_TEST_VAR}\nport: ${PLAYSEARCH_UNSET:-8080}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret-value\nport: 8080\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestExpandEnvVars_UnsetWithoutDefault(t *testing.T) {
	os.Unsetenv("PLAYSEARCH_NO_SUCH_VAR")

	out := string(expandEnvVars([]byte("key: ${PLAYSEARCH_NO_SUCH_VAR}")))
	if out != "key: " {
		t.Errorf("expected empty substitution, got %q", out)
	}
}

func TestGetEnv_Default(t *testing.T) {
	t.Setenv("ENV", "")

	if env := GetEnv(); env != "local" {
		t.Errorf("expected local, got %q", env)
	}
}

func TestGetEnv_FromEnvironment(t *testing.T) {
	t.Setenv("ENV", "prod")

	if env := GetEnv(); env != "prod" {
		t.Errorf("expected prod, got %q", env)
	}
}
