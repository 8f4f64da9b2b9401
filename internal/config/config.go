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

// Config holds the playsearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Buckets   BucketsConfig   `yaml:"buckets"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// CatalogConfig holds catalog index and search defaults.
type CatalogConfig struct {
	IndexName       string  `yaml:"index_name"`
	KeyPrefix       string  `yaml:"key_prefix"`
	EnsureIndex     bool    `yaml:"ensure_index"`
	DefaultTopK     int     `yaml:"default_top_k"`
	MaxTopK         int     `yaml:"max_top_k"`
	ScoreThreshold  float64 `yaml:"score_threshold"`
	HNSWM           int     `yaml:"hnsw_m"`
	HNSWEFConstruct int     `yaml:"hnsw_ef_construction"`
	TestProbeQuery  string  `yaml:"test_probe_query"`
}

// BucketsConfig holds bucket generation settings.
type BucketsConfig struct {
	AssignThreshold float64                     `yaml:"assign_threshold"`
	DefaultMarket   string                      `yaml:"default_market"`
	Markets         map[string][]BucketTemplate `yaml:"markets"`
}

// BucketTemplate is a predefined bucket query for a market.
type BucketTemplate struct {
	Name        string `yaml:"name"`
	ContentType string `yaml:"content_type"`
	Query       string `yaml:"query"`
	Reasoning   string `yaml:"reasoning"`
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
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.CacheTTLSec <= 0 {
		c.Embedding.CacheTTLSec = 7 * 24 * 3600
	}
	if c.Catalog.IndexName == "" {
		c.Catalog.IndexName = "myuze-content"
	}
	if c.Catalog.KeyPrefix == "" {
		c.Catalog.KeyPrefix = "playsearch:"
	}
	if c.Catalog.DefaultTopK <= 0 {
		c.Catalog.DefaultTopK = 50
	}
	if c.Catalog.MaxTopK <= 0 {
		c.Catalog.MaxTopK = 100
	}
	if c.Catalog.ScoreThreshold <= 0 {
		c.Catalog.ScoreThreshold = 0.7
	}
	if c.Catalog.HNSWM <= 0 {
		c.Catalog.HNSWM = 32
	}
	if c.Catalog.HNSWEFConstruct <= 0 {
		c.Catalog.HNSWEFConstruct = 400
	}
	if c.Catalog.TestProbeQuery == "" {
		c.Catalog.TestProbeQuery = "Hindi Bollywood entertainment"
	}
	if c.Buckets.AssignThreshold <= 0 {
		c.Buckets.AssignThreshold = 0.3
	}
	if c.Buckets.DefaultMarket == "" {
		c.Buckets.DefaultMarket = "IN"
	}
}

// Validate checks the configuration for correctness.
// Missing credentials here are fatal at startup: the service cannot
// reach its collaborators without them.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}
	if c.Catalog.DefaultTopK > c.Catalog.MaxTopK {
		return fmt.Errorf(
			"catalog.default_top_k (%d) must not exceed catalog.max_top_k (%d)",
			c.Catalog.DefaultTopK, c.Catalog.MaxTopK,
		)
	}
	if c.Catalog.ScoreThreshold > 1 {
		return fmt.Errorf("catalog.score_threshold must be in (0, 1], got %g", c.Catalog.ScoreThreshold)
	}
	if c.Buckets.AssignThreshold > 1 {
		return fmt.Errorf("buckets.assign_threshold must be in (0, 1], got %g", c.Buckets.AssignThreshold)
	}
	for market, templates := range c.Buckets.Markets {
		for i, tpl := range templates {
			if tpl.Name == "" {
				return fmt.Errorf("buckets.markets.%s[%d].name is required", market, i)
			}
			if tpl.Query == "" {
				return fmt.Errorf("buckets.markets.%s[%d].query is required", market, i)
			}
		}
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

	// 3. Fallback to ./config/
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
