// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (PERSONASIM_* prefix, DATABASE_URL)
//  2. Config file (~/.personasim/config.yaml)
//  3. Default values
//
// Categories:
//   - AI: model and embedder selection, temperature
//   - Storage: PostgreSQL connection (storage.go)
//   - Simulation: persona counts, date range, concurrency caps
//   - Ingestion: batch size, worker pool, embedding rate limit
//   - Output: decision table, plot and cache file locations
//
// Validation lives in validation.go and uses sentinel errors so callers can
// check failure categories with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates the OpenAI API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidTemperature indicates the temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidConcurrency indicates a concurrency cap is out of range.
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidBatchSize indicates the ingestion batch size is out of range.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid top k")

	// ErrInvalidDateRange indicates the simulation date range is malformed.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// Defaults for the simulation pipeline. The LLM concurrency and the
// retrieval worker count are independent knobs: the first bounds in-flight
// model calls, the second bounds simultaneous vector-store queries.
const (
	DefaultModelName     = "gpt-4o-mini"
	DefaultEmbedderModel = "text-embedding-3-small"

	// DefaultConcurrency caps simultaneously in-flight LLM calls.
	DefaultConcurrency = 100

	// DefaultRetrievalWorkers caps simultaneous vector-store queries.
	DefaultRetrievalWorkers = 8

	// DefaultIngestWorkers is deliberately small to respect embedding
	// provider rate limits during bulk ingestion.
	DefaultIngestWorkers = 3

	DefaultBatchSize       = 512
	DefaultTopK            = 5
	DefaultPersonasPerType = 13
)

// Config stores application configuration.
type Config struct {
	// AI model configuration
	ModelName     string  `mapstructure:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model"`
	Temperature   float32 `mapstructure:"temperature"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// Simulation configuration
	Concurrency      int    `mapstructure:"concurrency"`
	RetrievalWorkers int    `mapstructure:"retrieval_workers"`
	TopK             int    `mapstructure:"top_k"`
	PersonasPerType  int    `mapstructure:"personas_per_type"`
	StartDate        string `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate          string `mapstructure:"end_date"`   // YYYY-MM-DD
	DateStride       int    `mapstructure:"date_stride"`

	// Ingestion configuration
	BatchSize     int     `mapstructure:"batch_size"`
	IngestWorkers int     `mapstructure:"ingest_workers"`
	Language      string  `mapstructure:"language"`
	SourceTag     string  `mapstructure:"source_tag"`
	EmbedRPS      float64 `mapstructure:"embed_rps"`

	// File locations
	CacheFile    string `mapstructure:"cache_file"`
	DecisionsCSV string `mapstructure:"decisions_csv"`
	PlotDir      string `mapstructure:"plot_dir"`
	SteamGT      string `mapstructure:"steam_gt"`
	StockGT      string `mapstructure:"stock_gt"`

	// Observability (OTLP trace export; disabled when endpoint is empty)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load reads configuration from file, environment, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PERSONASIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine; a malformed one is not.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("temperature", 0.7)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "personasim")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db_name", "personasim")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("retrieval_workers", DefaultRetrievalWorkers)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("personas_per_type", DefaultPersonasPerType)
	v.SetDefault("start_date", "2020-12-10")
	v.SetDefault("end_date", "2021-03-31")
	v.SetDefault("date_stride", 7)

	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("ingest_workers", DefaultIngestWorkers)
	v.SetDefault("language", "english")
	v.SetDefault("source_tag", "steam")
	v.SetDefault("embed_rps", 2.0)

	v.SetDefault("cache_file", filepath.Join(dataDir(), "query_cache.json"))
	v.SetDefault("decisions_csv", filepath.Join(dataDir(), "decisions.csv"))
	v.SetDefault("plot_dir", filepath.Join(dataDir(), "plots"))
	v.SetDefault("steam_gt", filepath.Join(dataDir(), "ground_truth_steam.csv"))
	v.SetDefault("stock_gt", filepath.Join(dataDir(), "ground_truth_stock.csv"))

	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "personasim")
}

// configDir returns ~/.personasim, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".personasim")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// dataDir is where run artifacts land by default. Falls back to the working
// directory when the home directory cannot be resolved.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "datasets"
	}
	return filepath.Join(home, ".personasim", "datasets")
}

// OpenAIKeySet reports whether the OpenAI API key is present in the
// environment. The genkit plugin reads OPENAI_API_KEY itself; this exists
// so commands can fail fast with a clear diagnostic before initializing.
func OpenAIKeySet() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}
