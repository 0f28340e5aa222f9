package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Log            LogConfig            `mapstructure:"log"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Ingest         IngestConfig         `mapstructure:"ingest"`
	Search         SearchConfig         `mapstructure:"search"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds wide-column store connection configuration, per
// spec §6's environment variable list.
type DatabaseConfig struct {
	ConnectionURL    string `mapstructure:"connection_url"`
	Datacenter       string `mapstructure:"datacenter"`
	ConcurrencyLimit int    `mapstructure:"concurrency_limit"`
	SchemaFile       string `mapstructure:"schema_file"`
}

// IngestConfig holds ingestion orchestrator configuration.
type IngestConfig struct {
	ParallelFiles int    `mapstructure:"parallel_files"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	LocalDir      string `mapstructure:"local_dir"`
}

// SearchConfig holds the Elasticsearch indexing collaborator's
// configuration, per spec §6.
type SearchConfig struct {
	URL             string `mapstructure:"url"`
	Enabled         bool   `mapstructure:"enabled"`
	BatchSize       int    `mapstructure:"batch_size"`
	NumShards       int    `mapstructure:"num_shards"`
	Index           string `mapstructure:"index"`
	RefreshInterval string `mapstructure:"refresh_interval"`
	SourceEnabled   bool   `mapstructure:"source_enabled"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
}

// TelemetryConfig holds the ingestion audit log's configuration.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for the storage gateway's
// circuit breaker.
type CircuitBreakerConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	MaxRequests uint32  `mapstructure:"max_requests"`
	Interval    int     `mapstructure:"interval"` // seconds
	Timeout     int     `mapstructure:"timeout"`  // seconds
	TripRatio   float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.connection_url", "127.0.0.1:9042")
	viper.SetDefault("database.concurrency_limit", 20)

	viper.SetDefault("ingest.parallel_files", 8)

	viper.SetDefault("search.enabled", false)
	viper.SetDefault("search.batch_size", 100)
	viper.SetDefault("search.num_shards", 1)
	viper.SetDefault("search.index", "nodes")
	viper.SetDefault("search.refresh_interval", "1s")
	viper.SetDefault("search.source_enabled", true)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.graphsvc/telemetry", home))
	}
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if url := os.Getenv("CONNECTION_URL"); url != "" {
		config.Database.ConnectionURL = url
	}
	if dc := os.Getenv("DATACENTER"); dc != "" {
		config.Database.Datacenter = dc
	}
	if schemaFile := os.Getenv("SCHEMA_FILE"); schemaFile != "" {
		config.Database.SchemaFile = schemaFile
	}
	if limit := os.Getenv("CONCURRENCY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			config.Database.ConcurrencyLimit = n
		}
	}

	if bucket := os.Getenv("INGEST_BUCKET"); bucket != "" {
		config.Ingest.Bucket = bucket
	}
	if region := os.Getenv("INGEST_REGION"); region != "" {
		config.Ingest.Region = region
	}
	if dir := os.Getenv("INGEST_LOCAL_DIR"); dir != "" {
		config.Ingest.LocalDir = dir
	}
	if parallel := os.Getenv("PARALLEL_FILES"); parallel != "" {
		if n, err := strconv.Atoi(parallel); err == nil {
			config.Ingest.ParallelFiles = n
		}
	}

	if esURL := os.Getenv("ELASTICSEARCH_URL"); esURL != "" {
		config.Search.URL = esURL
	}
	if user := os.Getenv("ELASTICSEARCH_USER"); user != "" {
		config.Search.User = user
	}
	if pass := os.Getenv("ELASTICSEARCH_PASSWORD"); pass != "" {
		config.Search.Password = pass
	}

	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
