package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Ingest.ParallelFiles != 8 {
		t.Fatalf("expected default parallel_files 8, got %d", cfg.Ingest.ParallelFiles)
	}
	if cfg.Search.Enabled {
		t.Fatal("expected search disabled by default")
	}
	if !cfg.CircuitBreaker.Enabled {
		t.Fatal("expected circuit breaker enabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	resetViper(t)

	envs := map[string]string{
		"PORT":              "9090",
		"CONNECTION_URL":    "10.0.0.1:9042",
		"DATACENTER":        "dc2",
		"SCHEMA_FILE":       "/etc/graphsvc/schema.cql",
		"CONCURRENCY_LIMIT": "40",
		"INGEST_BUCKET":     "my-bucket",
		"INGEST_REGION":     "us-west-2",
		"PARALLEL_FILES":    "16",
		"ELASTICSEARCH_URL": "http://es:9200",
	}
	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.ConnectionURL != "10.0.0.1:9042" {
		t.Fatalf("expected overridden connection url, got %q", cfg.Database.ConnectionURL)
	}
	if cfg.Database.Datacenter != "dc2" {
		t.Fatalf("expected overridden datacenter, got %q", cfg.Database.Datacenter)
	}
	if cfg.Database.ConcurrencyLimit != 40 {
		t.Fatalf("expected overridden concurrency limit, got %d", cfg.Database.ConcurrencyLimit)
	}
	if cfg.Ingest.Bucket != "my-bucket" {
		t.Fatalf("expected overridden bucket, got %q", cfg.Ingest.Bucket)
	}
	if cfg.Ingest.Region != "us-west-2" {
		t.Fatalf("expected overridden region, got %q", cfg.Ingest.Region)
	}
	if cfg.Ingest.ParallelFiles != 16 {
		t.Fatalf("expected overridden parallel files, got %d", cfg.Ingest.ParallelFiles)
	}
	if cfg.Search.URL != "http://es:9200" {
		t.Fatalf("expected overridden elasticsearch url, got %q", cfg.Search.URL)
	}
}

func TestLoadEnvOverrideIgnoresInvalidInt(t *testing.T) {
	resetViper(t)
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port to survive invalid override, got %d", cfg.Server.Port)
	}
}

func init() {
	// Load() relies on viper's package-level default instance and on the
	// environment; tests must not leak either across cases.
	_ = os.Unsetenv("PORT")
}
