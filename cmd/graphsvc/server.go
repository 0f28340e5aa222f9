package graphsvc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/soundprediction/graphsvc/pkg/config"
	"github.com/soundprediction/graphsvc/pkg/ingest"
	"github.com/soundprediction/graphsvc/pkg/logger"
	"github.com/soundprediction/graphsvc/pkg/search"
	"github.com/soundprediction/graphsvc/pkg/server"
	"github.com/soundprediction/graphsvc/pkg/server/handlers"
	"github.com/soundprediction/graphsvc/pkg/storage"
	"github.com/soundprediction/graphsvc/pkg/traversal"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the graphsvc HTTP server",
	Long: `Start the graphsvc HTTP server: ingests hierarchical graph documents into
a wide-column store as a flat row layout, and serves point reads and
depth-bounded traversals over the resulting graph.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.Log.Level))
	slog.SetDefault(logger.NewDefaultLogger(level).Logger)

	gw, err := storage.Open(storage.Config{
		ConnectionURL:    cfg.Database.ConnectionURL,
		Datacenter:       cfg.Database.Datacenter,
		SchemaFile:       cfg.Database.SchemaFile,
		ConcurrencyLimit: cfg.Database.ConcurrencyLimit,
		CircuitBreakerCfg: storage.CircuitBreakerConfig{
			Enabled:     cfg.CircuitBreaker.Enabled,
			MaxRequests: cfg.CircuitBreaker.MaxRequests,
			Interval:    time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:     time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			TripRatio:   cfg.CircuitBreaker.TripRatio,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open storage gateway: %w", err)
	}
	defer gw.Close()

	loader, err := buildLoader(cfg.Ingest)
	if err != nil {
		return fmt.Errorf("failed to build file loader: %w", err)
	}

	searchIndexer, err := search.New(context.Background(), cfg.Search)
	if err != nil {
		return fmt.Errorf("failed to initialize search indexer: %w", err)
	}

	orchestrator := ingest.New(loader, gw, searchIndexer, cfg.Ingest.ParallelFiles)
	traversalEngine := traversal.New(gw)

	srv := server.New(cfg,
		handlers.NewHealthHandler(gw),
		handlers.NewIngestHandler(orchestrator),
		handlers.NewNodeHandler(gw),
		handlers.NewTraversalHandler(traversalEngine),
	)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		slog.Info("server stopped gracefully")
		return nil
	}
}

// buildLoader returns an S3-backed FileLoader when a bucket is configured,
// falling back to a LocalFileLoader rooted at IngestConfig.LocalDir — the
// "dynamic trait object" seam from spec §9, resolved at startup instead of
// at runtime since the backing store doesn't change once the process is up.
func buildLoader(cfg config.IngestConfig) (ingest.FileLoader, error) {
	if cfg.Bucket == "" {
		dir := cfg.LocalDir
		if dir == "" {
			dir = "."
		}
		return ingest.NewLocalFileLoader(dir), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return ingest.NewS3Loader(client, cfg.Bucket), nil
}
