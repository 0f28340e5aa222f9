package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/soundprediction/graphsvc/pkg/logger"
)

func TestLoggerRespectsMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, slog.LevelWarn)

	log.Debug("should not appear")
	log.Info("should not appear either")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below the minimum level, got %q", buf.String())
	}

	log.Warn("this should appear")
	if !strings.Contains(buf.String(), "this should appear") {
		t.Fatalf("expected warn message in output, got %q", buf.String())
	}
}

func TestLoggerIncludesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, slog.LevelInfo)

	log.Info("processing request", "ingestion_id", "abc-123")
	if !strings.Contains(buf.String(), "ingestion_id=abc-123") {
		t.Fatalf("expected attribute in output, got %q", buf.String())
	}
}
