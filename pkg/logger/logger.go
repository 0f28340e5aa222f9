// Package logger provides a colorized slog.Handler: warnings in yellow,
// errors in red, and persistence-related info lines in green so a scrolling
// terminal highlights the ingestion pipeline's storage writes.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Logger is a thin wrapper around *slog.Logger; embedding it gives callers
// Debug/Info/Warn/Error with the usual slog signatures.
type Logger struct {
	*slog.Logger
}

// NewDefaultLogger returns a Logger writing colorized output to stdout at
// the given minimum level.
func NewDefaultLogger(level slog.Level) *Logger {
	return NewLogger(os.Stdout, level)
}

// NewLogger returns a Logger writing colorized output to w at the given
// minimum level.
func NewLogger(w io.Writer, level slog.Level) *Logger {
	handler := &colorHandler{w: w, level: level}
	return &Logger{Logger: slog.New(handler)}
}

// persistKeywords marks info-level lines describing storage writes so the
// demo and the ingestion pipeline's own logging stand out from routine
// request logs.
var persistKeywords = []string{"persist", "database", "storage"}

type colorHandler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
	group string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	line := formatLine(r, h.attrs, h.group)

	switch {
	case r.Level >= slog.LevelError:
		line = color.RedString(line)
	case r.Level >= slog.LevelWarn:
		line = color.YellowString(line)
	case r.Level == slog.LevelInfo && mentionsPersistence(r.Message):
		line = color.GreenString(line)
	}

	_, err := fmt.Fprintln(h.w, line)
	return err
}

func mentionsPersistence(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range persistKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func formatLine(r slog.Record, attrs []slog.Attr, group string) string {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		key := a.Key
		if group != "" {
			key = group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
		return true
	}
	for _, a := range attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	return b.String()
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &colorHandler{w: h.w, level: h.level, attrs: merged, group: h.group}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &colorHandler{w: h.w, level: h.level, attrs: h.attrs, group: group}
}
