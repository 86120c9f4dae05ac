// Package logging builds the slog handlers used by the mfext CLI and servers
// and provides the periodic memory monitor.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// DefaultMonitorInterval is how often MonitorMemory logs heap usage.
const DefaultMonitorInterval = 5 * time.Minute

// Options configures the handler built by New.
type Options struct {
	// Level is the minimum level logged.
	Level slog.Level

	// JSON selects a JSON handler instead of the colored console handler.
	JSON bool

	// NoColor disables ANSI colors in console output.
	NoColor bool
}

// New returns a logger writing to w. Attributes attached to a context with
// slogctx.With are added to every record logged with that context.
func New(w io.Writer, opts Options) *slog.Logger {
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      opts.Level,
			TimeFormat: "15:04:05.000",
			NoColor:    opts.NoColor,
		})
	}
	return slog.New(slogctx.NewHandler(h, nil))
}

// Setup installs a logger built by New as the slog default and returns a
// context carrying it.
func Setup(ctx context.Context, w io.Writer, opts Options) (context.Context, *slog.Logger) {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return slogctx.NewCtx(ctx, logger), logger
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// MemoryUsage is a snapshot of the Go runtime's memory statistics.
type MemoryUsage struct {
	HeapUsed  uint64 `json:"heapUsed"`
	HeapTotal uint64 `json:"heapTotal"`
	Sys       uint64 `json:"sys"`
	NumGC     uint32 `json:"numGC"`
}

// ReadMemory returns the current memory usage.
func ReadMemory() MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemoryUsage{
		HeapUsed:  ms.HeapAlloc,
		HeapTotal: ms.HeapSys,
		Sys:       ms.Sys,
		NumGC:     ms.NumGC,
	}
}

// LogValue renders byte counts in human readable form.
func (m MemoryUsage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("heap_used", humanize.Bytes(m.HeapUsed)),
		slog.String("heap_total", humanize.Bytes(m.HeapTotal)),
		slog.String("sys", humanize.Bytes(m.Sys)),
		slog.Uint64("num_gc", uint64(m.NumGC)),
	)
}

// MonitorMemory logs memory usage every interval until ctx is done.
func MonitorMemory(ctx context.Context, logger *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("memory usage", "memory", ReadMemory())
		}
	}
}
