package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewJSONCarriesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{JSON: true})

	ctx := slogctx.NewCtx(context.Background(), logger)
	ctx = slogctx.With(ctx, "request_id", "abc")
	slogctx.Info(ctx, "Started", "method", "GET")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "Started" {
		t.Errorf("msg = %v, want Started", rec["msg"])
	}
	if rec["request_id"] != "abc" {
		t.Errorf("request_id = %v, want abc", rec["request_id"])
	}
	if rec["method"] != "GET" {
		t.Errorf("method = %v, want GET", rec["method"])
	}
}

func TestNewConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: slog.LevelWarn, NoColor: true})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestReadMemory(t *testing.T) {
	m := ReadMemory()
	if m.HeapTotal == 0 || m.Sys == 0 {
		t.Errorf("ReadMemory() = %+v, want non-zero totals", m)
	}
	if m.LogValue().Kind() != slog.KindGroup {
		t.Error("LogValue should be a group")
	}
}

func TestMonitorMemoryStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{JSON: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		MonitorMemory(ctx, logger, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("MonitorMemory did not return after cancel")
	}
	if !strings.Contains(buf.String(), "memory usage") {
		t.Errorf("expected at least one memory record, got %q", buf.String())
	}
}
