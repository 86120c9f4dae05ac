package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	slogctx "github.com/veqryn/slog-context"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seenID string
	h := RequestLogger("RSC")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogctx.Info(r.Context(), "inside handler")
		seenID = w.Header().Get(RequestIDHeader)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/rsc?path=/dashboard", nil)
	req = req.WithContext(slogctx.NewCtx(req.Context(), logger))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seenID == "" || rec.Header().Get(RequestIDHeader) != seenID {
		t.Fatalf("request id header = %q, handler saw %q", rec.Header().Get(RequestIDHeader), seenID)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d log lines, want 3:\n%s", len(lines), buf.String())
	}

	var records []map[string]any
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatal(err)
		}
		records = append(records, rec)
	}

	if records[0]["msg"] != "RSC Request Started" || records[0]["url"] != "/rsc?path=/dashboard" {
		t.Errorf("first record = %v", records[0])
	}
	if records[1]["request_id"] != seenID {
		t.Errorf("handler record request_id = %v, want %s", records[1]["request_id"], seenID)
	}
	if records[2]["msg"] != "RSC Request Completed" || records[2]["status"] != float64(http.StatusTeapot) {
		t.Errorf("last record = %v", records[2])
	}
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	h := RequestLogger("SSR")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc123" {
		t.Errorf("request id = %q, want abc123", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/rsc", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/rsc?path=/x", "/a", "/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/rsc", "GET", "404")); got != 1 {
		t.Errorf("rsc 404 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/*", "GET", "200")); got != 2 {
		t.Errorf("catch-all 200 count = %v, want 2", got)
	}
}

func TestMetricsRecorders(t *testing.T) {
	m := NewMetrics(WithNamespace("test"))

	m.ComponentLoaded("a", false, nil)
	m.ComponentLoaded("a", true, nil)
	m.ComponentLoaded("b", false, errors.New("boom"))
	m.ObserveRender("ssr", time.Millisecond, nil)
	m.ObserveRender("ssr", time.Millisecond, errors.New("boom"))
	m.ProxyError()

	for result, want := range map[string]float64{"imported": 1, "cached": 1, "failed": 1} {
		if got := testutil.ToFloat64(m.componentLoads.WithLabelValues(result)); got != want {
			t.Errorf("component_loads_total{result=%q} = %v, want %v", result, got, want)
		}
	}
	if got := testutil.ToFloat64(m.renderErrors.WithLabelValues("ssr")); got != 1 {
		t.Errorf("render_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.proxyErrors); got != 1 {
		t.Errorf("rsc_proxy_errors_total = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "test_component_loads_total") {
		t.Errorf("metrics output missing namespace:\n%s", rec.Body.String())
	}
}

func TestOpenTelemetryCallsNext(t *testing.T) {
	called := false
	h := OpenTelemetry(
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, span := StartSpan(r.Context(), "render")
		EndSpan(span, errors.New("boom"))
	}))

	for _, path := range []string{"/health", "/rsc?path=/"} {
		called = false
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		if !called {
			t.Errorf("%s: next not called", path)
		}
	}

	if SpanFromContext(context.Background()) == nil {
		t.Error("SpanFromContext should never return nil")
	}
}
