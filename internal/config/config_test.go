package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/kyori-mfv/mfext/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.SSRPort != DefaultSSRPort {
		t.Errorf("Server.SSRPort = %d, want %d", cfg.Server.SSRPort, DefaultSSRPort)
	}
	if cfg.Server.RSCPort != DefaultRSCPort {
		t.Errorf("Server.RSCPort = %d, want %d", cfg.Server.RSCPort, DefaultRSCPort)
	}
	if cfg.Server.RSCURL != "http://localhost:5001" {
		t.Errorf("Server.RSCURL = %q", cfg.Server.RSCURL)
	}
	if cfg.Build.Output != DefaultOutput {
		t.Errorf("Build.Output = %q, want %q", cfg.Build.Output, DefaultOutput)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.ManifestPath(), filepath.Join(dir, "dist", "app-routes-manifest.json"); got != want {
		t.Errorf("ManifestPath() = %q, want %q", got, want)
	}
	if got, want := cfg.ClientManifestPath(), filepath.Join(dir, "dist", "client-manifest.json"); got != want {
		t.Errorf("ClientManifestPath() = %q, want %q", got, want)
	}
	if got, want := cfg.AppPath(), filepath.Join(dir, "app"); got != want {
		t.Errorf("AppPath() = %q, want %q", got, want)
	}
	if got, want := cfg.StaticOutputPath(), filepath.Join(dir, "dist", "public"); got != want {
		t.Errorf("StaticOutputPath() = %q, want %q", got, want)
	}
	if cfg.Server.StaticPrefix != "/static" {
		t.Errorf("StaticPrefix = %q, want /static", cfg.Server.StaticPrefix)
	}
	if !cfg.Server.Metrics {
		t.Error("Metrics should default to true")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	configJSON := `{
  "name": "playground",
  "paths": {"app": "src/app"},
  "build": {"output": "out"},
  "server": {"ssrPort": 8080, "rscPort": 8081, "rscUrl": "http://rsc.internal:8081", "staticPrefix": "assets/", "strictLayouts": true}
}
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "playground" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Server.SSRPort != 8080 || cfg.Server.RSCPort != 8081 {
		t.Errorf("ports = %d/%d, want 8080/8081", cfg.Server.SSRPort, cfg.Server.RSCPort)
	}
	if cfg.Server.RSCURL != "http://rsc.internal:8081" {
		t.Errorf("RSCURL = %q", cfg.Server.RSCURL)
	}
	if cfg.Server.StaticPrefix != "/assets" {
		t.Errorf("StaticPrefix = %q, want /assets", cfg.Server.StaticPrefix)
	}
	if !cfg.Server.StrictLayouts {
		t.Error("StrictLayouts should be true")
	}
	if got, want := cfg.AppPath(), filepath.Join(dir, "src", "app"); got != want {
		t.Errorf("AppPath() = %q, want %q", got, want)
	}
	if got, want := cfg.ServerBinaryPath(), filepath.Join(dir, "out", "server"); got != want {
		t.Errorf("ServerBinaryPath() = %q, want %q", got, want)
	}
	if cfg.Paths.Public != "public" {
		t.Errorf("Paths.Public = %q, want default", cfg.Paths.Public)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MFEXT_SERVER_SSRPORT", "9000")
	t.Setenv("MFEXT_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.SSRPort != 9000 {
		t.Errorf("SSRPort = %d, want 9000", cfg.Server.SSRPort)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.SSRAddress() != "localhost:9000" {
		t.Errorf("SSRAddress() = %q", cfg.SSRAddress())
	}
}

func TestLoadFlagOverride(t *testing.T) {
	dir := t.TempDir()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", 5000, "")
	if err := fs.Parse([]string{"--port", "7000"}); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	if err := l.BindFlag("server.ssrPort", fs.Lookup("port")); err != nil {
		t.Fatal(err)
	}
	cfg, err := l.Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.SSRPort != 7000 {
		t.Errorf("SSRPort = %d, want 7000", cfg.Server.SSRPort)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	var me *errors.MfextError
	if !stderrors.As(err, &me) || me.Code != "E120" {
		t.Fatalf("Load() error = %v, want E120", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port too large", func(c *Config) { c.Server.SSRPort = 70000 }, "E122"},
		{"shared port", func(c *Config) { c.Server.RSCPort = c.Server.SSRPort }, "E122"},
		{"bad rsc url", func(c *Config) { c.Server.RSCURL = "localhost:5001" }, "E123"},
		{"relative endpoint", func(c *Config) { c.Server.RSCEndpoint = "rsc" }, "E121"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var me *errors.MfextError
			if !stderrors.As(err, &me) || me.Code != tt.wantCode {
				t.Errorf("Validate() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "app", "dashboard")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	if g, _ := filepath.EvalSymlinks(got); g != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}
}
