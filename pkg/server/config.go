package server

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/kyori-mfv/mfext/internal/config"
	"github.com/kyori-mfv/mfext/pkg/loader"
)

// Mode selects which half of the application a process serves.
type Mode string

const (
	// ModeRSC serves component streams only.
	ModeRSC Mode = "rsc"

	// ModeSSR serves documents and proxies component streams to an RSC
	// server.
	ModeSSR Mode = "ssr"

	// ModeUnified serves documents and component streams from one process.
	ModeUnified Mode = "both"
)

// ParseMode parses a mode name. An empty name selects ModeUnified.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeUnified:
		return ModeUnified, nil
	case ModeRSC, ModeSSR:
		return Mode(s), nil
	}
	return "", fmt.Errorf("server: unknown mode %q (want rsc, ssr or both)", s)
}

// serverName is the name the process reports in logs and health checks.
func (m Mode) serverName() string {
	switch m {
	case ModeRSC:
		return "RSC API"
	case ModeSSR:
		return "SSR"
	default:
		return "Unified"
	}
}

// Config holds configuration for a Server.
type Config struct {
	// Mode selects the served routes.
	// Default: ModeUnified.
	Mode Mode

	// Host is the interface to listen on.
	// Default: "localhost".
	Host string

	// Port is the port to listen on. 0 picks a free port.
	// Default: 5000.
	Port int

	// ManifestPath is the route manifest file.
	ManifestPath string

	// ClientManifestPath maps client references to modules. A missing file
	// gives an empty manifest.
	ClientManifestPath string

	// StaticDir is served under StaticPrefix.
	StaticDir string

	// StaticPrefix is the URL prefix for static files.
	// Default: "/static".
	StaticPrefix string

	// RSCEndpoint is the component stream endpoint.
	// Default: "/rsc".
	RSCEndpoint string

	// RSCURL is the upstream RSC server in ModeSSR.
	// Default: "http://localhost:5001".
	RSCURL string

	// ClientScript is the client entry file name inside StaticDir.
	// Default: "client.js".
	ClientScript string

	// Importer resolves component identifiers. Usually the registry
	// generated by the build.
	Importer loader.Importer

	// StrictLayouts fails a request when a layout cannot be loaded instead
	// of rendering the page without it.
	StrictLayouts bool

	// Compress gzips HTML documents.
	Compress bool

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool

	// TrustedProxies lists IPs and CIDRs whose Forwarded and
	// X-Forwarded-For headers are believed when logging the client address.
	TrustedProxies []string

	// Watch reloads the manifests when they change on disk and tells
	// connected browsers to reload.
	Watch bool

	// ShutdownTimeout bounds graceful shutdown in Run.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MemoryInterval is the memory monitor period.
	// Default: 5 minutes.
	MemoryInterval time.Duration

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default ports and paths relative
// to the working directory.
func DefaultConfig() *Config {
	return &Config{
		Mode:               ModeUnified,
		Host:               config.DefaultHost,
		Port:               config.DefaultSSRPort,
		ManifestPath:       "dist/app-routes-manifest.json",
		ClientManifestPath: "dist/client-manifest.json",
		StaticDir:          "dist/public",
		StaticPrefix:       config.DefaultStaticPrefix,
		RSCEndpoint:        config.DefaultRSCEndpoint,
		RSCURL:             "http://localhost:" + strconv.Itoa(config.DefaultRSCPort),
		ClientScript:       "client.js",
		Metrics:            true,
		ShutdownTimeout:    10 * time.Second,
	}
}

// FromProject builds a Config for mode from a project configuration.
func FromProject(cfg *config.Config, mode Mode) *Config {
	c := DefaultConfig()
	c.Mode = mode
	c.Host = cfg.Server.Host
	c.Port = cfg.Server.SSRPort
	if mode == ModeRSC {
		c.Port = cfg.Server.RSCPort
	}
	c.ManifestPath = cfg.ManifestPath()
	c.ClientManifestPath = cfg.ClientManifestPath()
	c.StaticDir = cfg.StaticOutputPath()
	c.StaticPrefix = cfg.Server.StaticPrefix
	c.RSCEndpoint = cfg.Server.RSCEndpoint
	c.RSCURL = cfg.Server.RSCURL
	c.StrictLayouts = cfg.Server.StrictLayouts
	c.Compress = cfg.Server.Compress
	c.Metrics = cfg.Server.Metrics
	c.TrustedProxies = cfg.Server.TrustedProxies
	if mode == ModeRSC && len(c.TrustedProxies) == 0 {
		// The SSR half proxies from the same machine by default.
		c.TrustedProxies = []string{"127.0.0.1", "::1"}
	}
	return c
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.TrustedProxies = append([]string(nil), c.TrustedProxies...)
	return &clone
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// applyDefaults fills zero fields from DefaultConfig.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.StaticPrefix == "" {
		c.StaticPrefix = d.StaticPrefix
	}
	if c.RSCEndpoint == "" {
		c.RSCEndpoint = d.RSCEndpoint
	}
	if c.RSCURL == "" {
		c.RSCURL = d.RSCURL
	}
	if c.ClientScript == "" {
		c.ClientScript = d.ClientScript
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
