package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/internal/dev"
	"github.com/kyori-mfv/mfext/internal/logging"
	"github.com/kyori-mfv/mfext/pkg/middleware"
	"github.com/kyori-mfv/mfext/pkg/render"
)

// Server serves one mode of an application: component streams (ModeRSC),
// documents with a proxied stream endpoint (ModeSSR), or both in one process
// (ModeUnified).
type Server struct {
	config   *Config
	engine   *Engine
	metrics  *middleware.Metrics
	reloader *dev.ReloadServer
	handler  http.Handler
	logger   *slog.Logger
	started  time.Time

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a Server. It loads the manifests and assembles the router but
// does not listen.
func New(ctx context.Context, config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.Clone()
	}
	config.applyDefaults()
	if _, err := ParseMode(string(config.Mode)); err != nil {
		return nil, err
	}

	logger := config.Logger.With("component", "server", "mode", string(config.Mode))
	ctx = slogctx.NewCtx(ctx, logger)

	s := &Server{
		config:  config,
		logger:  logger,
		started: time.Now(),
	}
	if config.Metrics {
		s.metrics = middleware.NewMetrics()
	}
	if config.Watch {
		s.reloader = dev.NewReloadServer()
	}
	s.engine = NewEngine(ctx, config, s.metrics)

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

// routes assembles the router for the configured mode.
func (s *Server) routes() (http.Handler, error) {
	cfg := s.config
	name := cfg.Mode.serverName()

	r := chi.NewRouter()
	if tp := newTrustedProxies(cfg.TrustedProxies, s.logger); tp != nil {
		r.Use(realIP(tp))
	}
	r.Use(middleware.RequestLogger(name))
	r.Use(middleware.OpenTelemetry())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(chimw.Recoverer)

	rscURL := ""
	if cfg.Mode == ModeSSR {
		rscURL = cfg.RSCURL
	}
	r.Get("/health", healthHandler(name, s.started, s.Port, rscURL))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	if cfg.StaticDir != "" {
		r.Handle(cfg.StaticPrefix+"/*",
			http.StripPrefix(cfg.StaticPrefix, http.FileServer(http.Dir(cfg.StaticDir))))
	}

	var extra []render.ScriptTag
	if s.reloader != nil {
		r.Get(dev.ReloadPath, s.reloader.ServeHTTP)
		r.Handle(dev.ScriptPath, dev.ScriptHandler())
		extra = append(extra, render.ScriptTag{Src: dev.ScriptPath, Defer: true})
	}

	switch cfg.Mode {
	case ModeRSC:
		r.Handle(cfg.RSCEndpoint, NewRSCHandler(s.engine))
	case ModeSSR:
		upstream, err := url.Parse(cfg.RSCURL)
		if err != nil {
			return nil, errors.Errorf("parse RSC server url %q: %w", cfg.RSCURL, err)
		}
		r.Handle(cfg.RSCEndpoint, NewRSCProxy(upstream, s.metrics))
		r.Get("/*", s.documents(NewSSRHandler(s.engine, cfg, extra...)))
	case ModeUnified:
		r.Handle(cfg.RSCEndpoint, NewRSCHandler(s.engine))
		r.Get("/*", s.documents(NewSSRHandler(s.engine, cfg, extra...)))
	}
	return r, nil
}

// documents applies HTML-only middleware. Component streams are never
// compressed so chunks reach the client as they are flushed.
func (s *Server) documents(h http.Handler) http.HandlerFunc {
	if s.config.Compress {
		return gzhttp.GzipHandler(h)
	}
	return h.ServeHTTP
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Engine returns the render engine.
func (s *Server) Engine() *Engine {
	return s.engine
}

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (s *Server) Metrics() *middleware.Metrics {
	return s.metrics
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Addr returns the address the server listens on, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the bound port, or the configured port when stopped.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return addr.Port
		}
	}
	return s.config.Port
}

// Start binds the configured address and serves in the background. It
// returns ErrAlreadyRunning when called twice and ErrPortInUse when the
// address is taken.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return errors.WithStack(ErrAlreadyRunning)
	}

	addr := s.config.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			s.logger.Error(s.config.Mode.serverName()+" Server port conflict", "port", s.config.Port)
			return errors.Errorf("%w: %s", ErrPortInUse, addr)
		}
		return errors.Errorf("listen on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = slogctx.NewCtx(runCtx, s.logger)

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return runCtx },
	}
	done := make(chan struct{})

	s.httpServer = srv
	s.listener = ln
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped unexpectedly", "error", err)
		}
	}()
	go logging.MonitorMemory(runCtx, s.logger, s.config.MemoryInterval)
	if s.reloader != nil {
		go s.watch(runCtx)
	}

	s.logger.Info(s.config.Mode.serverName()+" Server started",
		"port", ln.Addr().(*net.TCPAddr).Port,
		"url", "http://"+ln.Addr().String(),
	)
	return nil
}

// Stop gracefully shuts the server down. Stopping a stopped server is a
// no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, cancel, done := s.httpServer, s.cancel, s.done
	s.httpServer, s.listener, s.cancel, s.done = nil, nil, nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	if s.reloader != nil {
		s.reloader.Close()
	}
	err := srv.Shutdown(ctx)
	cancel()
	if err != nil {
		s.logger.Error("Error stopping "+s.config.Mode.serverName()+" Server", "error", err)
		return errors.WithStack(err)
	}
	<-done
	s.logger.Info(s.config.Mode.serverName() + " Server stopped")
	return nil
}

// Run starts the server and blocks until ctx is done or the process receives
// SIGINT or SIGTERM, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	s.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// watch reloads the manifests when they change and tells connected browsers
// to reload.
func (s *Server) watch(ctx context.Context) {
	w := dev.NewWatcher(dev.WatcherConfig{
		Paths: []string{s.config.ManifestPath, s.config.ClientManifestPath, s.config.StaticDir},
	})
	w.OnChange(func(c dev.Change) {
		s.logger.Info("change detected", "path", c.Path, "type", c.Type.String())
		switch c.Type {
		case dev.ChangeManifest:
			s.engine.Reload(ctx)
			s.reloader.NotifyReload()
		case dev.ChangeCSS:
			s.reloader.NotifyCSS(s.staticURL(c.Path))
		default:
			s.reloader.NotifyReload()
		}
	})
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("watcher failed", "error", err)
	}
}

func (s *Server) staticURL(file string) string {
	rel, err := filepath.Rel(s.config.StaticDir, file)
	if err != nil {
		return file
	}
	return s.config.StaticPrefix + "/" + filepath.ToSlash(rel)
}
