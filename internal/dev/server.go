package dev

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/internal/build"
	"github.com/kyori-mfv/mfext/internal/config"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
)

// ScriptTag is injected into proxied HTML documents.
const ScriptTag = `<script src="` + ScriptPath + `" defer></script>`

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Port is the port browsers connect to. Defaults to the SSR port.
	Port int

	// AppPort is where the app binary listens. Defaults to Port+100.
	AppPort int

	// OnBuildComplete is called after every build attempt.
	OnBuildComplete func(result *build.Result, err error)

	// OnReload is called when browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development loop: it builds the project, runs the server
// binary in unified mode behind a proxy, rebuilds and restarts it on source
// changes, and reloads connected browsers.
type Server struct {
	config       *config.Config
	options      ServerOptions
	builder      *build.Builder
	process      *Process
	watcher      *Watcher
	reloadServer *ReloadServer
	changeCh     chan Change
	proxy        *httputil.ReverseProxy
	logger       *slog.Logger

	mu         sync.Mutex
	running    bool
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	if options.Port == 0 {
		options.Port = cfg.Server.SSRPort
	}
	if options.AppPort == 0 {
		options.AppPort = options.Port + 100
	}

	s := &Server{
		config:  cfg,
		options: options,
		builder: build.New(cfg, build.Options{}),
		process: NewProcess(ProcessConfig{
			Binary: cfg.ServerBinaryPath(),
			Args: []string{"serve", "both",
				"--host", "127.0.0.1",
				"--port", strconv.Itoa(options.AppPort),
			},
			Dir: cfg.Root(),
		}),
		watcher: NewWatcher(WatcherConfig{
			Paths:    CollectWatchPaths(cfg),
			Ignore:   DefaultIgnore,
			Debounce: 100 * time.Millisecond,
		}),
		reloadServer: NewReloadServer(),
		logger:       slog.Default().With("component", "dev"),
	}

	target := &url.URL{Scheme: "http", Host: net.JoinHostPort("127.0.0.1", strconv.Itoa(options.AppPort))}
	s.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
			pr.Out.Header.Del("Accept-Encoding")
		},
		FlushInterval:  -1,
		ModifyResponse: injectReloadScript,
		ErrorHandler:   s.appDown,
	}
	return s
}

// Handler returns the handler browsers talk to.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(ReloadPath, s.reloadServer.ServeHTTP)
	mux.Handle(ScriptPath, ScriptHandler())
	mux.Handle("/", s.proxy)
	return mux
}

// Start builds and runs the app and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	ctx = slogctx.NewCtx(ctx, s.logger)

	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.options.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.Stop()
		return errors.Errorf("listen on %s: %w", addr, err)
	}

	if err := s.rebuild(ctx, build.TargetAll); err == nil {
		if err := s.process.Start(ctx); err != nil {
			s.logger.Error("failed to start app", "error", err)
		}
	}

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})
	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("dev server running", "url", "http://"+ln.Addr().String(), "app_port", s.options.AppPort)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Addr returns the address the dev server listens on, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop stops the watcher, the app and the HTTP server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.watcher.Stop()
	s.process.Stop()
	s.reloadServer.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(ctx, changes)
		}
	}
}

// handleChanges rebuilds what a batch of changes affects. Anything outside
// the public directory needs a full rebuild and restart; public files only
// need the client step.
func (s *Server) handleChanges(ctx context.Context, changes []Change) {
	if len(changes) == 0 {
		return
	}

	full := false
	var css string
	for _, change := range changes {
		s.logger.Info("changed", "path", change.Path, "type", change.Type.String())
		if !isWithinDir(change.Path, s.config.PublicPath()) {
			full = true
		} else if change.Type == ChangeCSS && css == "" {
			css = change.Path
		}
	}

	if full {
		if err := s.rebuild(ctx, build.TargetAll); err != nil {
			return
		}
		if err := s.process.Restart(ctx); err != nil {
			s.logger.Error("failed to restart app", "error", err)
			return
		}
		s.waitForApp(ctx)
		s.notifyReload()
		return
	}

	if err := s.rebuild(ctx, build.TargetClient); err != nil {
		return
	}
	if css != "" && len(changes) == 1 {
		s.reloadServer.NotifyCSS(s.staticURL(css))
		s.logger.Info("CSS reloaded", "file", css)
		return
	}
	s.notifyReload()
}

// rebuild runs target, showing failures in the browser overlay.
func (s *Server) rebuild(ctx context.Context, target build.Target) error {
	res, err := s.builder.Run(ctx, target)
	if s.options.OnBuildComplete != nil {
		s.options.OnBuildComplete(res, err)
	}
	if err != nil {
		s.logger.Error("build failed", "target", string(target), "error", err)
		s.reloadServer.NotifyError(buildOutput(err))
		return err
	}
	s.logger.Info("built", "target", string(target), "duration", res.Duration.Round(time.Millisecond))
	s.reloadServer.ClearError()
	return nil
}

// waitForApp polls the app's health endpoint until it answers or a few
// seconds pass.
func (s *Server) waitForApp(ctx context.Context) {
	u := fmt.Sprintf("http://127.0.0.1:%d/health", s.options.AppPort)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return
		}
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (s *Server) notifyReload() {
	s.reloadServer.NotifyReload()
	clients := s.reloadServer.ClientCount()
	if s.options.OnReload != nil {
		s.options.OnReload(clients)
	}
	s.logger.Info("reloaded browsers", "clients", clients)
}

// staticURL maps a file in the public directory to its served URL.
func (s *Server) staticURL(file string) string {
	rel, err := filepath.Rel(s.config.PublicPath(), file)
	if err != nil {
		return file
	}
	return s.config.Server.StaticPrefix + "/" + filepath.ToSlash(rel)
}

// appDown answers while the app is not reachable, e.g. during a restart or
// after a failed build. The page reloads once the app is back.
func (s *Server) appDown(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug("app not reachable", "url", r.URL.String(), "error", err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>mfext dev</title></head>
<body style="font-family: system-ui; padding: 40px;">
<h1>Application Not Running</h1>
<p>The app server is not responding. It may still be starting, or the last build failed (check your terminal).</p>
<p>The page reloads when the app is ready.</p>
%s
</body>
</html>`, ScriptTag)
}

// injectReloadScript adds the reload script to HTML documents.
func injectReloadScript(resp *http.Response) error {
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()

	body = InjectScript(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return nil
}

// InjectScript inserts ScriptTag before </body>, before </html>, or at the
// end of doc.
func InjectScript(doc []byte) []byte {
	for _, marker := range [][]byte{[]byte("</body>"), []byte("</html>")} {
		if idx := bytes.LastIndex(doc, marker); idx != -1 {
			out := make([]byte, 0, len(doc)+len(ScriptTag))
			out = append(out, doc[:idx]...)
			out = append(out, ScriptTag...)
			return append(out, doc[idx:]...)
		}
	}
	return append(doc, ScriptTag...)
}

// buildOutput returns the text shown in the error overlay.
func buildOutput(err error) string {
	var me *mferrors.MfextError
	if errors.As(err, &me) {
		return me.FormatCompact()
	}
	return err.Error()
}

func isWithinDir(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	absDir = filepath.Clean(absDir)
	if absPath == absDir {
		return true
	}
	if !strings.HasSuffix(absDir, string(os.PathSeparator)) {
		absDir += string(os.PathSeparator)
	}
	return strings.HasPrefix(absPath, absDir)
}
