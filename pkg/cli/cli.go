// Package cli is the command line of an application's server binary. The
// binary's main package passes the generated component registry:
//
//	func main() {
//	    cli.Serve(app.Components)
//	}
//
// and is then started as
//
//	server serve [rsc|ssr|both] [--port N] [--host H] [--watch]
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/config"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/internal/logging"
	"github.com/kyori-mfv/mfext/pkg/loader"
	"github.com/kyori-mfv/mfext/pkg/server"
)

// Serve runs the command line and exits the process with status 1 on
// failure.
func Serve(importer loader.Importer) {
	if err := NewCommand(importer).ExecuteContext(context.Background()); err != nil {
		mferrors.PrintError(err)
		os.Exit(1)
	}
}

// NewCommand returns the root command of a server binary.
func NewCommand(importer loader.Importer) *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Serve an mfext application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(importer))
	return root
}

// serveOptions are the flags of the serve command.
type serveOptions struct {
	dir      string
	host     string
	port     int
	watch    bool
	logLevel string
	logJSON  bool
}

func serveCmd(importer loader.Importer) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [rsc|ssr|both]",
		Short: "Start the RSC server, the SSR server, or both in one process",
		Long: `Start serving the application.

  rsc   component streams at /rsc
  ssr   HTML documents, with /rsc proxied to the RSC server
  both  documents and component streams from one process (default)`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"rsc", "ssr", "both"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ""
			if len(args) == 1 {
				mode = args[0]
			}
			srv, err := newServer(cmd, importer, mode, opts)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", ".", "Project directory")
	f.StringVar(&opts.host, "host", "", "Host to bind to (default from "+config.ConfigFileName+")")
	f.IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from "+config.ConfigFileName+")")
	f.BoolVar(&opts.watch, "watch", false, "Reload manifests on change and refresh browsers")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.BoolVar(&opts.logJSON, "log-json", false, "Log JSON instead of text")
	return cmd
}

// newServer resolves the configuration for mode and creates the server.
func newServer(cmd *cobra.Command, importer loader.Importer, mode string, opts serveOptions) (*server.Server, error) {
	m, err := server.ParseMode(mode)
	if err != nil {
		return nil, mferrors.New("E144").
			WithDetail("Got " + fmt.Sprintf("%q", mode)).
			Wrap(err)
	}

	l := config.NewLoader()
	for key, name := range map[string]string{
		"server.host": "host",
		"log.level":   "log-level",
		"log.json":    "log-json",
	} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := l.BindFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	cfg, err := l.Load(opts.dir)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, mferrors.New("E120").WithDetail(err.Error())
	}
	ctx, logger := logging.Setup(cmd.Context(), stderr(cmd), logging.Options{
		Level: level,
		JSON:  cfg.Log.JSON,
	})
	cmd.SetContext(ctx)

	sc := server.FromProject(cfg, m)
	if opts.port != 0 {
		sc.Port = opts.port
	}
	sc.Watch = opts.watch
	sc.Importer = importer
	sc.Logger = logger

	return server.New(ctx, sc)
}

func stderr(cmd *cobra.Command) io.Writer {
	if w := cmd.ErrOrStderr(); w != nil {
		return w
	}
	return os.Stderr
}
