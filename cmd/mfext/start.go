package main

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/internal/config"
	"github.com/kyori-mfv/mfext/internal/dev"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/pkg/server"
)

func startCmd(g *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "start [rsc|ssr|both]",
		Short: "Run the built server",
		Long: `Run the server binary produced by mfext build.

  both  documents and component streams from one process on the SSR port (default)
  rsc   the RSC server of a two-process deployment
  ssr   the SSR server of a two-process deployment, proxying /rsc to the RSC server

Examples:
  mfext start
  mfext start rsc & mfext start ssr`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"rsc", "ssr", "both"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			mode, err := server.ParseMode(name)
			if err != nil {
				return mferrors.New("E144").WithDetail("Got " + strconv.Quote(name))
			}

			ctx, cfg, err := loadProject(cmd, g, nil)
			if err != nil {
				return err
			}
			if err := checkBuild(cfg); err != nil {
				return err
			}

			serveArgs := []string{"serve", string(mode), "--dir", cfg.Root()}
			if port != 0 {
				serveArgs = append(serveArgs, "--port", strconv.Itoa(port))
			}
			if host != "" {
				serveArgs = append(serveArgs, "--host", host)
			}
			if g.logLevel != "" {
				serveArgs = append(serveArgs, "--log-level", g.logLevel)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			slogctx.FromCtx(ctx).Info("starting server", "component", "cli", "mode", string(mode), "binary", cfg.ServerBinaryPath())
			p := dev.NewProcess(dev.ProcessConfig{
				Binary: cfg.ServerBinaryPath(),
				Args:   serveArgs,
				Dir:    cfg.Root(),
			})
			return p.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from "+config.ConfigFileName+")")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from "+config.ConfigFileName+")")
	return cmd
}

// checkBuild reports E141 when the build output, the route manifest or the
// server binary is missing.
func checkBuild(cfg *config.Config) error {
	for _, p := range []string{cfg.OutputPath(), cfg.ManifestPath(), cfg.ServerBinaryPath()} {
		if _, err := os.Stat(p); err != nil {
			return mferrors.New("E141").
				WithDetail(p + " does not exist").
				WithSuggestion("Run 'mfext build' first")
		}
	}
	return nil
}
