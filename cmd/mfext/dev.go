package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/build"
	"github.com/kyori-mfv/mfext/internal/config"
	"github.com/kyori-mfv/mfext/internal/dev"
)

func devCmd(g *globalFlags) *cobra.Command {
	var (
		port    int
		appPort int
		host    string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with live reload.

The dev server builds the project, runs the server binary in unified
mode behind a proxy, and rebuilds on change:

  • Go, config and go.mod changes rebuild everything and restart the server
  • public/ changes rerun the client step; stylesheets swap in place
  • build errors show as an overlay in the browser

Examples:
  mfext dev
  mfext dev --port=8080
  mfext dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := loadProject(cmd, g, map[string]string{
				"server.ssrPort": "port",
				"server.host":    "host",
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println()
			fmt.Println("  mfext dev")
			fmt.Println()

			srv := dev.NewServer(dev.ServerOptions{
				Config:  cfg,
				AppPort: appPort,
				OnBuildComplete: func(result *build.Result, err error) {
					if err == nil {
						success("Built in %s", result.Duration.Round(time.Millisecond))
					}
				},
				OnReload: func(clients int) {
					success("Reloaded %d browsers", clients)
				},
			})
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from "+config.ConfigFileName+")")
	cmd.Flags().IntVar(&appPort, "app-port", 0, "Port of the proxied server binary (default port+100)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from "+config.ConfigFileName+")")
	return cmd
}
