package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mferrors "github.com/kyori-mfv/mfext/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		mferrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "mfext",
		Short: "Build and run App Router applications written in Go",
		Long: `mfext builds file-system routed Go applications and serves them as
server-rendered HTML plus a component stream for client navigation.

  mfext new shop        scaffold a project
  mfext dev             build, serve and reload on change
  mfext build           discover routes, build the client and the server
  mfext start           run the built server (rsc, ssr or both)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.dir, "dir", "C", ".", "Project directory")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newCmd(),
		devCmd(&g),
		buildCmd(&g),
		startCmd(&g),
		routesCmd(&g),
		publishCmd(&g),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
