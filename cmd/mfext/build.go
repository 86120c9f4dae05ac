package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/build"
	"github.com/kyori-mfv/mfext/internal/config"
)

func buildCmd(g *globalFlags) *cobra.Command {
	var (
		output   string
		platform string
		tags     []string
		ldflags  string
		clean    bool
	)

	cmd := &cobra.Command{
		Use:   "build [discover|client|rsc|ssr|all]",
		Short: "Build for production",
		Long: `Build the application.

Targets:
  discover  scan the app directory and write the route manifest
  client    copy public assets, build the browser client, write the client manifest
  rsc       generate the component registry for the app package
  ssr       compile the server binary
  all       every step in that order (default)

rsc and ssr run discover first when no route manifest exists.

Examples:
  mfext build
  mfext build discover
  mfext build ssr --platform=linux/amd64`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"discover", "client", "rsc", "ssr", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			target, err := build.ParseTarget(name)
			if err != nil {
				return err
			}

			ctx, cfg, err := loadProject(cmd, g, map[string]string{"build.output": "output"})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			builder := build.New(cfg, build.Options{
				Target:     platform,
				Tags:       tags,
				LDFlags:    ldflags,
				OnProgress: func(step string) { info(step) },
			})
			if clean {
				info("Cleaning output directory...")
				if err := builder.Clean(); err != nil {
					return err
				}
			}

			fmt.Println()
			result, err := builder.Run(ctx, target)
			if err != nil {
				return err
			}
			printBuildResult(cfg, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from "+config.ConfigFileName+")")
	cmd.Flags().StringVar(&platform, "platform", "", "Server build platform (e.g., linux/amd64)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Go build tags")
	cmd.Flags().StringVar(&ldflags, "ldflags", "", "Extra linker flags")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before build")

	return cmd
}

func printBuildResult(cfg *config.Config, result *build.Result) {
	steps := make([]string, len(result.Steps))
	for i, s := range result.Steps {
		steps[i] = string(s)
	}

	fmt.Println()
	success("Built %s in %s", strings.Join(steps, ", "), result.Duration.Round(time.Millisecond))
	fmt.Println()

	out, err := filepath.Rel(cfg.Root(), cfg.OutputPath())
	if err != nil {
		out = cfg.OutputPath()
	}
	fmt.Printf("  %s/\n", out)
	for _, s := range result.Steps {
		switch s {
		case build.TargetDiscover:
			changed := "unchanged"
			if result.ManifestChanged {
				changed = "updated"
			}
			fmt.Printf("    ├── %s  (%d routes, %s)\n", cfg.Build.Manifest, result.Routes, changed)
		case build.TargetClient:
			fmt.Printf("    ├── %s  (%d client refs)\n", cfg.Build.ClientManifest, result.ClientRefs)
			fmt.Printf("    ├── public/  (%s)\n", humanize.Bytes(uint64(result.PublicBytes)))
		case build.TargetRSC:
			fmt.Printf("    ├── [%s/%s]  (%d components)\n", cfg.Paths.App, build.GeneratedFile, result.Components)
		case build.TargetSSR:
			fmt.Printf("    └── %s  (%s)\n", cfg.Build.Server, humanize.Bytes(uint64(result.BinaryBytes)))
		}
	}
	fmt.Println()

	for _, s := range result.Steps {
		if s == build.TargetSSR {
			fmt.Println("  To run:")
			fmt.Println("    mfext start")
			fmt.Println()
		}
	}
}
