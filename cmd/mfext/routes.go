package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/build"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/pkg/router"
)

func routesCmd(g *globalFlags) *cobra.Command {
	var rediscover bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the application's routes",
		Long: `Print every route with the page and layouts that render it.

Routes are read from the route manifest; --discover scans the app
directory and rewrites the manifest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := loadProject(cmd, g, nil)
			if err != nil {
				return err
			}
			if rediscover {
				if _, err := build.New(cfg, build.Options{}).Run(ctx, build.TargetDiscover); err != nil {
					return err
				}
			}

			m, err := router.ReadManifest(cfg.ManifestPath())
			if err != nil {
				return mferrors.New("E100").
					WithSuggestion("Run 'mfext build discover' or pass --discover").
					Wrap(err)
			}
			printRoutes(m)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rediscover, "discover", false, "Scan the app directory before listing")
	return cmd
}

func printRoutes(m *router.Manifest) {
	paths := make([]string, 0, len(m.Routes))
	for p := range m.Routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		warn("No routes. Add a page.go to the app directory.")
		return
	}

	width := 0
	for _, p := range paths {
		width = max(width, len(p))
	}

	fmt.Println()
	for _, p := range paths {
		r := m.Routes[p]
		layouts := "-"
		if len(r.Layouts) > 0 {
			layouts = strings.Join(r.Layouts, " > ")
		}
		fmt.Printf("  %-*s  %s  [%s]\n", width, p, r.Page, layouts)
	}
	fmt.Println()
	info("%d routes", len(paths))
}
