package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/kyori-mfv/mfext/internal/config"
	mferrors "github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/internal/logging"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	dir      string
	logLevel string
	noColor  bool
}

// loadProject finds the project containing g.dir, loads its configuration
// and installs the logger. Flags named in binds override config keys.
func loadProject(cmd *cobra.Command, g *globalFlags, binds map[string]string) (context.Context, *config.Config, error) {
	root, err := config.FindProjectRoot(g.dir)
	if err != nil {
		return nil, nil, err
	}

	l := config.NewLoader()
	if g.logLevel != "" {
		binds = withBind(binds, "log.level", "log-level")
	}
	for key, name := range binds {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := l.BindFlag(key, f); err != nil {
				return nil, nil, err
			}
		}
	}
	cfg, err := l.Load(root)
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, mferrors.New("E120").WithDetail(err.Error())
	}
	if g.noColor {
		mferrors.DisableColors()
	}
	ctx, _ := logging.Setup(cmd.Context(), os.Stderr, logging.Options{
		Level:   level,
		JSON:    cfg.Log.JSON,
		NoColor: g.noColor,
	})
	return ctx, cfg, nil
}

func withBind(binds map[string]string, key, flag string) map[string]string {
	out := make(map[string]string, len(binds)+1)
	for k, v := range binds {
		out[k] = v
	}
	out[key] = flag
	return out
}
