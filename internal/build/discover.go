package build

import (
	"context"
	"os"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/internal/errors"
	"github.com/kyori-mfv/mfext/pkg/router"
)

// discover writes the routes manifest. Filesystem problems degrade to an
// empty manifest and are only logged.
func (b *Builder) discover(ctx context.Context, result *Result) error {
	logger := slogctx.FromCtx(ctx)
	appDir := b.config.AppPath()

	if _, err := os.Stat(appDir); err != nil {
		logger.Warn(errors.New("E103").WithDetail("Looked in "+appDir).Error(), "dir", appDir)
	}

	m, changed, err := router.DiscoverAndWrite(ctx, appDir, b.config.ManifestPath())
	if err != nil {
		return err
	}
	if len(m.Routes) == 0 {
		logger.Warn(errors.New("E102").Error(), "dir", appDir)
	}

	result.Routes = len(m.Routes)
	result.ManifestChanged = changed
	logger.Info("routes manifest written",
		"path", b.config.ManifestPath(),
		"routes", len(m.Routes),
		"changed", changed,
	)
	return nil
}

// readManifest loads the manifest written by discover.
func (b *Builder) readManifest() (*router.Manifest, error) {
	m, err := router.ReadManifest(b.config.ManifestPath())
	if err != nil {
		return nil, errors.New("E100").
			WithSuggestion("Run 'mfext build discover' first").
			Wrap(err)
	}
	return m, nil
}
