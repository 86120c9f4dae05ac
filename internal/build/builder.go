package build

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/internal/config"
	"github.com/kyori-mfv/mfext/internal/errors"
)

// Target names a build step, or TargetAll for the full pipeline.
type Target string

const (
	TargetDiscover Target = "discover"
	TargetClient   Target = "client"
	TargetRSC      Target = "rsc"
	TargetSSR      Target = "ssr"
	TargetAll      Target = "all"
)

// Targets lists the valid targets in pipeline order.
var Targets = []Target{TargetDiscover, TargetClient, TargetRSC, TargetSSR, TargetAll}

// ParseTarget converts a command-line argument to a Target. Empty means
// TargetAll.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return TargetAll, nil
	}
	for _, t := range Targets {
		if Target(strings.ToLower(s)) == t {
			return t, nil
		}
	}
	return "", errors.New("E143").
		WithDetail("Unknown build target '" + s + "'").
		WithSuggestion("Use one of: discover, client, rsc, ssr, all")
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Steps are the steps that ran, in order.
	Steps []Target

	// Routes is the number of routes in the manifest.
	Routes int

	// ManifestChanged reports whether discovery rewrote the manifest.
	ManifestChanged bool

	// Components is the number of identifiers registered by codegen.
	Components int

	// ClientRefs is the number of entries in the client manifest.
	ClientRefs int

	// Public is the static output directory.
	Public string

	// PublicBytes is the total size of the static output.
	PublicBytes int64

	// Binary is the path to the compiled server.
	Binary string

	// BinaryBytes is the size of the compiled server.
	BinaryBytes int64
}

// Options configures the builder.
type Options struct {
	// Target is the Go build target for the server (e.g., "linux/amd64").
	Target string

	// LDFlags are extra linker flags for go build.
	LDFlags string

	// Tags are build tags.
	Tags []string

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs the build pipeline for one project.
type Builder struct {
	config  *config.Config
	options Options
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	return &Builder{
		config:  cfg,
		options: options,
	}
}

// Config returns the project configuration.
func (b *Builder) Config() *config.Config {
	return b.config
}

// Plan returns the steps Run performs for target given the current state of
// the output directory.
func (b *Builder) Plan(target Target) []Target {
	switch target {
	case TargetAll:
		return []Target{TargetDiscover, TargetClient, TargetRSC, TargetSSR}
	case TargetRSC, TargetSSR:
		if _, err := os.Stat(b.config.ManifestPath()); err != nil {
			return []Target{TargetDiscover, target}
		}
	}
	return []Target{target}
}

// Run executes target and the steps it depends on. It stops at the first
// failing step.
func (b *Builder) Run(ctx context.Context, target Target) (*Result, error) {
	start := time.Now()
	logger := slogctx.FromCtx(ctx).With("component", "build")
	ctx = slogctx.NewCtx(ctx, logger)

	result := &Result{}
	for _, step := range b.Plan(target) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stepStart := time.Now()
		if err := b.runStep(ctx, step, result); err != nil {
			logger.Error("build step failed", "step", string(step), "error", err)
			return nil, err
		}
		result.Steps = append(result.Steps, step)
		logger.Debug("build step completed", "step", string(step), "duration", time.Since(stepStart))
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (b *Builder) runStep(ctx context.Context, step Target, result *Result) error {
	switch step {
	case TargetDiscover:
		b.progress("Discovering routes...")
		return b.discover(ctx, result)
	case TargetClient:
		b.progress("Building client...")
		return b.client(ctx, result)
	case TargetRSC:
		b.progress("Generating component registry...")
		return b.generate(ctx, result)
	case TargetSSR:
		b.progress("Compiling server...")
		return b.server(ctx, result)
	}
	return errors.New("E143").WithDetail("Unknown build target '" + string(step) + "'")
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}

// checkGo reports E145 when the go command is unavailable.
func checkGo() error {
	if _, err := exec.LookPath("go"); err != nil {
		return errors.New("E145").
			WithSuggestion("Install Go from https://go.dev/dl/").
			Wrap(err)
	}
	return nil
}
