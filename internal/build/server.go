package build

import (
	"context"
	"os"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/kyori-mfv/mfext/internal/errors"
)

// server compiles the server main into the output directory.
func (b *Builder) server(ctx context.Context, result *Result) error {
	if err := checkGo(); err != nil {
		return err
	}
	if main := b.config.Paths.ServerMain; !dirExists(b.resolve(main)) {
		return errors.New("E121").
			WithDetail("Server main package " + main + " not found").
			WithSuggestion("Set paths.serverMain in mfext.json")
	}

	ldflags := "-s -w"
	if b.options.LDFlags != "" {
		ldflags = b.options.LDFlags + " " + ldflags
	}
	env := []string{"CGO_ENABLED=0"}
	if b.options.Target != "" {
		if goos, goarch, ok := strings.Cut(b.options.Target, "/"); ok {
			env = append(env, "GOOS="+goos, "GOARCH="+goarch)
		}
	}

	compiler := NewCompiler(CompilerConfig{
		ProjectPath: b.config.Root(),
		Package:     b.config.Paths.ServerMain,
		BinaryPath:  b.config.ServerBinaryPath(),
		Tags:        b.options.Tags,
		LDFlags:     ldflags,
		Env:         env,
	})
	res := compiler.Build(ctx)
	if res.Error != nil {
		return res.Error
	}

	result.Binary = compiler.BinaryPath()
	if info, err := os.Stat(result.Binary); err == nil {
		result.BinaryBytes = info.Size()
	}
	slogctx.FromCtx(ctx).Info("server compiled", "binary", result.Binary, "duration", res.Duration)
	return nil
}
