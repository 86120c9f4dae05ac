package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/kyori-mfv/mfext/internal/errors"
)

// CompilerConfig configures a go build invocation.
type CompilerConfig struct {
	// ProjectPath is the directory go build runs in.
	ProjectPath string

	// Package is the main package to build, e.g. "./cmd/server".
	Package string

	// BinaryPath is where to write the compiled binary.
	BinaryPath string

	// CachePath overrides GOCACHE when set.
	CachePath string

	// Tags are build tags to pass to go build.
	Tags []string

	// LDFlags are linker flags to pass to go build.
	LDFlags string

	// Env are additional environment variables, e.g. GOOS=js.
	Env []string
}

// BuildResult contains the result of a compilation.
type BuildResult struct {
	// Success indicates if the build succeeded.
	Success bool

	// Duration is how long the build took.
	Duration time.Duration

	// Output is the compiler output.
	Output string

	// Error is the build error, if any.
	Error error
}

// Compiler runs go build.
type Compiler struct {
	config CompilerConfig
}

// NewCompiler creates a compiler. Package defaults to ".".
func NewCompiler(config CompilerConfig) *Compiler {
	if config.Package == "" {
		config.Package = "."
	}
	return &Compiler{config: config}
}

// Args returns the go command arguments.
func (c *Compiler) Args() []string {
	args := []string{"build", "-o", c.config.BinaryPath, "-trimpath"}
	if len(c.config.Tags) > 0 {
		args = append(args, "-tags", strings.Join(c.config.Tags, ","))
	}
	if c.config.LDFlags != "" {
		args = append(args, "-ldflags", c.config.LDFlags)
	}
	return append(args, c.config.Package)
}

// Build compiles the package. A failed build carries E142 with the compiler
// output and the location of the first diagnostic.
func (c *Compiler) Build(ctx context.Context) BuildResult {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(c.config.BinaryPath), 0o755); err != nil {
		return BuildResult{
			Duration: time.Since(start),
			Error:    errors.New("E142").Wrap(err),
		}
	}

	cmd := exec.CommandContext(ctx, "go", c.Args()...)
	cmd.Dir = c.config.ProjectPath

	env := os.Environ()
	if c.config.CachePath != "" {
		if err := os.MkdirAll(c.config.CachePath, 0o755); err != nil {
			return BuildResult{
				Duration: time.Since(start),
				Error:    errors.New("E142").Wrap(err),
			}
		}
		env = append(env, "GOCACHE="+c.config.CachePath)
	}
	cmd.Env = append(env, c.config.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	output := stderr.String()
	if output == "" {
		output = stdout.String()
	}

	if err != nil {
		buildErr := ParseBuildError(output)
		e := errors.New("E142").WithDetail(output).Wrap(err)
		if buildErr != nil && buildErr.File != "" {
			file := buildErr.File
			if !filepath.IsAbs(file) {
				file = filepath.Join(c.config.ProjectPath, file)
			}
			e = e.WithLocation(file, buildErr.Line, buildErr.Column)
		}
		return BuildResult{
			Success:  false,
			Duration: duration,
			Output:   output,
			Error:    e,
		}
	}

	return BuildResult{
		Success:  true,
		Duration: duration,
		Output:   output,
	}
}

// BinaryPath returns the path to the compiled binary.
func (c *Compiler) BinaryPath() string {
	return c.config.BinaryPath
}

// BuildError is the first diagnostic of a failed compilation.
type BuildError struct {
	File    string
	Line    int
	Column  int
	Message string
	Output  string
}

func (e *BuildError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return e.Message
}

// Format returns a formatted error suitable for display.
func (e *BuildError) Format() string {
	return e.Output
}

// ParseBuildError extracts the first "file.go:line:col: message" diagnostic
// from compiler output. It returns nil for empty output.
func ParseBuildError(output string) *BuildError {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}
	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
		if len(parts) < 4 || !strings.HasSuffix(parts[0], ".go") {
			continue
		}
		var ln, col int
		if _, err := fmt.Sscanf(parts[1], "%d", &ln); err != nil {
			continue
		}
		if _, err := fmt.Sscanf(parts[2], "%d", &col); err != nil {
			continue
		}
		return &BuildError{
			File:    parts[0],
			Line:    ln,
			Column:  col,
			Message: strings.TrimSpace(parts[3]),
			Output:  output,
		}
	}
	first := strings.SplitN(output, "\n", 2)[0]
	return &BuildError{Message: first, Output: output}
}
