package dev

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/kyori-mfv/mfext/internal/errors"
)

// StopTimeout is how long a stopping process gets before it is killed.
const StopTimeout = 5 * time.Second

// ProcessConfig describes a child process.
type ProcessConfig struct {
	// Binary is the executable to run.
	Binary string

	// Args are passed to the binary.
	Args []string

	// Dir is the working directory.
	Dir string

	// Env is appended to the current environment.
	Env []string

	// Stdout and Stderr default to the current process's.
	Stdout io.Writer
	Stderr io.Writer
}

// Process runs a binary in its own process group so that stopping it also
// stops anything it spawned. Stop sends SIGTERM and escalates to a kill
// after StopTimeout.
type Process struct {
	config ProcessConfig

	mu     sync.Mutex
	handle *processHandle
}

// NewProcess creates a stopped process.
func NewProcess(config ProcessConfig) *Process {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}
	return &Process{config: config}
}

// Start runs the binary, stopping a previous run first.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		stopProcess(p.handle)
		p.handle = nil
	}

	env := append(os.Environ(), p.config.Env...)
	h, err := startProcess(p.config, env)
	if err != nil {
		return errors.New("E146").WithDetail("Starting " + p.config.Binary).Wrap(err)
	}
	p.handle = h
	return nil
}

// Stop stops the running binary. Stopping a stopped process is a no-op.
func (p *Process) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil {
		stopProcess(p.handle)
		p.handle = nil
	}
}

// Restart stops the current run and starts a new one.
func (p *Process) Restart(ctx context.Context) error {
	return p.Start(ctx)
}

// Done returns a channel closed when the current run exits, or nil when
// nothing is running.
func (p *Process) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return nil
	}
	return p.handle.done
}

// Err returns the exit error of the last run once it has exited.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return nil
	}
	select {
	case <-p.handle.done:
		return p.handle.err
	default:
		return nil
	}
}

// IsRunning reports whether the binary is running.
func (p *Process) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == nil {
		return false
	}
	select {
	case <-p.handle.done:
		return false
	default:
		return true
	}
}

// Run starts the binary and waits for it to exit. When ctx is done first the
// binary is stopped gracefully and Run returns nil.
func (p *Process) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	done := p.Done()
	select {
	case <-ctx.Done():
		p.Stop()
		return nil
	case <-done:
		if err := p.Err(); err != nil {
			return errors.New("E146").WithDetail(p.config.Binary + " exited: " + err.Error()).Wrap(err)
		}
		return nil
	}
}
