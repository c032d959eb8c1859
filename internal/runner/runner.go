// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/devboot/devboot/pkg/types"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves an executable name to a path.
	LookPathFunc func(file string) (string, error)

	// Command describes a single external tool invocation.
	Command struct {
		// Name is the executable (resolved through PATH when not absolute).
		Name string
		// Args are passed verbatim; no shell is involved.
		Args []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env holds KEY=VALUE overrides layered on top of the process environment.
		Env []string
	}

	// Result is the captured outcome of a finished command.
	Result struct {
		ExitCode types.ExitCode
		Stdout   string
		Stderr   string
	}

	// Runner runs external tools and reports their exit status and output.
	Runner interface {
		// Run executes cmd and waits for it to exit. A non-zero exit status is
		// returned as a *ToolError alongside the captured Result.
		Run(ctx context.Context, cmd Command) (Result, error)
		// LookPath reports where an executable would be found.
		LookPath(name string) (string, error)
	}

	// Option configures an ExecRunner.
	Option func(*ExecRunner)

	// ExecRunner is the production Runner backed by os/exec.
	ExecRunner struct {
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
		// stdout and stderr receive a live copy of the tool output when set.
		stdout io.Writer
		stderr io.Writer
	}
)

// WithExecCommand returns an Option that replaces exec.CommandContext.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *ExecRunner) {
		r.execCommand = fn
	}
}

// WithLookPath returns an Option that replaces exec.LookPath.
func WithLookPath(fn LookPathFunc) Option {
	return func(r *ExecRunner) {
		r.lookPath = fn
	}
}

// WithStreams returns an Option that mirrors tool output to the given writers
// while it is still being captured.
func WithStreams(stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// NewExecRunner creates a Runner that spawns real processes.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return r.lookPath(name)
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := r.execCommand(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = MergeEnv(base, c.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeWriter(&stdout, r.stdout)
	cmd.Stderr = teeWriter(&stderr, r.stderr)

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = types.ExitCode(exitErr.ExitCode())
	default:
		// The process never started (binary missing, permission denied, ...).
		res.ExitCode = types.ExitCommandNotFound
	}
	return res, &ToolError{Command: c, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// MergeEnv returns base with every KEY=VALUE in overrides applied. Later
// overrides win; keys absent from base are appended in order.
func MergeEnv(base, overrides []string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))
	for _, kv := range append(append([]string{}, base...), overrides...) {
		key, _, _ := strings.Cut(kv, "=")
		if i, ok := index[key]; ok {
			merged[i] = kv
			continue
		}
		index[key] = len(merged)
		merged = append(merged, kv)
	}
	return merged
}

func teeWriter(buf *bytes.Buffer, live io.Writer) io.Writer {
	if live == nil {
		return buf
	}
	return io.MultiWriter(buf, live)
}
