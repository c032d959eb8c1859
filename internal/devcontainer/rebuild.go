// SPDX-License-Identifier: MPL-2.0

package devcontainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/devboot/devboot/internal/runner"
)

// DefaultTool is the reference dev container CLI.
const DefaultTool = "devcontainer"

// ErrToolNotFound is returned when the build tool is not installed.
var ErrToolNotFound = errors.New("dev container CLI not found")

type (
	// ToolNotFoundError reports the tool command that could not be resolved.
	ToolNotFoundError struct {
		Tool string
		Err  error
	}

	// Rebuilder rebuilds the dev container image of a workspace.
	Rebuilder struct {
		runner          runner.Runner
		tool            string
		workspaceFolder string
	}
)

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("dev container CLI %q not found", e.Tool)
}

// Unwrap returns ErrToolNotFound and the lookup error.
func (e *ToolNotFoundError) Unwrap() []error {
	return []error{ErrToolNotFound, e.Err}
}

// NewRebuilder creates a Rebuilder. tool is a command line such as
// "devcontainer" or "npx @devcontainers/cli"; an empty tool means
// DefaultTool and an empty workspaceFolder means the current directory.
func NewRebuilder(r runner.Runner, tool, workspaceFolder string) *Rebuilder {
	if tool == "" {
		tool = DefaultTool
	}
	if workspaceFolder == "" {
		workspaceFolder = "."
	}
	return &Rebuilder{runner: r, tool: tool, workspaceFolder: workspaceFolder}
}

// Command returns the invocation Rebuild would run.
func (b *Rebuilder) Command() (runner.Command, error) {
	folder, err := filepath.Abs(b.workspaceFolder)
	if err != nil {
		return runner.Command{}, fmt.Errorf("resolve workspace folder: %w", err)
	}
	return runner.ParseCommandLine(b.tool, "build", "--workspace-folder", folder)
}

// Rebuild runs "<tool> build --workspace-folder <dir>" exactly once.
func (b *Rebuilder) Rebuild(ctx context.Context) (runner.Result, error) {
	cmd, err := b.Command()
	if err != nil {
		return runner.Result{}, err
	}
	if _, err := b.runner.LookPath(cmd.Name); err != nil {
		return runner.Result{}, &ToolNotFoundError{Tool: b.tool, Err: err}
	}

	slog.Debug("rebuilding dev container", "command", cmd.String())
	return b.runner.Run(ctx, cmd)
}
