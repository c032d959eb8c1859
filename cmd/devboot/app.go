// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/devboot/devboot/internal/config"
	"github.com/devboot/devboot/internal/issue"
	"github.com/devboot/devboot/internal/runner"
)

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all cobra command handlers receive an App reference.
	App struct {
		Config ConfigProvider
		Runner runner.Runner
		stdout io.Writer
		stderr io.Writer

		// workDir is the workspace root every relative path is resolved against.
		workDir string

		// Flag values bound by NewRootCommand.
		verbose    bool
		configPath string

		// cfg memoizes the configuration for a single invocation.
		cfg *config.Config
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config  ConfigProvider
		Runner  runner.Runner
		Stdout  io.Writer
		Stderr  io.Writer
		WorkDir string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = runner.NewExecRunner(runner.WithStreams(deps.Stdout, deps.Stderr))
	}
	if deps.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		deps.WorkDir = wd
	}

	return &App{
		Config:  deps.Config,
		Runner:  deps.Runner,
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
		workDir: deps.WorkDir,
	}, nil
}

// loadConfig loads the configuration once per invocation. ui.verbose from the
// file turns on verbose output when the flag was not given.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !a.verbose {
		a.verbose = true
		configureLogging(a.stderr, a.verbose)
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath, BaseDir: a.workDir}
}

// path resolves a configured path against the workspace root.
func (a *App) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.workDir, p)
}

// markdownStyle maps the configured color scheme to a glamour style.
func (a *App) markdownStyle() string {
	if a.cfg == nil || a.cfg.UI.ColorScheme == config.ColorSchemeAuto || a.cfg.UI.ColorScheme == "" {
		return issue.AutoStyle
	}
	return a.cfg.UI.ColorScheme.String()
}
