// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/devboot/devboot/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the devboot command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "devboot",
		Short: "Bootstrap and maintain a Python dev container",
		Long: TitleStyle.Render("devboot") + SubtitleStyle.Render(" - Bootstrap and maintain a Python dev container") + `

devboot keeps the interpreter version of the dev container image in sync,
rebuilds the container and provisions it after creation: virtual
environment, development dependencies, git trust, pre-commit hooks and
warehouse connection secrets.

` + SubtitleStyle.Render("Examples:") + `
  devboot info                 Show the current Python version
  devboot bump 3.12.4          Update the image to Python 3.12.4
  devboot rebuild              Rebuild the dev container
  devboot check                Verify the expected files exist
  devboot provision            Run the post-create provisioning sequence
  devboot workflow             Show the version upgrade workflow`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging(app.stderr, app.verbose)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is ./devboot.cue, then the user config directory)")

	rootCmd.AddCommand(
		newInfoCommand(app),
		newBumpCommand(app),
		newRebuildCommand(app),
		newCheckCommand(app),
		newWorkflowCommand(app),
		newProvisionCommand(app),
		newConfigCommand(app),
	)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the devboot CLI and exits. It is called by main.main().
func Execute() {
	os.Exit(Run())
}

// Run runs the devboot CLI and returns the process exit code.
func Run() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return int(types.ExitFailure)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}
		return int(types.ExitFailure)
	}
	return int(types.ExitSuccess)
}
