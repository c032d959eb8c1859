// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/devcontainer"
	"github.com/devboot/devboot/internal/issue"
	"github.com/devboot/devboot/internal/runner"
)

func newRebuildCommand(app *App) *cobra.Command {
	var tool string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the dev container image",
		Long: `Rebuild the dev container image with the dev container CLI.

The tool defaults to 'devcontainer' and can be changed with --devcontainer,
the DEVCONTAINER environment variable or devcontainer.tool in devboot.cue.
It may include arguments, e.g. "npx @devcontainers/cli".

If the build fails, instructions for rebuilding from VS Code are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd.Context(), app, tool)
		},
	}
	cmd.Flags().StringVar(&tool, "devcontainer", "", "dev container CLI command (overrides config and $DEVCONTAINER)")

	return cmd
}

func runRebuild(ctx context.Context, app *App, toolOverride string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}

	tool := cfg.Devcontainer.Tool
	if toolOverride != "" {
		tool = toolOverride
	}
	rebuilder := devcontainer.NewRebuilder(app.Runner, tool, app.path(cfg.Devcontainer.WorkspaceFolder))

	fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("Rebuilding dev container with"), CmdStyle.Render(tool))
	_, err = rebuilder.Rebuild(ctx)
	if err == nil {
		fmt.Fprintf(app.stdout, "%s Dev container rebuilt\n", SuccessStyle.Render("✓"))
		return nil
	}

	ectx := issue.NewErrorContext().
		WithOperation("rebuild dev container").
		Wrap(err)
	if errors.Is(err, devcontainer.ErrToolNotFound) {
		app.renderIssue(issue.DevcontainerCLINotFoundId)
		return app.fail(issue.RebuildFailedId, ectx.
			WithResource(tool).
			WithSuggestion("Install the dev container CLI or pass --devcontainer").
			BuildError())
	}
	if errors.Is(err, runner.ErrToolFailed) {
		ectx.WithSuggestion(fmt.Sprintf("The build exited with status %s", runner.ExitCodeOf(err)))
	}
	return app.fail(issue.RebuildFailedId, ectx.BuildError())
}
