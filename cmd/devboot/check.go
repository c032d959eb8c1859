// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/devcontainer"
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the dev container files exist",
		Long: `Check that every file the dev container setup needs is present.

The list comes from devcontainer.expected_files. Missing files are reported
but do not change the exit status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), app)
		},
	}
}

func runCheck(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}

	report := devcontainer.CheckFiles(app.workDir, cfg.Devcontainer.ExpectedFiles)

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Dev container files"))
	for _, f := range report.Files {
		if f.Found {
			fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render("✓"), f.Path)
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", ErrorStyle.Render("✗"), f.Path, SubtitleStyle.Render("(missing)"))
	}

	fmt.Fprintln(w)
	if missing := report.Missing(); len(missing) > 0 {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%d of %d files missing", len(missing), len(report.Files))))
		return nil
	}
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("All %d files present", len(report.Files))))
	return nil
}
