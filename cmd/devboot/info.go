// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/imagedef"
)

func newInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "info",
		Aliases: []string{"show-info"},
		Short:   "Show the image definition and its Python version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), app)
		},
	}
}

func runInfo(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}

	key := imagedef.MarkerKey(cfg.ImageDefinition.MarkerKey)
	path := app.path(cfg.ImageDefinition.Path)
	version := imagedef.Locate(path, key)

	versionText := SuccessStyle.Render(version.String())
	if version.IsUnknown() {
		versionText = WarningStyle.Render(version.String())
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Dev container"))
	fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("Image definition:"), CmdStyle.Render(cfg.ImageDefinition.Path))
	fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("Marker key:      "), CmdStyle.Render(key.String()))
	fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("Python version:  "), versionText)
	fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("Build tool:      "), CmdStyle.Render(cfg.Devcontainer.Tool))

	if version.IsUnknown() && app.verbose {
		if _, lookupErr := imagedef.Lookup(path, key); lookupErr != nil {
			fmt.Fprintf(w, "  %s\n", VerboseStyle.Render("reason: "+lookupErr.Error()))
		}
	}
	return nil
}
