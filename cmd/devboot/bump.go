// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/imagedef"
	"github.com/devboot/devboot/internal/issue"
	"github.com/devboot/devboot/pkg/types"
)

// ErrMissingArgument is returned when a required command argument is absent.
var ErrMissingArgument = errors.New("missing required argument")

const (
	versionArgKey  = "VERSION"
	checksumArgKey = "SHA256"
)

func newBumpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bump <VERSION> [SHA256]",
		Short: "Update the Python version of the dev container image",
		Long: `Update the Python version declared in the image definition.

Every 'ARG PYTHON_VERSION=...' line is rewritten in place. The optional
SHA256 checksum is echoed back for your records and is not verified.

Arguments may also be given in make style: VERSION=3.12.4 SHA256=<hex>.`,
		Example: `  devboot bump 3.12.4
  devboot bump 3.12.4 0f3c...e1
  devboot bump VERSION=3.12.4 SHA256=0f3c...e1`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, checksum, err := parseBumpArgs(args)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+err.Error())
				fmt.Fprintln(app.stderr)
				fmt.Fprint(app.stderr, cmd.UsageString())
				if errors.Is(err, ErrMissingArgument) {
					app.renderIssue(issue.MissingVersionArgumentId)
				}
				return &ExitError{Code: types.ExitFailure, Err: err}
			}
			return runBump(cmd.Context(), app, version, checksum)
		},
	}
}

// parseBumpArgs accepts positional "<VERSION> [SHA256]" as well as
// KEY=VALUE pairs. Keys are case-insensitive.
func parseBumpArgs(args []string) (imagedef.Version, imagedef.Checksum, error) {
	var version, checksum string
	for _, arg := range args {
		if key, value, isPair := strings.Cut(arg, "="); isPair {
			switch strings.ToUpper(strings.TrimSpace(key)) {
			case versionArgKey:
				version = value
			case checksumArgKey:
				checksum = value
			default:
				return "", "", fmt.Errorf("unknown argument %q (expected %s= or %s=)", key, versionArgKey, checksumArgKey)
			}
			continue
		}
		// A bare argument is the version until one is known, then the checksum.
		if strings.TrimSpace(version) == "" {
			version = arg
		} else {
			checksum = arg
		}
	}

	if strings.TrimSpace(version) == "" {
		return "", "", fmt.Errorf("%w: %s", ErrMissingArgument, versionArgKey)
	}
	return imagedef.Version(strings.TrimSpace(version)), imagedef.Checksum(strings.TrimSpace(checksum)), nil
}

func runBump(ctx context.Context, app *App, version imagedef.Version, checksum imagedef.Checksum) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}

	path := app.path(cfg.ImageDefinition.Path)
	key := imagedef.MarkerKey(cfg.ImageDefinition.MarkerKey)

	res, err := imagedef.Update(path, key, version)
	if err != nil {
		return app.bumpError(cfg.ImageDefinition.Path, key, err)
	}

	w := app.stdout
	fmt.Fprintf(w, "%s Updated %s in %s: %s → %s",
		SuccessStyle.Render("✓"),
		CmdStyle.Render(key.String()),
		CmdStyle.Render(cfg.ImageDefinition.Path),
		res.Previous,
		SuccessStyle.Render(res.Current.String()))
	if res.Replaced > 1 {
		fmt.Fprintf(w, " (%d lines)", res.Replaced)
	}
	fmt.Fprintln(w)
	if checksum.IsSet() {
		fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("SHA256:"), checksum)
	}
	fmt.Fprintf(w, "\nNext: run %s to build the new image.\n", CmdStyle.Render("devboot rebuild"))
	return nil
}

func (a *App) bumpError(displayPath string, key imagedef.MarkerKey, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("update version marker").
		WithResource(displayPath).
		Wrap(err)

	switch {
	case errors.Is(err, imagedef.ErrMarkerNotFound):
		ctx.WithSuggestion(fmt.Sprintf("Add an 'ARG %s=<x.y.z>' line to the image definition", key))
		return a.fail(issue.VersionMarkerNotFoundId, ctx.BuildError())
	case errors.Is(err, fs.ErrNotExist):
		ctx.WithSuggestion("Run devboot from the repository root or set image_definition.path")
		return a.fail(issue.ImageDefinitionNotFoundId, ctx.BuildError())
	case errors.Is(err, fs.ErrPermission):
		return a.fail(issue.PermissionDeniedId, ctx.BuildError())
	case errors.Is(err, imagedef.ErrEmptyVersion):
		return a.fail(issue.MissingVersionArgumentId, ctx.BuildError())
	default:
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(ctx.BuildError(), a.verbose))
		return &ExitError{Code: types.ExitFailure, Err: ctx.BuildError()}
	}
}
