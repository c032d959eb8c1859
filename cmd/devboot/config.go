// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/config"
)

// newConfigCommand creates the `devboot config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage devboot configuration",
		Long: `Manage devboot configuration.

Configuration is read from the first of:
  - the file given with --config
  - devboot.cue in the current directory
  - config.cue in the user config directory (e.g. ~/.config/devboot)

Any key can be overridden with a DEVBOOT_ environment variable, e.g.
DEVBOOT_PROVISION_VENV_PATH=.env.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.configError(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create devboot.cue with the default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	source := SubtitleStyle.Render("(using defaults)")
	if path, pathErr := config.ResolvePath(app.loadOptions()); pathErr == nil && path != "" {
		source = path
	}
	fmt.Fprintf(w, "%s: %s\n\n", keyStyle.Render("Config file"), source)

	section := func(name string, kv ...string) {
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(name))
		for i := 0; i+1 < len(kv); i += 2 {
			fmt.Fprintf(w, "  %s: %s\n", kv[i], valueStyle.Render(kv[i+1]))
		}
		fmt.Fprintln(w)
	}

	section("image_definition",
		"path", cfg.ImageDefinition.Path,
		"marker_key", cfg.ImageDefinition.MarkerKey)
	section("devcontainer",
		"tool", cfg.Devcontainer.Tool,
		"workspace_folder", cfg.Devcontainer.WorkspaceFolder,
		"expected_files", strings.Join(cfg.Devcontainer.ExpectedFiles, ", "))
	section("provision",
		"venv_path", cfg.Provision.VenvPath,
		"python", cfg.Provision.Python,
		"requirements", cfg.Provision.Requirements,
		"hooks_config", cfg.Provision.HooksConfig,
		"retry_delay", cfg.Provision.RetryDelay.String())
	section("provision.secrets",
		"dir_name", cfg.Provision.Secrets.DirName,
		"file_name", cfg.Provision.Secrets.FileName,
		"home_dir", cfg.Provision.Secrets.HomeDir,
		"host_path", cfg.Provision.Secrets.HostPath,
		"cli", cfg.Provision.Secrets.CLI)
	section("ui",
		"color_scheme", cfg.UI.ColorScheme.String(),
		"verbose", fmt.Sprintf("%v", cfg.UI.Verbose))

	return nil
}

func showConfigPath(app *App) error {
	w := app.stdout

	fmt.Fprintf(w, "Project config: %s\n", filepath.Join(app.workDir, config.ProjectConfigFileName))
	if cfgDir, err := config.ConfigDir(); err == nil {
		fmt.Fprintf(w, "User config:    %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	}

	active, err := config.ResolvePath(app.loadOptions())
	if err != nil {
		return app.configError(err)
	}
	if active == "" {
		active = "(none, using defaults)"
	}
	fmt.Fprintf(w, "Active:         %s\n", active)
	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateProjectConfig(app.workDir)
	if err != nil {
		return app.configError(err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s %s already exists, left unchanged\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
