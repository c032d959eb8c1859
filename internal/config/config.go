// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/devboot/devboot/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "devboot"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectConfigFileName is the project-local config file.
	ProjectConfigFileName = "devboot.cue"
	// EnvPrefix prefixes environment overrides (DEVBOOT_UI_VERBOSE, ...).
	EnvPrefix = "DEVBOOT"
	// DevcontainerEnvVar overrides the dev container CLI, as the Makefile did.
	DevcontainerEnvVar = "DEVCONTAINER"

	// maxConfigFileSize bounds config files read into memory.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the devboot configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ResolvePath returns the config file that Load would read, or "" when only
// defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", configFileNotFound(opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	if projectPath := filepath.Join(baseDir, ProjectConfigFileName); fileExists(projectPath) {
		return projectPath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if userPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(userPath) {
		return userPath, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'devboot config dump' to see every supported key").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check DEVBOOT_* environment variables for empty or malformed values").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance seeded with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("image_definition.path", defaults.ImageDefinition.Path)
	v.SetDefault("image_definition.marker_key", defaults.ImageDefinition.MarkerKey)
	v.SetDefault("devcontainer.tool", defaults.Devcontainer.Tool)
	v.SetDefault("devcontainer.workspace_folder", defaults.Devcontainer.WorkspaceFolder)
	v.SetDefault("devcontainer.expected_files", defaults.Devcontainer.ExpectedFiles)
	v.SetDefault("provision.venv_path", defaults.Provision.VenvPath)
	v.SetDefault("provision.python", defaults.Provision.Python)
	v.SetDefault("provision.requirements", defaults.Provision.Requirements)
	v.SetDefault("provision.hooks_config", defaults.Provision.HooksConfig)
	v.SetDefault("provision.retry_delay", defaults.Provision.RetryDelay)
	v.SetDefault("provision.secrets.dir_name", defaults.Provision.Secrets.DirName)
	v.SetDefault("provision.secrets.file_name", defaults.Provision.Secrets.FileName)
	v.SetDefault("provision.secrets.home_dir", defaults.Provision.Secrets.HomeDir)
	v.SetDefault("provision.secrets.host_path", defaults.Provision.Secrets.HostPath)
	v.SetDefault("provision.secrets.cli", defaults.Provision.Secrets.CLI)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Makefile's DEVCONTAINER variable keeps working; the prefixed form wins.
	_ = v.BindEnv("devcontainer.tool", EnvPrefix+"_DEVCONTAINER_TOOL", DevcontainerEnvVar) // only fails with no key

	return v
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	// Unify with schema to validate against the closed #Config definition
	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func configFileNotFound(path string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Verify the file path is correct").
		WithSuggestion("Check that the file exists and is readable").
		WithSuggestion("Use 'devboot config show' to see the default configuration").
		Wrap(fmt.Errorf("config file not found: %s", path)).
		BuildError()
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateProjectConfig writes a devboot.cue with the default values into dir.
// An existing file is left untouched and its path returned with created=false.
func CreateProjectConfig(dir string) (path string, created bool, err error) {
	path = filepath.Join(dir, ProjectConfigFileName)
	if _, statErr := os.Stat(path); statErr == nil {
		return path, false, nil
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// devboot configuration\n\n")

	sb.WriteString("image_definition: {\n")
	fmt.Fprintf(&sb, "\tpath:       %q\n", cfg.ImageDefinition.Path)
	fmt.Fprintf(&sb, "\tmarker_key: %q\n", cfg.ImageDefinition.MarkerKey)
	sb.WriteString("}\n")

	sb.WriteString("\ndevcontainer: {\n")
	fmt.Fprintf(&sb, "\ttool:             %q\n", cfg.Devcontainer.Tool)
	fmt.Fprintf(&sb, "\tworkspace_folder: %q\n", cfg.Devcontainer.WorkspaceFolder)
	sb.WriteString("\texpected_files: [\n")
	for _, f := range cfg.Devcontainer.ExpectedFiles {
		fmt.Fprintf(&sb, "\t\t%q,\n", f)
	}
	sb.WriteString("\t]\n")
	sb.WriteString("}\n")

	sb.WriteString("\nprovision: {\n")
	fmt.Fprintf(&sb, "\tvenv_path:    %q\n", cfg.Provision.VenvPath)
	fmt.Fprintf(&sb, "\tpython:       %q\n", cfg.Provision.Python)
	fmt.Fprintf(&sb, "\trequirements: %q\n", cfg.Provision.Requirements)
	fmt.Fprintf(&sb, "\thooks_config: %q\n", cfg.Provision.HooksConfig)
	fmt.Fprintf(&sb, "\tretry_delay:  %q\n", cfg.Provision.RetryDelay.String())
	sb.WriteString("\n\tsecrets: {\n")
	fmt.Fprintf(&sb, "\t\tdir_name:  %q\n", cfg.Provision.Secrets.DirName)
	fmt.Fprintf(&sb, "\t\tfile_name: %q\n", cfg.Provision.Secrets.FileName)
	fmt.Fprintf(&sb, "\t\thome_dir:  %q\n", cfg.Provision.Secrets.HomeDir)
	fmt.Fprintf(&sb, "\t\thost_path: %q\n", cfg.Provision.Secrets.HostPath)
	fmt.Fprintf(&sb, "\t\tcli:       %q\n", cfg.Provision.Secrets.CLI)
	sb.WriteString("\t}\n")
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
