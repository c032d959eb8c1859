// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ImageDefinition locates the version marker.
		ImageDefinition ImageDefinitionConfig `json:"image_definition" mapstructure:"image_definition"`
		// Devcontainer configures rebuild and check.
		Devcontainer DevcontainerConfig `json:"devcontainer" mapstructure:"devcontainer"`
		// Provision configures the post-create provisioning sequence.
		Provision ProvisionConfig `json:"provision" mapstructure:"provision"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// ImageDefinitionConfig points at the file carrying the version marker.
	ImageDefinitionConfig struct {
		// Path is the image definition, relative to the project directory.
		Path string `json:"path" mapstructure:"path"`
		// MarkerKey is the build argument holding the version.
		MarkerKey string `json:"marker_key" mapstructure:"marker_key"`
	}

	// DevcontainerConfig configures the dev container CLI and the file check.
	DevcontainerConfig struct {
		// Tool is the dev container CLI command line; shell quoting is honoured.
		Tool string `json:"tool" mapstructure:"tool"`
		// WorkspaceFolder is passed as --workspace-folder.
		WorkspaceFolder string `json:"workspace_folder" mapstructure:"workspace_folder"`
		// ExpectedFiles are checked for existence by `devboot check`.
		ExpectedFiles []string `json:"expected_files" mapstructure:"expected_files"`
	}

	// ProvisionConfig configures the post-create provisioning sequence.
	ProvisionConfig struct {
		// VenvPath is where the virtual environment is created when none is active.
		VenvPath string `json:"venv_path" mapstructure:"venv_path"`
		// Python is the interpreter used to create the virtual environment.
		Python string `json:"python" mapstructure:"python"`
		// Requirements is the development dependency manifest.
		Requirements string `json:"requirements" mapstructure:"requirements"`
		// HooksConfig is the pre-commit configuration file.
		HooksConfig string `json:"hooks_config" mapstructure:"hooks_config"`
		// RetryDelay is the pause before retrying the global git trust setting.
		RetryDelay time.Duration `json:"retry_delay" mapstructure:"retry_delay"`
		// Secrets configures the credentials file lookup.
		Secrets SecretsConfig `json:"secrets" mapstructure:"secrets"`
	}

	// SecretsConfig describes where the extension credentials file lives.
	SecretsConfig struct {
		// DirName is the directory searched for under the working tree.
		DirName string `json:"dir_name" mapstructure:"dir_name"`
		// FileName is the credentials file inside DirName.
		FileName string `json:"file_name" mapstructure:"file_name"`
		// HomeDir is where the extension expects the directory. "~" is expanded.
		HomeDir string `json:"home_dir" mapstructure:"home_dir"`
		// HostPath is the host-mounted fallback file. "$VAR" is expanded.
		HostPath string `json:"host_path" mapstructure:"host_path"`
		// CLI is the companion tool used to list connections. Empty disables it.
		CLI string `json:"cli" mapstructure:"cli"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ImageDefinition: ImageDefinitionConfig{
			Path:      ".devcontainer/Dockerfile",
			MarkerKey: "PYTHON_VERSION",
		},
		Devcontainer: DevcontainerConfig{
			Tool:            "devcontainer",
			WorkspaceFolder: ".",
			ExpectedFiles: []string{
				".devcontainer/Dockerfile",
				".devcontainer/devcontainer.json",
				"requirements-dev.txt",
				".pre-commit-config.yaml",
			},
		},
		Provision: ProvisionConfig{
			VenvPath:     ".venv",
			Python:       "python3",
			Requirements: "requirements-dev.txt",
			HooksConfig:  ".pre-commit-config.yaml",
			RetryDelay:   time.Second,
			Secrets: SecretsConfig{
				DirName:  ".snowflake",
				FileName: "connections.toml",
				HomeDir:  "~/.snowflake",
				HostPath: "/mnt/host-snowflake/connections.toml",
				CLI:      "snow",
			},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the Config has valid fields. The CUE schema already
// rejects malformed files; this catches values injected through the
// environment, which bypass the schema.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	required := []struct{ key, value string }{
		{"image_definition.path", c.ImageDefinition.Path},
		{"image_definition.marker_key", c.ImageDefinition.MarkerKey},
		{"devcontainer.tool", c.Devcontainer.Tool},
		{"provision.venv_path", c.Provision.VenvPath},
		{"provision.python", c.Provision.Python},
		{"provision.secrets.dir_name", c.Provision.Secrets.DirName},
		{"provision.secrets.file_name", c.Provision.Secrets.FileName},
		{"provision.secrets.home_dir", c.Provision.Secrets.HomeDir},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%s: must be non-empty", field.key))
		}
	}
	if c.Provision.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("provision.retry_delay: must not be negative, got %s", c.Provision.RetryDelay))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
