// SPDX-License-Identifier: MPL-2.0

// Package config handles devboot configuration using Viper with CUE as the file format.
//
// Configuration is resolved in this order, first match wins:
//
//  1. the file given with --config
//  2. devboot.cue in the project directory
//  3. config.cue in the user config directory ($XDG_CONFIG_HOME/devboot on Linux,
//     ~/Library/Application Support/devboot on macOS, %APPDATA%\devboot on Windows)
//  4. built-in defaults
//
// Files are validated against the embedded #Config schema (config_schema.cue).
// Every key can be overridden from the environment with the DEVBOOT_ prefix
// (e.g. DEVBOOT_PROVISION_VENV_PATH); the build tool additionally honours the
// DEVCONTAINER variable used by the original Makefile.
package config
