// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devboot/devboot/internal/config"
)

type (
	// Config holds the inputs of a provisioning run. Relative paths are
	// resolved against WorkDir.
	Config struct {
		// WorkDir is the workspace root (the repository checkout).
		WorkDir string

		// Getenv reads the process environment. Tests replace it.
		Getenv func(string) string

		// VenvPath is the virtual environment location used when no
		// environment is active.
		VenvPath string

		// Python is the interpreter used to create the environment.
		Python string

		// Requirements is the development dependency manifest.
		Requirements string

		// HooksConfig is the pre-commit configuration file.
		HooksConfig string

		// RetryDelay is the pause before the single git trust retry.
		RetryDelay time.Duration

		Secrets SecretsConfig
	}

	// SecretsConfig locates the warehouse connection file.
	SecretsConfig struct {
		// DirName is the project-local directory searched for under WorkDir.
		DirName string
		// FileName is the connection file inside DirName and HomeDir.
		FileName string
		// HomeDir is the absolute home secrets directory (e.g. ~/.snowflake).
		HomeDir string
		// HostPath is the absolute host-mounted connection file.
		HostPath string
		// CLI is the companion command run to list connections.
		CLI string
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)
)

// DefaultConfig returns a Config matching config.DefaultConfig, rooted at
// the current directory.
func DefaultConfig() *Config {
	cfg := fromAppConfig(config.DefaultConfig(), ".")
	if home, err := config.ExpandPath(cfg.Secrets.HomeDir); err == nil {
		cfg.Secrets.HomeDir = home
	}
	return cfg
}

// FromAppConfig converts the loaded application configuration into a
// provisioning Config. "~" and $VAR references in the secrets paths are
// expanded. An empty workDir means the current directory.
func FromAppConfig(app *config.Config, workDir string) (*Config, error) {
	cfg := fromAppConfig(app, workDir)

	home, err := config.ExpandPath(app.Provision.Secrets.HomeDir)
	if err != nil {
		return nil, fmt.Errorf("secrets home directory: %w", err)
	}
	host, err := config.ExpandPath(app.Provision.Secrets.HostPath)
	if err != nil {
		return nil, fmt.Errorf("host secrets path: %w", err)
	}
	cfg.Secrets.HomeDir = home
	cfg.Secrets.HostPath = host

	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkDir = wd
	}
	return cfg, nil
}

func fromAppConfig(app *config.Config, workDir string) *Config {
	p := app.Provision
	return &Config{
		WorkDir:      workDir,
		Getenv:       os.Getenv,
		VenvPath:     p.VenvPath,
		Python:       p.Python,
		Requirements: p.Requirements,
		HooksConfig:  p.HooksConfig,
		RetryDelay:   p.RetryDelay,
		Secrets: SecretsConfig{
			DirName:  p.Secrets.DirName,
			FileName: p.Secrets.FileName,
			HomeDir:  p.Secrets.HomeDir,
			HostPath: p.Secrets.HostPath,
			CLI:      p.Secrets.CLI,
		},
	}
}

// WithWorkDir returns an Option that sets WorkDir on the config.
func WithWorkDir(dir string) Option {
	return func(c *Config) {
		c.WorkDir = dir
	}
}

// WithGetenv returns an Option that replaces the environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(c *Config) {
		c.Getenv = fn
	}
}

// WithRetryDelay returns an Option that sets RetryDelay on the config.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) {
		c.RetryDelay = d
	}
}

// WithSecrets returns an Option that sets the secrets locations.
func WithSecrets(s SecretsConfig) Option {
	return func(c *Config) {
		c.Secrets = s
	}
}

// WithConfig returns an Option that replaces the whole config. Options
// applied after it still take effect.
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		*c = *cfg
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// abs resolves p against WorkDir unless it is already absolute.
func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}
