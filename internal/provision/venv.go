// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"path/filepath"
)

// venv resolves the environment in priority order: the active $VIRTUAL_ENV,
// the configured path when it already holds an interpreter, otherwise a new
// environment created with the configured interpreter (an empty directory,
// such as a mounted volume, is populated in place). Creation failure is fatal.
func (p *Provisioner) venv(ctx context.Context) (StepResult, error) {
	if active := p.cfg.Getenv("VIRTUAL_ENV"); active != "" && p.hasInterpreter(active) {
		p.venvDir = active
		return ok(StepVenv, "using active environment %s", active), nil
	}

	dir := p.cfg.abs(p.cfg.VenvPath)
	if p.hasInterpreter(dir) {
		p.venvDir = dir
		return ok(StepVenv, "using existing environment %s", p.cfg.VenvPath), nil
	}

	if _, err := p.runner.Run(ctx, p.command(p.cfg.Python, "-m", "venv", dir)); err != nil {
		return StepResult{Message: "could not create virtual environment at " + p.cfg.VenvPath}, err
	}
	p.venvDir = dir
	return ok(StepVenv, "created environment %s", p.cfg.VenvPath), nil
}

func (p *Provisioner) hasInterpreter(dir string) bool {
	for _, name := range []string{"python", "python3"} {
		if isFile(filepath.Join(dir, binDirName(), name+exeSuffix())) {
			return true
		}
	}
	return false
}

// interpreter returns the python that belongs to the activated environment.
func (p *Provisioner) interpreter() string {
	if p.venvDir == "" {
		return p.cfg.Python
	}
	return filepath.Join(p.venvDir, binDirName(), "python"+exeSuffix())
}
