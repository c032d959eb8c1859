// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
)

func (p *Provisioner) deps(ctx context.Context) (StepResult, error) {
	manifest := p.cfg.abs(p.cfg.Requirements)
	if !isFile(manifest) {
		return skipped(StepDeps, "%s not found, no development dependencies installed", p.cfg.Requirements), nil
	}

	cmd := p.command(p.interpreter(), "-m", "pip", "install", "-r", manifest)
	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return StepResult{Message: fmt.Sprintf("installing %s failed", p.cfg.Requirements)}, err
	}
	return ok(StepDeps, "installed dependencies from %s", p.cfg.Requirements), nil
}
