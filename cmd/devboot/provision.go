// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/issue"
	"github.com/devboot/devboot/internal/provision"
)

// fatalStepIssues maps the steps that can abort provisioning to their
// catalog entries.
var fatalStepIssues = map[provision.Step]issue.Id{
	provision.StepVenv:  issue.VenvCreationFailedId,
	provision.StepDeps:  issue.DependencyInstallFailedId,
	provision.StepHooks: issue.HookInstallFailedId,
}

func newProvisionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Provision the dev container after creation",
		Long: `Run the post-create provisioning sequence:

  venv       use $VIRTUAL_ENV or .venv, creating it when missing
  deps       install requirements-dev.txt
  git-trust  mark the workspace as a git safe.directory
  hooks      install the pre-commit hooks
  secrets    link or copy the warehouse connections file

Only venv creation, dependency installation and hook installation can
fail the run; everything else is reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context(), app)
		},
	}
}

func runProvision(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.configError(err)
	}
	pcfg, err := provision.FromAppConfig(cfg, app.workDir)
	if err != nil {
		return app.configError(err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Provisioning dev container"))
	p := provision.New(app.Runner, provision.ReporterFunc(app.reportStep), provision.WithConfig(pcfg))
	summary, err := p.Run(ctx)

	var seqErr *provision.SequenceError
	if errors.As(err, &seqErr) {
		id, known := fatalStepIssues[seqErr.Step]
		if !known {
			return err
		}
		return app.fail(id, issue.NewErrorContext().
			WithOperation("provision dev container").
			WithResource(seqErr.Step.String()).
			WithSuggestion("Fix the problem above and run 'devboot provision' again").
			Wrap(seqErr).
			BuildError())
	}
	if err != nil {
		return err
	}

	if res, found := summary.Result(provision.StepSecrets); found && res.Status == provision.StatusSkipped && app.verbose {
		app.renderIssue(issue.SecretsNotConfiguredId)
	}
	if res, found := summary.Result(provision.StepGitTrust); found && res.Status == provision.StatusWarning {
		app.renderIssue(issue.GitTrustFailedId)
	}

	fmt.Fprintf(app.stdout, "\n%s Provisioning complete: %d ok, %d skipped, %d warnings\n",
		SuccessStyle.Render("✓"),
		summary.Count(provision.StatusOK),
		summary.Count(provision.StatusSkipped),
		summary.Count(provision.StatusWarning))
	return nil
}

// reportStep prints one status line per step result.
func (a *App) reportStep(r provision.StepResult) {
	fmt.Fprintf(a.stdout, "  %s %s %s\n", statusIcon(r.Status), stepNameStyle.Render(r.Step.String()), r.Message)
	for _, d := range r.Details {
		fmt.Fprintf(a.stdout, "      %s\n", VerboseStyle.Render(d))
	}
	if a.verbose && r.Err != nil && r.Status == provision.StatusWarning {
		fmt.Fprintf(a.stdout, "      %s\n", VerboseStyle.Render(r.Err.Error()))
	}
}
