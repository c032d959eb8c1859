// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devboot/devboot/internal/issue"
)

const workflowGuide = `# Python upgrade workflow

1. **Check the workspace**

   ~~~
   devboot check
   ~~~

2. **Bump the interpreter version** (the checksum is optional and only echoed)

   ~~~
   devboot bump 3.12.4 <sha256>
   ~~~

3. **Rebuild the dev container**

   ~~~
   devboot rebuild
   ~~~

   If the rebuild fails, open the command palette in VS Code and run
   *Dev Containers: Rebuild Container*.

4. **Provisioning runs on container creation**

   The post-create hook calls ` + "`devboot provision`" + `, which prepares the
   virtual environment, installs development dependencies, trusts the
   repository in git, installs pre-commit hooks and links warehouse
   connections. Run it again by hand at any time.

5. **Verify and commit**

   ~~~
   devboot info
   git commit -am "Bump Python to 3.12.4"
   ~~~
`

func newWorkflowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "workflow",
		Short: "Show the Python upgrade workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Configuration only picks the color scheme; defaults are fine.
			if _, err := app.loadConfig(cmd.Context()); err != nil {
				slog.Warn("using default color scheme", "error", err)
			}
			rendered, err := issue.RenderMarkdown(workflowGuide, app.markdownStyle())
			if err != nil {
				rendered = workflowGuide
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
}
