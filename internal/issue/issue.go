// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AutoStyle selects a glamour style from the terminal background.
const AutoStyle = "auto"

type Id int

const (
	ImageDefinitionNotFoundId Id = iota + 1
	VersionMarkerNotFoundId
	MissingVersionArgumentId
	DevcontainerCLINotFoundId
	RebuildFailedId
	VenvCreationFailedId
	DependencyInstallFailedId
	HookInstallFailedId
	GitTrustFailedId
	SecretsNotConfiguredId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. stylePath is a glamour
// style name ("dark", "light", "notty") or AutoStyle.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return RenderMarkdown(md.String(), stylePath)
}

// RenderMarkdown renders arbitrary markdown with the given glamour style.
func RenderMarkdown(in, stylePath string) (string, error) {
	if stylePath == AutoStyle {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err != nil {
			return "", err
		}
		return r.Render(in)
	}
	return render(in, stylePath)
}

var (
	render = glamour.Render

	imageDefinitionNotFoundIssue = &Issue{
		id: ImageDefinitionNotFoundId,
		mdMsg: `
# Image definition not found!

devboot could not read the container image definition.

## Things you can try:
- Run devboot from the repository root
- Point devboot at the right file in ` + "`devboot.cue`" + `:
~~~cue
image_definition: path: ".devcontainer/Dockerfile"
~~~`,
	}

	versionMarkerNotFoundIssue = &Issue{
		id: VersionMarkerNotFoundId,
		mdMsg: `
# Version marker not found!

The image definition has no line declaring the interpreter version, so there
is nothing to update. The file was left unchanged.

## Things you can try:
- Add a build argument line to the image definition:
~~~
ARG PYTHON_VERSION=3.12.4
~~~

- If your image uses a different argument name, configure it:
~~~cue
image_definition: marker_key: "PY_VERSION"
~~~`,
	}

	missingVersionArgumentIssue = &Issue{
		id: MissingVersionArgumentId,
		mdMsg: `
# No version given!

The bump command needs the new interpreter version.

## Usage:
~~~
$ devboot bump 3.12.4
$ devboot bump 3.12.4 <sha256>
$ devboot bump VERSION=3.12.4 SHA256=<sha256>
~~~`,
	}

	devcontainerCLINotFoundIssue = &Issue{
		id: DevcontainerCLINotFoundId,
		mdMsg: `
# Dev container CLI not found!

The configured dev container tool is not installed or not in your PATH.

## Things you can try:
- Install the reference CLI:
~~~
$ npm install -g @devcontainers/cli
~~~

- Use it through npx instead:
~~~
$ devboot rebuild --devcontainer "npx @devcontainers/cli"
~~~

- Or set the DEVCONTAINER environment variable to another tool`,
		extLinks: []HttpLink{
			"https://github.com/devcontainers/cli",
		},
	}

	rebuildFailedIssue = &Issue{
		id: RebuildFailedId,
		mdMsg: `
# Dev container rebuild failed!

The automatic rebuild did not succeed. You can still rebuild by hand.

## Manual fallback:
1. Open the repository in VS Code
2. Open the command palette (Ctrl+Shift+P / Cmd+Shift+P)
3. Run **Dev Containers: Rebuild Container**

## Things you can try:
- Check the build output above for the failing step
- Make sure Docker (or Podman) is running
- Run ` + "`devboot check`" + ` to verify the expected files exist`,
		extLinks: []HttpLink{
			"https://code.visualstudio.com/docs/devcontainers/create-dev-container",
		},
	}

	venvCreationFailedIssue = &Issue{
		id: VenvCreationFailedId,
		mdMsg: `
# Virtual environment creation failed!

The isolated package environment could not be created, so provisioning stopped.

## Things you can try:
- Check that the interpreter works: ` + "`python3 --version`" + `
- Make sure the venv module is installed (` + "`python3 -m venv --help`" + `)
- Remove a half-created ` + "`.venv`" + ` directory and rebuild the container`,
	}

	dependencyInstallFailedIssue = &Issue{
		id: DependencyInstallFailedId,
		mdMsg: `
# Dependency installation failed!

The package installer could not install the development dependencies.

## Things you can try:
- Check the requirements file for typos or pinned versions that do not exist
- Check network access from inside the container
- Re-run provisioning after fixing the requirements:
~~~
$ devboot provision
~~~`,
	}

	hookInstallFailedIssue = &Issue{
		id: HookInstallFailedId,
		mdMsg: `
# Git hook installation failed!

The pre-commit hooks could not be installed.

## Things you can try:
- Validate the hook configuration:
~~~
$ .venv/bin/pre-commit validate-config
~~~

- Make sure the repository is a git checkout (a ` + "`.git`" + ` directory exists)`,
		extLinks: []HttpLink{
			"https://pre-commit.com/",
		},
	}

	gitTrustFailedIssue = &Issue{
		id: GitTrustFailedId,
		mdMsg: `
# Repository could not be marked as trusted!

Git may refuse to operate on this repository because it is owned by another
user (common with bind-mounted workspaces).

## Things you can try:
~~~
$ git config --global --add safe.directory "$(pwd)"
~~~`,
	}

	secretsNotConfiguredIssue = &Issue{
		id: SecretsNotConfiguredId,
		mdMsg: `
# Warehouse connections not configured!

No connection file was found in the project or on the host mount.

## Things you can try:
- Create a project-local file at ` + "`.snowflake/connections.toml`" + `
- Or mount your host configuration at ` + "`/mnt/host-snowflake`" + ` and rebuild the container`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

devboot could not load its configuration file.

## Things you can try:
- Check the syntax of the CUE file it reported
- Print the effective configuration:
~~~
$ devboot config show
~~~

- Generate a fresh project configuration:
~~~
$ devboot config init
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Things you can try:
- Check file and directory ownership inside the workspace
- Make sure the home directory of the container user is writable
- Run devboot as the container user rather than root`,
	}

	issues = map[Id]*Issue{
		imageDefinitionNotFoundIssue.Id(): imageDefinitionNotFoundIssue,
		versionMarkerNotFoundIssue.Id():   versionMarkerNotFoundIssue,
		missingVersionArgumentIssue.Id():  missingVersionArgumentIssue,
		devcontainerCLINotFoundIssue.Id(): devcontainerCLINotFoundIssue,
		rebuildFailedIssue.Id():           rebuildFailedIssue,
		venvCreationFailedIssue.Id():      venvCreationFailedIssue,
		dependencyInstallFailedIssue.Id(): dependencyInstallFailedIssue,
		hookInstallFailedIssue.Id():       hookInstallFailedIssue,
		gitTrustFailedIssue.Id():          gitTrustFailedIssue,
		secretsNotConfiguredIssue.Id():    secretsNotConfiguredIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every catalog issue ordered by id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
