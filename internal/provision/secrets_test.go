// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devboot/devboot/internal/runner/runnertest"
	"github.com/devboot/devboot/internal/testutil"
)

const connectionsTOML = `default_connection_name = "dev"

[dev]
account = "acme-dev"
user = "alice"

[prod]
account = "acme-prod"
user = "alice"
`

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks and unix permissions are not portable to Windows")
	}
}

func assertSecretsPerms(t *testing.T, home string) {
	t.Helper()
	dirInfo, err := os.Stat(home)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(home, "connections.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestSecrets_ProjectLocalIsSymlinked(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	projectDir := filepath.Join(f.work, "analytics", ".snowflake")
	testutil.MustWriteFile(t, filepath.Join(projectDir, "connections.toml"), connectionsTOML)

	summary, err := f.run(t)
	require.NoError(t, err)

	res := statusOf(t, summary, StepSecrets)
	assert.Equal(t, StatusOK, res.Status)
	assert.Contains(t, res.Details, "connections: dev, prod")

	info, err := os.Lstat(f.secretsHome())
	require.NoError(t, err)
	require.NotZero(t, info.Mode()&os.ModeSymlink, "home secrets path should be a symlink")

	target, err := os.Readlink(f.secretsHome())
	require.NoError(t, err)
	assert.Equal(t, projectDir, target)

	data, err := os.ReadFile(filepath.Join(f.secretsHome(), "connections.toml"))
	require.NoError(t, err)
	assert.Equal(t, connectionsTOML, string(data))
	assertSecretsPerms(t, f.secretsHome())
}

func TestSecrets_ReplacesPreExistingHomePath(t *testing.T) {
	skipOnWindows(t)
	tests := []struct {
		name  string
		setup func(t *testing.T, home string)
	}{
		{
			name: "regular file",
			setup: func(t *testing.T, home string) {
				testutil.MustWriteFile(t, home, "stale")
			},
		},
		{
			name: "directory with contents",
			setup: func(t *testing.T, home string) {
				testutil.MustWriteFile(t, filepath.Join(home, "connections.toml"), "[old]\n")
				testutil.MustWriteFile(t, filepath.Join(home, "nested", "x"), "x")
			},
		},
		{
			name: "broken symlink",
			setup: func(t *testing.T, home string) {
				testutil.MustSymlink(t, filepath.Join(t.TempDir(), "gone"), home)
			},
		},
		{
			name: "symlink to another project",
			setup: func(t *testing.T, home string) {
				other := filepath.Join(t.TempDir(), ".snowflake")
				testutil.MustWriteFile(t, filepath.Join(other, "connections.toml"), "[other]\n")
				testutil.MustSymlink(t, other, home)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			projectDir := filepath.Join(f.work, ".snowflake")
			testutil.MustWriteFile(t, filepath.Join(projectDir, "connections.toml"), connectionsTOML)
			tt.setup(t, f.secretsHome())

			summary, err := f.run(t)
			require.NoError(t, err)
			assert.Equal(t, StatusOK, statusOf(t, summary, StepSecrets).Status)

			target, err := os.Readlink(f.secretsHome())
			require.NoError(t, err)
			assert.Equal(t, projectDir, target)

			data, err := os.ReadFile(filepath.Join(f.secretsHome(), "connections.toml"))
			require.NoError(t, err)
			assert.Equal(t, connectionsTOML, string(data))
		})
	}
}

func TestLinkSecretsDir_KeepsLinkToTarget(t *testing.T) {
	skipOnWindows(t)
	root := t.TempDir()
	target := filepath.Join(root, "project", ".snowflake")
	testutil.MustMkdirAll(t, target, 0o700)

	tests := []struct {
		name string
		dest string
	}{
		{"absolute", target},
		{"relative", filepath.Join("..", "project", ".snowflake")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := filepath.Join(root, "home-"+tt.name, ".snowflake")
			testutil.MustMkdirAll(t, filepath.Dir(home), 0o755)
			testutil.MustSymlink(t, tt.dest, home)

			assert.True(t, linksTo(home, target))
			require.NoError(t, linkSecretsDir(target, home))

			dest, err := os.Readlink(home)
			require.NoError(t, err)
			assert.Equal(t, tt.dest, dest, "an existing link to the target is left as written")
		})
	}

	other := filepath.Join(root, "other", ".snowflake")
	testutil.MustMkdirAll(t, other, 0o700)
	stale := filepath.Join(root, "stale", ".snowflake")
	testutil.MustMkdirAll(t, filepath.Dir(stale), 0o755)
	testutil.MustSymlink(t, other, stale)

	assert.False(t, linksTo(stale, target))
	require.NoError(t, linkSecretsDir(target, stale))
	dest, err := os.Readlink(stale)
	require.NoError(t, err)
	assert.Equal(t, target, dest)
}

func TestSecrets_HostMountedIsCopied(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	testutil.MustWriteFile(t, f.hostFile, connectionsTOML)

	summary, err := f.run(t)
	require.NoError(t, err)

	res := statusOf(t, summary, StepSecrets)
	assert.Equal(t, StatusOK, res.Status)
	assert.Contains(t, res.Message, "copied host connections")

	info, err := os.Lstat(f.secretsHome())
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "host secrets are copied into a real directory")

	data, err := os.ReadFile(filepath.Join(f.secretsHome(), "connections.toml"))
	require.NoError(t, err)
	assert.Equal(t, connectionsTOML, string(data))
	assertSecretsPerms(t, f.secretsHome())
}

func TestSecrets_ProjectWinsOverHost(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	testutil.MustWriteFile(t, f.hostFile, "[host]\n")
	testutil.MustWriteFile(t, filepath.Join(f.work, ".snowflake", "connections.toml"), connectionsTOML)

	_, err := f.run(t)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.secretsHome(), "connections.toml"))
	require.NoError(t, err)
	assert.Equal(t, connectionsTOML, string(data))
}

func TestSecrets_NotConfigured(t *testing.T) {
	f := newFixture(t)
	// Only ignored locations hold a connection file.
	testutil.MustWriteFile(t, filepath.Join(f.work, "node_modules", "pkg", ".snowflake", "connections.toml"), connectionsTOML)
	testutil.MustWriteFile(t, filepath.Join(f.work, ".git", ".snowflake", "connections.toml"), connectionsTOML)
	testutil.MustWriteFile(t, filepath.Join(f.work, ".venv", ".snowflake", "connections.toml"), connectionsTOML)
	// A directory without the file does not count.
	testutil.MustMkdirAll(t, filepath.Join(f.work, "other", ".snowflake"), 0o755)

	summary, err := f.run(t)
	require.NoError(t, err)

	res := statusOf(t, summary, StepSecrets)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Contains(t, res.Message, "not configured")

	_, statErr := os.Lstat(f.secretsHome())
	assert.True(t, os.IsNotExist(statErr), "nothing should be created at the home path")
}

func TestSecrets_CompanionCLI(t *testing.T) {
	skipOnWindows(t)
	tests := []struct {
		name       string
		response   runnertest.Response
		wantStatus Status
		wantDetail string
	}{
		{
			name:       "listing is reported",
			response:   runnertest.Response{Stdout: "dev  acme-dev\nprod acme-prod\n"},
			wantStatus: StatusOK,
			wantDetail: "prod acme-prod",
		},
		{
			name:       "failure only warns",
			response:   runnertest.Response{ExitCode: 1, Stderr: "bad config"},
			wantStatus: StatusWarning,
			wantDetail: "connections: dev, prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			testutil.MustWriteFile(t, filepath.Join(f.work, ".snowflake", "connections.toml"), connectionsTOML)
			f.rec.Provide("snow").On("snow connection list", tt.response)

			summary, err := f.run(t)
			require.NoError(t, err)

			res := statusOf(t, summary, StepSecrets)
			assert.Equal(t, tt.wantStatus, res.Status)
			if tt.wantStatus == StatusOK {
				assert.Contains(t, res.Details, tt.wantDetail)
			}
			assert.Equal(t, 1, f.rec.Count("snow connection list"))
		})
	}
}

func TestSecrets_CLIAbsentIsNotRun(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	testutil.MustWriteFile(t, f.hostFile, connectionsTOML)

	_, err := f.provisioner().Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, f.rec.Count("snow"))
}

func TestSecrets_UnparsableFileWarns(t *testing.T) {
	skipOnWindows(t)
	f := newFixture(t)
	testutil.MustWriteFile(t, filepath.Join(f.work, ".snowflake", "connections.toml"), "[dev\naccount = ")

	summary, err := f.run(t)
	require.NoError(t, err)

	res := statusOf(t, summary, StepSecrets)
	assert.Equal(t, StatusWarning, res.Status)
	assert.Contains(t, res.Message, "could not be parsed")
}

func TestConnectionNames(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "flat tables",
			content: connectionsTOML,
			want:    []string{"dev", "prod"},
		},
		{
			name:    "nested connections table",
			content: "[connections.staging]\naccount = \"a\"\n\n[connections.analytics]\naccount = \"b\"\n",
			want:    []string{"analytics", "staging"},
		},
		{
			name:    "no tables",
			content: "default_connection_name = \"dev\"\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "connections.toml")
			testutil.MustWriteFile(t, path, tt.content)

			got, err := ConnectionNames(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
