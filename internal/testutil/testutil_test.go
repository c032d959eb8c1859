// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustSetenv_Restores(t *testing.T) {
	const key = "DEVBOOT_TESTUTIL_PROBE"
	restoreOuter := MustUnsetenv(t, key)
	defer restoreOuter()

	restore := MustSetenv(t, key, "value")
	if got := os.Getenv(key); got != "value" {
		t.Fatalf("Getenv() = %q, want %q", got, "value")
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("expected variable to be unset after restore")
	}
}

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(SetHomeDir(t, dir))

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	if home != dir {
		t.Errorf("UserHomeDir() = %q, want %q", home, dir)
	}
}

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	MustWriteFile(t, path, "content")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "content" {
		t.Errorf("content = %q", data)
	}
}
