// SPDX-License-Identifier: MPL-2.0

package imagedef

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// markerPattern matches `ARG <KEY>=<value>` lines. Group 1 is everything up
// to and including '=', group 2 is the value.
func markerPattern(key MarkerKey) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*ARG[ \t]+` + regexp.QuoteMeta(string(key)) + `=)(\S*)`)
}

// Locate returns the value of the first marker line for key in the file at
// path. It never fails: an unreadable file, a missing marker or an empty
// value all yield Unknown.
func Locate(path string, key MarkerKey) Version {
	v, err := Lookup(path, key)
	if err != nil || v == "" {
		return Unknown
	}
	return v
}

// Lookup is Locate with the reason for a missing value reported as an error.
// The first marker line with a value wins; when every marker line is empty
// it returns ("", nil).
func Lookup(path string, key MarkerKey) (Version, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image definition: %w", err)
	}
	matches := markerPattern(key).FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("%s: ARG %s: %w", path, key, ErrMarkerNotFound)
	}
	for _, m := range matches {
		if len(m[2]) > 0 {
			return Version(m[2]), nil
		}
	}
	return "", nil
}

// Update rewrites every marker line for key to carry version. The file is
// left untouched when version is blank, key is invalid or no marker line
// exists. The original permission bits are preserved, and a symlinked path
// is updated through to its target.
func Update(path string, key MarkerKey, version Version) (UpdateResult, error) {
	if err := version.Validate(); err != nil {
		return UpdateResult{}, err
	}
	if err := key.Validate(); err != nil {
		return UpdateResult{}, err
	}
	version = Version(strings.TrimSpace(string(version)))

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("resolve image definition: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("stat image definition: %w", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("read image definition: %w", err)
	}

	matches := markerPattern(key).FindAllSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return UpdateResult{}, fmt.Errorf("%s: ARG %s: %w", path, key, ErrMarkerNotFound)
	}

	res := UpdateResult{
		Path:     path,
		Key:      key,
		Current:  version,
		Replaced: len(matches),
	}
	for _, m := range matches {
		if m[5] > m[4] {
			res.Previous = Version(data[m[4]:m[5]])
			break
		}
	}

	// Splice the new value in place of group 2 of every match.
	var out strings.Builder
	out.Grow(len(data) + len(matches)*len(version))
	last := 0
	for _, m := range matches {
		out.Write(data[last:m[4]])
		out.WriteString(string(version))
		last = m[5]
	}
	out.Write(data[last:])

	if err := writeFileAtomic(target, []byte(out.String()), info.Mode().Perm()); err != nil {
		return UpdateResult{}, err
	}
	return res, nil
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers never observe a half-written file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) } // best effort; the rename did not happen

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("set permissions on temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace image definition: %w", err)
	}
	return nil
}
