// SPDX-License-Identifier: MPL-2.0

package devcontainer

import (
	"os"
	"path/filepath"
)

type (
	// FileStatus is the presence of one expected file.
	FileStatus struct {
		Path  string
		Found bool
	}

	// CheckReport lists expected files in the order they were configured.
	CheckReport struct {
		Files []FileStatus
	}
)

// CheckFiles reports which of the expected files exist under root. Relative
// paths are resolved against root and reported as given.
func CheckFiles(root string, expected []string) CheckReport {
	report := CheckReport{Files: make([]FileStatus, 0, len(expected))}
	for _, p := range expected {
		full := p
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, p)
		}
		_, err := os.Stat(full)
		report.Files = append(report.Files, FileStatus{Path: p, Found: err == nil})
	}
	return report
}

// Missing returns the paths that were not found.
func (r CheckReport) Missing() []string {
	var missing []string
	for _, f := range r.Files {
		if !f.Found {
			missing = append(missing, f.Path)
		}
	}
	return missing
}

// OK reports whether every expected file exists.
func (r CheckReport) OK() bool {
	return len(r.Missing()) == 0
}
