// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	secretsDirPerm  os.FileMode = 0o700
	secretsFilePerm os.FileMode = 0o600
)

// SecretsSource says where the connection file came from.
type SecretsSource string

const (
	SourceNone    SecretsSource = "none"
	SourceProject SecretsSource = "project"
	SourceHost    SecretsSource = "host"
)

// errSecretsFound stops the workspace walk at the first match.
var errSecretsFound = errors.New("secrets found")

// secrets makes the warehouse connection file available in the home
// directory. A project-local file wins over the host mount; the home
// directory becomes a symlink to the project copy, or receives a copy of the
// host file. Nothing here is fatal.
func (p *Provisioner) secrets(ctx context.Context) (StepResult, error) {
	sc := p.cfg.Secrets
	source, location := p.findSecrets()

	var res StepResult
	switch source {
	case SourceProject:
		if err := linkSecretsDir(location, sc.HomeDir); err != nil {
			return warning(StepSecrets, err, "could not link %s to %s", sc.HomeDir, location), nil
		}
		res = ok(StepSecrets, "linked %s to project connections in %s", sc.HomeDir, p.rel(location))
	case SourceHost:
		if err := copySecretsFile(location, sc.HomeDir, sc.FileName); err != nil {
			return warning(StepSecrets, err, "could not copy %s into %s", location, sc.HomeDir), nil
		}
		res = ok(StepSecrets, "copied host connections from %s", location)
	default:
		return skipped(StepSecrets, "connections not configured (no %s found in the project or at %s)",
			filepath.Join(sc.DirName, sc.FileName), sc.HostPath), nil
	}

	if err := restrictSecrets(sc.HomeDir, sc.FileName); err != nil {
		return warning(StepSecrets, err, "connections available but permissions could not be restricted"), nil
	}

	names, err := ConnectionNames(filepath.Join(sc.HomeDir, sc.FileName))
	if err != nil {
		res = warning(StepSecrets, err, "%s; the connection file could not be parsed", res.Message)
	} else {
		res.Details = append(res.Details, "connections: "+strings.Join(names, ", "))
	}

	if sc.CLI == "" {
		return res, nil
	}
	if _, lookErr := p.runner.LookPath(sc.CLI); lookErr != nil {
		return res, nil
	}
	out, runErr := p.runner.Run(ctx, p.command(sc.CLI, "connection", "list"))
	if runErr != nil {
		if ctx.Err() != nil {
			return StepResult{}, ctx.Err()
		}
		return warning(StepSecrets, runErr, "%s; %s connection list failed", res.Message, sc.CLI), nil
	}
	if listing := strings.TrimSpace(out.Stdout); listing != "" {
		res.Details = append(res.Details, strings.Split(listing, "\n")...)
	}
	return res, nil
}

// findSecrets runs the three-tier search. For the project tier the returned
// location is the directory holding the file; for the host tier it is the
// file itself.
func (p *Provisioner) findSecrets() (SecretsSource, string) {
	if dir, found := p.findProjectSecrets(); found {
		return SourceProject, dir
	}
	if host := p.cfg.Secrets.HostPath; host != "" && isFile(host) {
		return SourceHost, host
	}
	return SourceNone, ""
}

// findProjectSecrets walks the workspace in lexical order for the first
// <DirName>/<FileName>, skipping VCS metadata, node modules and the venv.
func (p *Provisioner) findProjectSecrets() (string, bool) {
	sc := p.cfg.Secrets
	skip := map[string]bool{".git": true, "node_modules": true}
	venv := filepath.Clean(p.cfg.abs(p.cfg.VenvPath))

	var found string
	err := filepath.WalkDir(p.cfg.WorkDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are ignored.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skip[d.Name()] || filepath.Clean(path) == venv || (p.venvDir != "" && path == p.venvDir) {
			return fs.SkipDir
		}
		if d.Name() == sc.DirName && isFile(filepath.Join(path, sc.FileName)) {
			found = path
			return errSecretsFound
		}
		return nil
	})
	if errors.Is(err, errSecretsFound) {
		return found, true
	}
	return "", false
}

func (p *Provisioner) rel(path string) string {
	if r, err := filepath.Rel(p.cfg.WorkDir, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

// linkSecretsDir replaces whatever is at home (file, directory, symlink or
// broken symlink) with a symlink to target.
func linkSecretsDir(target, home string) error {
	if sameDir(target, home) || linksTo(home, target) {
		return nil
	}
	if err := os.RemoveAll(home); err != nil {
		return fmt.Errorf("remove %s: %w", home, err)
	}
	if err := os.MkdirAll(filepath.Dir(home), 0o755); err != nil {
		return err
	}
	return os.Symlink(target, home)
}

// copySecretsFile copies src into home/name, turning home into a real
// directory first when it is anything else.
func copySecretsFile(src, home, name string) error {
	if info, err := os.Lstat(home); err == nil && !info.IsDir() {
		if err := os.Remove(home); err != nil {
			return fmt.Errorf("remove %s: %w", home, err)
		}
	}
	if err := os.MkdirAll(home, secretsDirPerm); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, name), data, secretsFilePerm)
}

// restrictSecrets applies 0700 to the directory and 0600 to the file,
// following a symlinked home directory to the project copy.
func restrictSecrets(home, name string) error {
	if err := os.Chmod(home, secretsDirPerm); err != nil {
		return err
	}
	return os.Chmod(filepath.Join(home, name), secretsFilePerm)
}

// sameDir reports whether a and b are the same existing directory, so that
// replacing one would destroy the other.
func sameDir(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	lb, err := os.Lstat(b)
	if err != nil || lb.Mode()&os.ModeSymlink != 0 {
		return false
	}
	sa, err := os.Stat(a)
	if err != nil {
		return false
	}
	return os.SameFile(sa, lb)
}

// linksTo reports whether link is a symlink resolving to the directory
// target. Relative link destinations are read against the link's directory.
func linksTo(link, target string) bool {
	dest, err := os.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	if filepath.Clean(dest) == filepath.Clean(target) {
		return true
	}
	di, err := os.Stat(dest)
	if err != nil {
		return false
	}
	ti, err := os.Stat(target)
	return err == nil && os.SameFile(di, ti)
}

// ConnectionNames lists the connections defined in a connections.toml file.
// Both the flat layout ([name] tables) and the nested [connections.name]
// layout are understood. Names are sorted.
func ConnectionNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	tables := doc
	if nested, isTable := doc["connections"].(map[string]any); isTable {
		tables = nested
	}
	var names []string
	for name, v := range tables {
		if _, isTable := v.(map[string]any); isTable {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
