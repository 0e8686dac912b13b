// Package security confines file reads and writes to the bridge's
// configured workspace roots, grounded on
// original_source/src/bridge/path_security.rs.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// configFileNames are discovered by walking up from a workspace root so a
// project's own tool config (e.g. pyproject.toml) is readable even when it
// lives above the nominal root, per path_security.rs's discover_config_paths.
var configFileNames = []string{
	".catenary.toml",
	"pyproject.toml",
	"package.json",
	"Cargo.toml",
	"go.mod",
}

// Validator confines path access to a set of workspace roots plus any
// discovered ancestor config files.
type Validator struct {
	mu             sync.RWMutex
	roots          []string
	configPaths    []string
	protectedDirs  []string
	userConfigPath string
}

// New builds a Validator over the given roots and discovers ancestor
// config files for each.
func New(roots []string) *Validator {
	v := &Validator{}
	v.UpdateRoots(roots)
	return v
}

// UpdateRoots replaces the root set and re-discovers both ancestor config
// files (widened read access) and protected config files (write-rejected),
// per path_security.rs's discover_config_paths / discover_protected_configs.
func (v *Validator) UpdateRoots(roots []string) {
	resolved := make([]string, 0, len(roots))
	for _, r := range roots {
		if abs, err := filepath.Abs(r); err == nil {
			resolved = append(resolved, filepath.Clean(abs))
		}
	}

	var configs []string
	var protectedDirs []string
	for _, r := range resolved {
		configs = append(configs, discoverConfigPaths(r)...)
		protectedDirs = append(protectedDirs, ancestorDirs(r)...)
	}

	userConfigPath := ""
	if dir, err := os.UserConfigDir(); err == nil {
		userConfigPath = filepath.Join(dir, "catenary", "config.toml")
	}

	v.mu.Lock()
	v.roots = resolved
	v.configPaths = configs
	v.protectedDirs = protectedDirs
	v.userConfigPath = userConfigPath
	v.mu.Unlock()
}

// ancestorDirs returns root and every directory above it up to the
// filesystem root, the set of directories where a project-local
// .catenary.toml is considered a protected configuration file.
func ancestorDirs(root string) []string {
	var dirs []string
	dir := root
	for {
		dirs = append(dirs, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dirs
}

// discoverConfigPaths walks up from root looking for recognized config
// file names in each ancestor directory, stopping at the filesystem root.
func discoverConfigPaths(root string) []string {
	var found []string
	dir := root
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				found = append(found, candidate)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return found
}

// isWithinRoots reports whether canonical path p is contained in any
// configured root or config-file ancestor directory.
func (v *Validator) isWithinRoots(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, root := range v.roots {
		if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
			return true
		}
	}
	for _, cfg := range v.configPaths {
		if p == cfg {
			return true
		}
	}
	return false
}

// isConfigFile reports whether p's base name is one of the recognized
// tool-config file names, regardless of location.
func isConfigFile(p string) bool {
	base := filepath.Base(p)
	for _, name := range configFileNames {
		if base == name {
			return true
		}
	}
	return false
}

// isProtectedConfig reports whether p is Catenary's own configuration: the
// user-level config file, or a project-local .catenary.toml found in a
// workspace root or one of its ancestors. Writes to these are always
// rejected regardless of whether p otherwise falls within a root.
func (v *Validator) isProtectedConfig(p string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.userConfigPath != "" && p == v.userConfigPath {
		return true
	}
	if filepath.Base(p) != ".catenary.toml" {
		return false
	}
	dir := filepath.Dir(p)
	for _, d := range v.protectedDirs {
		if d == dir {
			return true
		}
	}
	return false
}

// findExistingAncestor walks up from p until it finds a directory that
// exists, for validating writes that create a new file.
func findExistingAncestor(p string) (string, error) {
	dir := filepath.Dir(p)
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("security: no existing ancestor directory for %s", p)
		}
		dir = parent
	}
}

// ValidateRead resolves path (following symlinks) and confirms it falls
// within a configured root, a discovered ancestor config file, or is itself
// a recognized config file name. Returns the canonical, absolute path.
func (v *Validator) ValidateRead(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("security: resolving %s: %w", path, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("security: resolving %s: %w", path, err)
	}
	if v.isWithinRoots(canonical) || isConfigFile(canonical) {
		return canonical, nil
	}
	return "", fmt.Errorf("security: %s is outside the configured workspace roots", path)
}

// ValidateWrite is like ValidateRead but tolerates a path that doesn't
// exist yet, validating against its nearest existing ancestor directory
// instead, so new files can be created via rename/code-action edits.
func (v *Validator) ValidateWrite(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("security: resolving %s: %w", path, err)
	}

	if canonical, err := filepath.EvalSymlinks(abs); err == nil {
		if v.isProtectedConfig(canonical) {
			return "", fmt.Errorf("security: %s is a protected configuration file", path)
		}
		if v.isWithinRoots(canonical) {
			return canonical, nil
		}
		return "", fmt.Errorf("security: %s is outside the configured workspace roots", path)
	}

	ancestor, err := findExistingAncestor(abs)
	if err != nil {
		return "", err
	}
	canonicalAncestor, err := filepath.EvalSymlinks(ancestor)
	if err != nil {
		return "", fmt.Errorf("security: resolving %s: %w", ancestor, err)
	}
	if !v.isWithinRoots(canonicalAncestor) {
		return "", fmt.Errorf("security: %s is outside the configured workspace roots", path)
	}
	rel, err := filepath.Rel(ancestor, abs)
	if err != nil {
		return "", fmt.Errorf("security: resolving %s: %w", path, err)
	}
	target := filepath.Join(canonicalAncestor, rel)
	if v.isProtectedConfig(target) {
		return "", fmt.Errorf("security: %s is a protected configuration file", path)
	}
	return target, nil
}
