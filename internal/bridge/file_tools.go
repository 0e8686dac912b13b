package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listDirectory renders a sorted listing of dir grouped as directories
// (trailing "/"), then files (with byte size), then symlinks (shown as
// "name -> target", never followed). Grounded on file_tools.rs's
// handle_list_directory.
func listDirectory(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("bridge: %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("bridge: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("bridge: reading directory %s: %w", dir, err)
	}

	var dirs, files, symlinks []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		lstat, err := os.Lstat(path)
		if err != nil {
			continue
		}
		if lstat.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				target = "?"
			}
			symlinks = append(symlinks, fmt.Sprintf("%s -> %s", entry.Name(), target))
			continue
		}
		if lstat.IsDir() {
			dirs = append(dirs, entry.Name()+"/")
			continue
		}
		files = append(files, fmt.Sprintf("%s (%d bytes)", entry.Name(), lstat.Size()))
	}

	sort.Strings(dirs)
	sort.Strings(files)
	sort.Strings(symlinks)

	all := append(append(dirs, files...), symlinks...)
	if len(all) == 0 {
		return "Directory is empty", nil
	}
	return strings.Join(all, "\n"), nil
}
