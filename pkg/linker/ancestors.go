package linker

import (
	"path/filepath"
)

// Ancestors returns start and every parent directory above it, closest
// first. The walk is bounded: it stops as soon as the computed parent no
// longer differs from the current directory, which is how filepath.Dir
// behaves at the filesystem root.
func Ancestors(start string) []string {
	current := filepath.Clean(start)
	dirs := make([]string, 0, 8)
	for {
		dirs = append(dirs, current)
		parent := filepath.Dir(current)
		if parent == current {
			return dirs
		}
		current = parent
	}
}
