package pipeline

import (
	"os"
	"path/filepath"

	"go.trai.ch/guard/internal/core/domain"
)

// FindRoot walks from start towards the filesystem root and returns the
// first directory containing marker. At most domain.MaxRootDepth
// directories are inspected.
func FindRoot(start, marker string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}

	for range domain.MaxRootDepth {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// LocateRoot finds the project root for manager. The lockfile is the
// preferred marker; the manifest is used for projects that have no lockfile yet.
func LocateRoot(start string, manager domain.PackageManager) (string, bool) {
	if root, ok := FindRoot(start, manager.Lockfile); ok {
		return root, true
	}
	return FindRoot(start, manager.Manifest)
}
