// Package fs implements state snapshots for package manager files.
package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/zerr"
)

// SnapshotStore implements ports.SnapshotStore on the local filesystem.
type SnapshotStore struct {
	logger ports.Logger
}

// NewSnapshotStore creates a SnapshotStore. Restore problems are reported to logger.
func NewSnapshotStore(logger ports.Logger) *SnapshotStore {
	return &SnapshotStore{logger: logger}
}

// Capture reads the file at path into memory. A missing file yields a
// snapshot without content. When path is a symlink the link and the file it
// resolves to are both recorded.
func (s *SnapshotStore) Capture(path string) (*domain.FileSnapshot, error) {
	link, target, err := resolveLink(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", path)
	}

	snapshot := &domain.FileSnapshot{Path: path, Link: link, Target: target}

	// #nosec G304 -- path is a lockfile or manifest below the project root
	data, err := os.ReadFile(snapshot.DataPath())
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return snapshot, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSnapshotFailed.Error()), "path", path)
	}

	snapshot.Mode = iofs.FileMode(domain.FilePerm)
	if info, statErr := os.Stat(snapshot.DataPath()); statErr == nil {
		snapshot.Mode = info.Mode().Perm()
	}

	// A present but empty file must still count as existing.
	if data == nil {
		data = []byte{}
	}
	snapshot.Content = data
	snapshot.Digest = xxhash.Sum64(data)

	return snapshot, nil
}

// resolveLink returns the raw destination and the resolved file of a symlink
// at path. Both are empty when path is not a symlink.
func resolveLink(path string) (link, target string, err error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", "", nil
		}
		return "", "", err
	}
	if info.Mode()&iofs.ModeSymlink == 0 {
		return "", "", nil
	}

	link, err = os.Readlink(path)
	if err != nil {
		return "", "", err
	}

	target, err = filepath.EvalSymlinks(path)
	if errors.Is(err, iofs.ErrNotExist) {
		// Dangling: the dry run may create the file through the link.
		target, err = link, nil
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
	}
	if err != nil {
		return "", "", err
	}
	return link, target, nil
}

// Restore puts the file back exactly as captured, including a symlink that
// was replaced by a regular file. Errors are logged and otherwise ignored so
// that restoring never masks the primary failure.
func (s *SnapshotStore) Restore(snapshot *domain.FileSnapshot) {
	if snapshot == nil {
		return
	}

	if snapshot.Link != "" {
		s.restoreLink(snapshot)
	}

	dataPath := snapshot.DataPath()

	if !snapshot.Existed() {
		if err := os.Remove(dataPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			s.warn(zerr.With(zerr.Wrap(err, "failed to remove file created during install"), "path", dataPath))
		}
		return
	}

	// #nosec G304 -- same path that was captured
	if current, err := os.ReadFile(dataPath); err == nil && xxhash.Sum64(current) == snapshot.Digest {
		return
	}

	if err := atomicWriteFile(dataPath, snapshot.Content, snapshot.Mode); err != nil {
		// Rename can fail across mounts or on read-only parents; try in place.
		if err := os.WriteFile(dataPath, snapshot.Content, snapshot.Mode); err != nil {
			s.warn(zerr.With(zerr.Wrap(err, "failed to restore file"), "path", dataPath))
		}
	}
}

// restoreLink recreates the symlink at snapshot.Path when a tool replaced it.
func (s *SnapshotStore) restoreLink(snapshot *domain.FileSnapshot) {
	if current, err := os.Readlink(snapshot.Path); err == nil && current == snapshot.Link {
		return
	}

	if err := os.Remove(snapshot.Path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		s.warn(zerr.With(zerr.Wrap(err, "failed to restore symlink"), "path", snapshot.Path))
		return
	}
	if err := os.Symlink(snapshot.Link, snapshot.Path); err != nil {
		s.warn(zerr.With(zerr.Wrap(err, "failed to restore symlink"), "path", snapshot.Path))
	}
}

func (s *SnapshotStore) warn(err error) {
	if s.logger != nil {
		s.logger.Error(err)
	}
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte, mode iofs.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".guard-restore-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
