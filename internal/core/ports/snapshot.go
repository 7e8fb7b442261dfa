package ports

import "go.trai.ch/guard/internal/core/domain"

// SnapshotStore captures package manager state files and puts them back.
//
//go:generate mockgen -source=snapshot.go -destination=mocks/mock_snapshot.go -package=mocks
type SnapshotStore interface {
	// Capture reads the file at path. A missing file is recorded, not reported.
	Capture(path string) (*domain.FileSnapshot, error)

	// Restore writes the captured content back, or deletes the file if it
	// did not exist. It never fails; I/O errors are absorbed.
	Restore(snapshot *domain.FileSnapshot)
}
