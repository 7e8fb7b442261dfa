package pipeline

import (
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
)

// stateGuard owns the lockfile and manifest snapshots for one run.
//
// Restore may be called any number of times. Release restores unless the
// run was committed, which only happens after the sandboxed build succeeded:
// the real install is meant to persist, so nothing after the dry-run region
// is transactional.
type stateGuard struct {
	store     ports.SnapshotStore
	snapshots []*domain.FileSnapshot
	committed bool
}

func captureState(store ports.SnapshotStore, paths ...string) (*stateGuard, error) {
	g := &stateGuard{store: store}
	for _, path := range paths {
		snap, err := store.Capture(path)
		if err != nil {
			g.Restore()
			return nil, err
		}
		g.snapshots = append(g.snapshots, snap)
	}
	return g, nil
}

// Restore puts every captured file back in its captured state.
func (g *stateGuard) Restore() {
	for _, snap := range g.snapshots {
		g.store.Restore(snap)
	}
}

// Commit keeps the current on-disk state when the guard is released.
func (g *stateGuard) Commit() {
	g.committed = true
}

// Release restores the captured state unless the guard was committed.
func (g *stateGuard) Release() {
	if !g.committed {
		g.Restore()
	}
}
