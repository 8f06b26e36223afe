package workspace

import (
	"sync"

	"github.com/hbtools/deckybuild/internal/fsutil"
)

// ArtifactSet tracks paths created mid-run (generated scripts, downloaded
// installers, intermediate files) so they are released on every exit
// path. Release is advisory: leftovers are logged, never fatal.
type ArtifactSet struct {
	mu      sync.Mutex
	paths   []string
	remover *fsutil.Remover
}

// NewArtifactSet creates an empty artifact set.
func NewArtifactSet(remover *fsutil.Remover) *ArtifactSet {
	return &ArtifactSet{remover: remover}
}

// Register adds a path to be removed when the run ends.
func (a *ArtifactSet) Register(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paths = append(a.paths, path)
}

// Paths returns a copy of the registered paths.
func (a *ArtifactSet) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.paths...)
}

// Release removes every registered artifact, most recent first, and
// clears the set. Failures are swallowed by the remover.
func (a *ArtifactSet) Release() {
	a.mu.Lock()
	paths := a.paths
	a.paths = nil
	a.mu.Unlock()

	for i := len(paths) - 1; i >= 0; i-- {
		a.remover.Remove(paths[i])
	}
}
