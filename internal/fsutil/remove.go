package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hbtools/deckybuild/internal/log"
)

// Outcome reports how a removal attempt ended. Removal is advisory:
// a leftover directory must not abort an otherwise recoverable run,
// so Remove never returns an error.
type Outcome int

const (
	// OutcomeSkipped means the path did not exist
	OutcomeSkipped Outcome = iota
	// OutcomeClean means the whole subtree was removed
	OutcomeClean
	// OutcomePartial means retries were exhausted and remnants may remain
	OutcomePartial
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeClean:
		return "clean"
	case OutcomePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Remover deletes directory trees with retries. Windows frequently holds
// handles on freshly written files (indexers, antivirus), so a failed
// pass is retried after a fixed delay instead of failing the run.
type Remover struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      *log.Logger
}

// NewRemover creates a Remover with the standard retry policy.
func NewRemover(logger *log.Logger) *Remover {
	return &Remover{
		MaxAttempts: 3,
		Delay:       time.Second,
		Logger:      logger,
	}
}

// Remove deletes path recursively, best-effort. Version-control metadata
// under the tree is stripped of restrictive permission bits first so
// read-only pack files can be unlinked. Per-file failures are swallowed;
// exhausting all attempts logs a warning and reports OutcomePartial.
func (r *Remover) Remove(path string) Outcome {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return OutcomeSkipped
	}

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		r.unlockVCSMetadata(path)

		err := os.RemoveAll(path)
		if err == nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				return OutcomeClean
			}
		}

		if attempt < r.MaxAttempts {
			r.Logger.Debug("removal attempt failed, retrying",
				"path", path, "attempt", attempt, "error", errString(err))
			time.Sleep(r.Delay)
		}
	}

	r.Logger.Warn("could not fully remove directory, continuing anyway", "path", path)
	return OutcomePartial
}

// unlockVCSMetadata makes every file under a .git subtree writable and
// unlinks it. Git marks pack files read-only, which blocks RemoveAll on
// Windows. All errors here are deliberately ignored.
func (r *Remover) unlockVCSMetadata(root string) {
	gitDir := filepath.Join(root, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		return
	}

	_ = filepath.WalkDir(gitDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		_ = os.Chmod(path, 0o777)
		_ = os.Remove(path)
		return nil
	})
}

func errString(err error) string {
	if err == nil {
		return "leftover entries"
	}
	return err.Error()
}
