package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/fsutil"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/pack"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// Publisher places the built executables and the version marker into the
// per-user runtime tree and its staging mirror.
type Publisher struct {
	Layout *workspace.Layout
	Logger *log.Logger
}

// Publish copies both executable variants into the services subtree of
// both runtime trees (created if absent) and the version marker into
// both tree roots. A missing executable or marker is fatal.
func (p *Publisher) Publish() error {
	p.Logger.Info("publishing artifacts", "dest", p.Layout.UserHomebrewDir)

	services := filepath.Join(p.Layout.HomebrewDir, "services")
	userServices := filepath.Join(p.Layout.UserHomebrewDir, "services")
	for _, dir := range []string{services, userServices} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeDirectoryFailed, "create services directory", err)
		}
	}

	for _, name := range []string{pack.ConsoleName, pack.DetachedName} {
		exe := name + pack.ExeSuffix()
		built := filepath.Join(p.Layout.DistDir, exe)
		if _, err := os.Stat(built); err != nil {
			return errors.New(errors.ErrCodeExecutableMissing,
				fmt.Sprintf("built executable not found: %s", built))
		}
		for _, dir := range []string{services, userServices} {
			if err := fsutil.CopyFile(built, filepath.Join(dir, exe)); err != nil {
				return errors.Wrap(errors.ErrCodeCopyFailed, "copy executable", err)
			}
		}
	}

	marker := filepath.Join(p.Layout.SrcDir, "dist", workspace.MarkerName)
	if _, err := os.Stat(marker); err != nil {
		return errors.New(errors.ErrCodeMarkerMissing,
			fmt.Sprintf("version marker not found: %s", marker))
	}
	for _, dir := range []string{p.Layout.HomebrewDir, p.Layout.UserHomebrewDir} {
		if err := fsutil.CopyFile(marker, filepath.Join(dir, workspace.MarkerName)); err != nil {
			return errors.Wrap(errors.ErrCodeCopyFailed, "copy version marker", err)
		}
	}

	p.Logger.Info("published artifacts", "services", userServices)
	return nil
}
