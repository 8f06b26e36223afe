package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/fsutil"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// Stager assembles the packaging-ready runtime layout from the fetched
// sources and the built frontend assets.
type Stager struct {
	Layout *workspace.Layout
	Runner exec.Runner
	Env    *deps.Env
	Logger *log.Logger
}

// Stage merges the backend runtime package, the frontend static bundle,
// and plugin resources into the staging tree. The merge is idempotent:
// directories are created if absent, files overwritten if present.
// A missing backend root is fatal; optional resource subtrees are
// tolerated when absent.
func (s *Stager) Stage(release string) error {
	s.Logger.Info("staging backend", "dest", s.Layout.SrcDir)

	distDir := filepath.Join(s.Layout.SrcDir, "dist")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "create staging dist directory", err)
	}

	backendDir := s.Layout.BackendDir()
	if _, err := os.Stat(backendDir); err != nil {
		return errors.NewBackendMissingError(backendDir)
	}

	entrypoint := filepath.Join(backendDir, "main.py")
	if err := fsutil.CopyFile(entrypoint, filepath.Join(s.Layout.SrcDir, "main.py")); err != nil {
		return errors.Wrap(errors.ErrCodeCopyFailed, "copy backend entrypoint", err)
	}

	loaderPkg := filepath.Join(backendDir, "decky_loader")
	if _, err := os.Stat(loaderPkg); err != nil {
		return errors.New(errors.ErrCodeLoaderPkgMissing,
			fmt.Sprintf("decky_loader package not found in %s", backendDir))
	}
	if err := fsutil.CopyTree(loaderPkg, filepath.Join(s.Layout.SrcDir, "decky_loader")); err != nil {
		return errors.Wrap(errors.ErrCodeCopyFailed, "copy backend package", err)
	}

	// Optional subtrees: absent in older releases.
	if err := s.copyOptional(filepath.Join(s.Layout.FrontendDir(), "dist"), filepath.Join(s.Layout.SrcDir, "static")); err != nil {
		return err
	}
	if err := s.copyOptional(filepath.Join(s.Layout.AppDir, "plugin"), filepath.Join(s.Layout.SrcDir, "plugin")); err != nil {
		return err
	}

	if err := workspace.WriteMarker(distDir, release); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write staging version marker", err)
	}

	s.Logger.Info("backend staging completed")
	return nil
}

func (s *Stager) copyOptional(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		s.Logger.Debug("optional subtree absent, skipping", "src", src)
		return nil
	}
	if err := fsutil.CopyTree(src, dst); err != nil {
		return errors.Wrap(errors.ErrCodeCopyFailed, fmt.Sprintf("copy %s", src), err)
	}
	return nil
}

// InstallRequirements installs the backend's Python dependencies:
// requirements.txt through pip when present, a poetry project otherwise.
// Neither file present is only a warning.
func (s *Stager) InstallRequirements() error {
	backendDir := s.Layout.BackendDir()

	requirements := filepath.Join(backendDir, "requirements.txt")
	if _, err := os.Stat(requirements); err == nil {
		return s.runInstall("pip install", exec.Step{
			Name:  "pip install",
			Shell: "pip install -r " + requirements,
			Env:   s.Env.Environ(),
		})
	}

	pyproject := filepath.Join(backendDir, "pyproject.toml")
	if _, err := os.Stat(pyproject); err == nil {
		if err := s.runInstall("poetry bootstrap", exec.Step{
			Name:  "poetry bootstrap",
			Shell: "pip install poetry",
			Env:   s.Env.Environ(),
		}); err != nil {
			return err
		}
		return s.runInstall("poetry install", exec.Step{
			Name:  "poetry install",
			Shell: "poetry install",
			Dir:   backendDir,
			Env:   s.Env.Environ(),
		})
	}

	s.Logger.Warn("no requirements.txt or pyproject.toml found, skipping backend dependencies")
	return nil
}

func (s *Stager) runInstall(what string, step exec.Step) error {
	s.Logger.Info("installing backend requirements", "step", what)
	result, err := s.Runner.Run(step)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRequirementsInstall, what+" did not start", err)
	}
	if result.ExitCode != 0 {
		return errors.New(errors.ErrCodeRequirementsInstall,
			fmt.Sprintf("%s exited with code %d: %s",
				what, result.ExitCode, strings.TrimSpace(result.CombinedOutput())))
	}
	return nil
}
