package frontend

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// Builder drives the external bundler to produce the static frontend
// assets.
type Builder struct {
	Runner    exec.Runner
	Env       *deps.Env
	Logger    *log.Logger
	Artifacts *workspace.ArtifactSet
}

// Build installs frontend dependencies and runs the production build
// inside dir. The version marker and the generated build script are
// transient artifacts registered for cleanup. The first non-zero exit
// from either step aborts with the combined tool output in the error.
func (b *Builder) Build(dir, release string) error {
	if _, err := os.Stat(dir); err != nil {
		return errors.NewFrontendMissingError(dir)
	}

	if err := workspace.WriteMarker(dir, release); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "write frontend version marker", err)
	}
	b.Artifacts.Register(filepath.Join(dir, workspace.MarkerName))

	script, err := b.writeBuildScript(dir)
	if err != nil {
		return err
	}

	b.Logger.Info("building frontend", "dir", dir)
	result, err := b.Runner.Run(exec.Step{
		Name:  "frontend build",
		Shell: script,
		Dir:   dir,
		Env:   b.Env.Environ(),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeFrontendBuildFailed, "frontend build did not start", err)
	}
	if result.ExitCode != 0 {
		return errors.New(errors.ErrCodeFrontendBuildFailed,
			fmt.Sprintf("frontend build exited with code %d:\n%s",
				result.ExitCode, strings.TrimSpace(result.CombinedOutput()))).
			WithSuggestion("Run 'pnpm i' and 'pnpm run build' in the frontend directory to reproduce")
	}

	b.Logger.Info("frontend build completed")
	return nil
}

// writeBuildScript generates the transient install-then-build script and
// registers it for cleanup. The script aborts on the first failing step.
func (b *Builder) writeBuildScript(dir string) (string, error) {
	var name, content string
	if runtime.GOOS == "windows" {
		name = fmt.Sprintf("build-%s.cmd", uuid.NewString())
		content = "@echo off\r\npnpm i\r\nif errorlevel 1 exit /b 1\r\npnpm run build\r\n"
	} else {
		name = fmt.Sprintf("build-%s.sh", uuid.NewString())
		content = "#!/bin/sh\nset -e\npnpm i\npnpm run build\n"
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileWriteFailed, "write frontend build script", err)
	}
	b.Artifacts.Register(path)

	if runtime.GOOS == "windows" {
		return path, nil
	}
	return "sh " + path, nil
}
