package deps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbtools/deckybuild/internal/config"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/fsutil"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SettleDelay = 0
	cfg.ProbeDelay = 0
	return cfg
}

func newChecker(t *testing.T, fake *exec.FakeRunner) *Checker {
	t.Helper()
	cfg := testConfig()
	logger := log.Default()
	env := NewEnvFrom([]string{"PATH=/usr/bin"})
	artifacts := workspace.NewArtifactSet(fsutil.NewRemover(logger))

	installer := NewNodeInstaller(fake, env, cfg, logger, artifacts, t.TempDir())
	installer.Download = func(url, dest string) error {
		t.Fatalf("unexpected download of %s", url)
		return nil
	}

	return &Checker{
		Runner:    fake,
		Env:       env,
		Config:    cfg,
		Logger:    logger,
		Installer: installer,
	}
}

func allToolsPresent() *exec.FakeRunner {
	return exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{Stdout: "git version 2.43.0"}).
		On("node --version", exec.FakeResponse{Stdout: "v18.18.0"}).
		On("npm --version", exec.FakeResponse{Stdout: "9.8.1"}).
		On("pnpm --version", exec.FakeResponse{Stdout: "8.10.0"}).
		On("python --version", exec.FakeResponse{Stdout: "Python 3.11.5"})
}

func TestCheckAllToolsPresent(t *testing.T) {
	fake := allToolsPresent()
	checker := newChecker(t, fake)

	require.NoError(t, checker.Check())

	for _, line := range fake.CommandLines() {
		assert.NotContains(t, line, "npm i -g pnpm", "nothing should be installed")
		assert.NotContains(t, line, "msiexec")
	}
}

func TestCheckGitMissingIsFatal(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{ExitCode: 127, Stderr: "not found"})
	checker := newChecker(t, fake)

	err := checker.Check()
	require.Error(t, err)

	var buildErr *errors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errors.ErrCodeToolMissing, buildErr.Code)
	assert.Contains(t, err.Error(), "git")
}

func TestCheckNpmMissingIsFatal(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{Stdout: "git version 2.43.0"}).
		On("node --version", exec.FakeResponse{Stdout: "v18.18.0"}).
		On("npm --version", exec.FakeResponse{ExitCode: 127})
	checker := newChecker(t, fake)

	err := checker.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "npm")
}

func TestCheckInstallsMissingPnpm(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{Stdout: "git version 2.43.0"}).
		On("node --version", exec.FakeResponse{Stdout: "v18.18.0"}).
		On("npm --version", exec.FakeResponse{Stdout: "9.8.1"}).
		On("npm i -g pnpm", exec.FakeResponse{}).
		On("pnpm --version",
			exec.FakeResponse{ExitCode: 127},
			exec.FakeResponse{Stdout: "8.10.0"}).
		On("python --version", exec.FakeResponse{Stdout: "Python 3.11.5"})
	checker := newChecker(t, fake)

	require.NoError(t, checker.Check())

	joined := strings.Join(fake.CommandLines(), "\n")
	assert.Contains(t, joined, "npm i -g pnpm")
}

func TestCheckPnpmInstallFailureIsFatal(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{Stdout: "git version 2.43.0"}).
		On("node --version", exec.FakeResponse{Stdout: "v18.18.0"}).
		On("npm --version", exec.FakeResponse{Stdout: "9.8.1"}).
		On("npm i -g pnpm", exec.FakeResponse{ExitCode: 1, Stderr: "EACCES"}).
		On("pnpm --version", exec.FakeResponse{ExitCode: 127})
	checker := newChecker(t, fake)

	err := checker.Check()
	require.Error(t, err)

	var buildErr *errors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errors.ErrCodeToolInstallFailed, buildErr.Code)
}

func TestCheckWrongNodeVersionTriggersInstaller(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("git --version", exec.FakeResponse{Stdout: "git version 2.43.0"}).
		On("node --version",
			exec.FakeResponse{Stdout: "v16.20.0"},
			exec.FakeResponse{Stdout: "v18.18.0"}).
		On("npm --version", exec.FakeResponse{Stdout: "9.8.1"}).
		On("pnpm --version", exec.FakeResponse{Stdout: "8.10.0"}).
		On("python --version", exec.FakeResponse{Stdout: "Python 3.11.5"})
	checker := newChecker(t, fake)
	checker.Installer.Download = func(url, dest string) error {
		return writeFakeInstaller(dest)
	}

	require.NoError(t, checker.Check())

	joined := strings.Join(fake.CommandLines(), "\n")
	assert.Contains(t, joined, "msiexec /i")
}
