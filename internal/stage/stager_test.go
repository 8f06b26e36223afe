package stage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newStager(t *testing.T, fake *exec.FakeRunner) *Stager {
	t.Helper()
	root := t.TempDir()
	layout := workspace.NewLayoutWithHome(root, filepath.Join(root, "home"))
	return &Stager{
		Layout: layout,
		Runner: fake,
		Env:    deps.NewEnvFrom([]string{"PATH=/usr/bin"}),
		Logger: log.Default(),
	}
}

// seedSources creates a minimal fetched source tree.
func seedSources(t *testing.T, s *Stager) {
	t.Helper()
	backend := s.Layout.BackendDir()
	writeFile(t, filepath.Join(backend, "main.py"), "entry")
	writeFile(t, filepath.Join(backend, "decky_loader", "__init__.py"), "pkg")
	writeFile(t, filepath.Join(backend, "decky_loader", "static", "index.html"), "static")
	writeFile(t, filepath.Join(s.Layout.FrontendDir(), "dist", "bundle.js"), "bundle")
	writeFile(t, filepath.Join(s.Layout.AppDir, "plugin", "manifest.json"), "{}")
}

func TestStageAssemblesLayout(t *testing.T) {
	s := newStager(t, exec.NewFakeRunner())
	seedSources(t, s)

	require.NoError(t, s.Stage("v2.10.3"))

	src := s.Layout.SrcDir
	for _, path := range []string{
		filepath.Join(src, "main.py"),
		filepath.Join(src, "decky_loader", "__init__.py"),
		filepath.Join(src, "static", "bundle.js"),
		filepath.Join(src, "plugin", "manifest.json"),
	} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	marker, err := workspace.ReadMarker(filepath.Join(src, "dist"))
	require.NoError(t, err)
	assert.Equal(t, "v2.10.3", marker)
}

func TestStageIsIdempotent(t *testing.T) {
	s := newStager(t, exec.NewFakeRunner())
	seedSources(t, s)

	require.NoError(t, s.Stage("v2.10.3"))
	require.NoError(t, s.Stage("v2.10.3"))

	data, err := os.ReadFile(filepath.Join(s.Layout.SrcDir, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "entry", string(data))
}

func TestStageMissingBackendIsFatal(t *testing.T) {
	s := newStager(t, exec.NewFakeRunner())

	err := s.Stage("v2.10.3")
	require.Error(t, err)

	var buildErr *errors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errors.ErrCodeBackendMissing, buildErr.Code)
}

func TestStageMissingLoaderPackageIsFatal(t *testing.T) {
	s := newStager(t, exec.NewFakeRunner())
	writeFile(t, filepath.Join(s.Layout.BackendDir(), "main.py"), "entry")

	err := s.Stage("v2.10.3")
	require.Error(t, err)

	var buildErr *errors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errors.ErrCodeLoaderPkgMissing, buildErr.Code)
}

func TestStageToleratesMissingOptionalSubtrees(t *testing.T) {
	s := newStager(t, exec.NewFakeRunner())
	backend := s.Layout.BackendDir()
	writeFile(t, filepath.Join(backend, "main.py"), "entry")
	writeFile(t, filepath.Join(backend, "decky_loader", "__init__.py"), "pkg")

	require.NoError(t, s.Stage("main"))

	_, err := os.Stat(filepath.Join(s.Layout.SrcDir, "static"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(s.Layout.SrcDir, "plugin"))
	assert.True(t, os.IsNotExist(err))
}

func TestInstallRequirementsWithRequirementsFile(t *testing.T) {
	fake := exec.NewFakeRunner()
	s := newStager(t, fake)
	writeFile(t, filepath.Join(s.Layout.BackendDir(), "requirements.txt"), "aiohttp")

	require.NoError(t, s.InstallRequirements())

	joined := strings.Join(fake.CommandLines(), "\n")
	assert.Contains(t, joined, "pip install -r")
	assert.NotContains(t, joined, "poetry")
}

func TestInstallRequirementsWithPoetryProject(t *testing.T) {
	fake := exec.NewFakeRunner()
	s := newStager(t, fake)
	writeFile(t, filepath.Join(s.Layout.BackendDir(), "pyproject.toml"), "[tool.poetry]")

	require.NoError(t, s.InstallRequirements())

	joined := strings.Join(fake.CommandLines(), "\n")
	assert.Contains(t, joined, "pip install poetry")
	assert.Contains(t, joined, "poetry install")
}

func TestInstallRequirementsWithoutManifestsWarnsOnly(t *testing.T) {
	fake := exec.NewFakeRunner()
	s := newStager(t, fake)
	require.NoError(t, os.MkdirAll(s.Layout.BackendDir(), 0o755))

	require.NoError(t, s.InstallRequirements())
	assert.Empty(t, fake.Calls)
}

func TestInstallRequirementsFailureIsFatal(t *testing.T) {
	fake := exec.NewFakeRunner().
		On("pip install -r", exec.FakeResponse{ExitCode: 1, Stderr: "No matching distribution"})
	s := newStager(t, fake)
	writeFile(t, filepath.Join(s.Layout.BackendDir(), "requirements.txt"), "aiohttp")

	err := s.InstallRequirements()
	require.Error(t, err)

	var buildErr *errors.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, errors.ErrCodeRequirementsInstall, buildErr.Code)
}
