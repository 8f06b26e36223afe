package deps

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/hbtools/deckybuild/internal/config"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// NodeInstaller provisions the pinned Node.js runtime. It first scans
// known install locations for an already-correct version, and only then
// downloads and runs the pinned installer.
type NodeInstaller struct {
	Runner    exec.Runner
	Env       *Env
	Config    *config.Config
	Logger    *log.Logger
	Artifacts *workspace.ArtifactSet

	// TempDir is where the downloaded installer is cached
	TempDir string

	// KnownRoots are install locations scanned for an existing runtime
	KnownRoots []string

	// NpmGlobalDir is the per-user global package directory, added to the
	// search path alongside the runtime itself
	NpmGlobalDir string

	// Download fetches a URL into a local file; swapped out in tests
	Download DownloadFunc
}

// NewNodeInstaller creates an installer with the host's standard install
// locations.
func NewNodeInstaller(runner exec.Runner, env *Env, cfg *config.Config, logger *log.Logger, artifacts *workspace.ArtifactSet, tempDir string) *NodeInstaller {
	inst := &NodeInstaller{
		Runner:    runner,
		Env:       env,
		Config:    cfg,
		Logger:    logger,
		Artifacts: artifacts,
		TempDir:   tempDir,
		Download:  HTTPDownload,
	}
	if runtime.GOOS == "windows" {
		inst.KnownRoots = []string{`C:\Program Files\nodejs`}
		if appData := os.Getenv("APPDATA"); appData != "" {
			inst.NpmGlobalDir = filepath.Join(appData, "npm")
		}
	}
	return inst
}

// Matches reports whether a probed version string equals the pinned
// major.minor.patch.
func (n *NodeInstaller) Matches(probed string) bool {
	got, err := semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(probed), "v"))
	if err != nil {
		return false
	}
	want, err := semver.NewVersion(n.Config.NodeVersion)
	if err != nil {
		return false
	}
	return got.Equal(want)
}

// Ensure makes the pinned runtime available on the search path. An
// already-correct install is adopted in place; otherwise the pinned
// installer runs silently and the tool is re-probed until it answers.
func (n *NodeInstaller) Ensure() error {
	if root, ok := n.scanKnownRoots(); ok {
		n.Logger.Info("found pinned node install", "root", root)
		n.Env.Prepend(root)
		return nil
	}

	installer, err := n.fetchInstaller()
	if err != nil {
		return err
	}

	n.uninstallConflicting(installer)

	if err := n.installSilently(installer); err != nil {
		return err
	}

	// Give the installer's deferred actions time to finish before the
	// runtime is expected to answer.
	time.Sleep(n.Config.SettleDelay)

	for _, root := range n.KnownRoots {
		n.Env.Prepend(root)
	}
	if n.NpmGlobalDir != "" {
		n.Env.Prepend(n.NpmGlobalDir)
	}

	return n.verifyInstall()
}

// scanKnownRoots probes each known install location for a binary that
// already matches the pin.
func (n *NodeInstaller) scanKnownRoots() (string, bool) {
	for _, root := range n.KnownRoots {
		bin := filepath.Join(root, "node"+exeSuffix())
		if _, err := os.Stat(bin); err != nil {
			continue
		}
		result, err := n.Runner.Run(exec.Step{
			Name: "node probe",
			Argv: []string{bin, "--version"},
			Env:  n.Env.Environ(),
		})
		if err != nil || result.ExitCode != 0 {
			continue
		}
		if n.Matches(result.Stdout) {
			return root, true
		}
	}
	return "", false
}

// fetchInstaller downloads the pinned installer, skipping the download
// when a cached copy exists. The temp tree is registered for cleanup.
func (n *NodeInstaller) fetchInstaller() (string, error) {
	if err := os.MkdirAll(n.TempDir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeDirectoryFailed, "create temp directory", err)
	}
	n.Artifacts.Register(n.TempDir)

	installer := filepath.Join(n.TempDir, filepath.Base(n.Config.NodeInstallerURL))
	if _, err := os.Stat(installer); err == nil {
		n.Logger.Info("using cached installer", "path", installer)
		return installer, nil
	}

	n.Logger.Info("downloading node installer", "url", n.Config.NodeInstallerURL)
	if err := n.Download(n.Config.NodeInstallerURL, installer); err != nil {
		return "", errors.Wrap(errors.ErrCodeInstallerDownload,
			fmt.Sprintf("failed to download installer from %s", n.Config.NodeInstallerURL), err).
			WithSuggestion("Check your network connection").
			WithSuggestion(fmt.Sprintf("Download the installer manually into %s and rerun", n.TempDir))
	}
	return installer, nil
}

// uninstallConflicting silently removes a conflicting version registered
// under the same product. Failure here is advisory: a fresh host has
// nothing to uninstall.
func (n *NodeInstaller) uninstallConflicting(installer string) {
	result, err := n.Runner.Run(exec.Step{
		Name:    "node uninstall",
		Argv:    []string{"msiexec", "/x", installer, "/qn", "/norestart"},
		Env:     n.Env.Environ(),
		Timeout: n.Config.InstallTimeout,
	})
	if err != nil || result.ExitCode != 0 {
		n.Logger.Debug("uninstall of conflicting version skipped", "error", err)
	}
}

// installSilently runs the pinned installer without UI.
func (n *NodeInstaller) installSilently(installer string) error {
	n.Logger.Info("installing node silently", "installer", installer)
	result, err := n.Runner.Run(exec.Step{
		Name:    "node install",
		Argv:    []string{"msiexec", "/i", installer, "/qn", "/norestart"},
		Env:     n.Env.Environ(),
		Timeout: n.Config.InstallTimeout,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeToolInstallFailed, "failed to run node installer", err)
	}
	if result.ExitCode != 0 {
		return errors.New(errors.ErrCodeToolInstallFailed,
			fmt.Sprintf("node installer exited with code %d", result.ExitCode)).
			WithSuggestion("Run the installer manually and rerun the build")
	}
	return nil
}

// verifyInstall re-probes the runtime with delays until it matches the
// pin; exhausting the retries is fatal.
func (n *NodeInstaller) verifyInstall() error {
	for attempt := 1; attempt <= n.Config.ProbeRetries; attempt++ {
		version, err := exec.Probe(n.Runner, n.Env.Environ(), "node")
		if err == nil && n.Matches(version) {
			n.Logger.Info("node installed", "version", version)
			return nil
		}
		if attempt < n.Config.ProbeRetries {
			n.Logger.Info("waiting for node to be available",
				"attempt", attempt, "retries", n.Config.ProbeRetries)
			time.Sleep(n.Config.ProbeDelay)
		}
	}
	return errors.New(errors.ErrCodeProbeExhausted,
		fmt.Sprintf("node %s not answering after install", n.Config.NodeVersion)).
		WithSuggestion("Restart your system so the search path change takes effect").
		WithSuggestion("Rerun the build after restarting")
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
