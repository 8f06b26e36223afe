package deps

import (
	"fmt"
	"strings"

	"github.com/hbtools/deckybuild/internal/config"
	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/exec"
	"github.com/hbtools/deckybuild/internal/log"
)

// Checker verifies the external tools the pipeline depends on and
// installs the ones it is allowed to install. Policy per tool:
//
//   - git, npm, python: entirely absent is an immediate fatal abort.
//   - pnpm: installed once through npm, then re-probed; still missing is fatal.
//   - node: must match the pinned version; the installer replaces it otherwise.
type Checker struct {
	Runner    exec.Runner
	Env       *Env
	Config    *config.Config
	Logger    *log.Logger
	Installer *NodeInstaller
}

// Check probes every required tool in order. The search-path context is
// mutated in place when the installer adds tool directories.
func (c *Checker) Check() error {
	c.Logger.Info("checking dependencies")

	if err := c.requireTool("git"); err != nil {
		return err
	}

	if err := c.ensureNode(); err != nil {
		return err
	}

	if err := c.requireTool("npm"); err != nil {
		return err
	}

	if err := c.ensurePnpm(); err != nil {
		return err
	}

	if err := c.requireTool("python"); err != nil {
		return err
	}

	c.Logger.Info("all dependencies are satisfied")
	return nil
}

// requireTool probes a tool that must already be present.
func (c *Checker) requireTool(tool string) error {
	version, err := exec.Probe(c.Runner, c.Env.Environ(), tool)
	if err != nil {
		return errors.NewToolMissingError(tool)
	}
	c.Logger.Info("tool found", "tool", tool, "version", version)
	return nil
}

// ensurePnpm installs pnpm through npm when it is missing. One install
// attempt; a failed re-probe afterwards is fatal.
func (c *Checker) ensurePnpm() error {
	if version, err := exec.Probe(c.Runner, c.Env.Environ(), "pnpm"); err == nil {
		c.Logger.Info("tool found", "tool", "pnpm", "version", version)
		return nil
	}

	c.Logger.Info("pnpm not found, installing through npm")
	result, err := c.Runner.Run(exec.Step{
		Name:  "install pnpm",
		Shell: "npm i -g pnpm",
		Env:   c.Env.Environ(),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeToolInstallFailed, "failed to install pnpm", err)
	}
	if result.ExitCode != 0 {
		return errors.New(errors.ErrCodeToolInstallFailed,
			fmt.Sprintf("npm i -g pnpm exited with code %d: %s",
				result.ExitCode, strings.TrimSpace(result.CombinedOutput()))).
			WithSuggestion("Run 'npm i -g pnpm' manually and retry")
	}

	version, err := exec.Probe(c.Runner, c.Env.Environ(), "pnpm")
	if err != nil {
		return errors.Wrap(errors.ErrCodeToolInstallFailed, "pnpm still missing after install", err)
	}
	c.Logger.Info("installed pnpm", "version", version)
	return nil
}

// ensureNode verifies the pinned Node.js version, delegating to the
// installer when the probe fails or the version does not match.
func (c *Checker) ensureNode() error {
	version, err := exec.Probe(c.Runner, c.Env.Environ(), "node")
	if err == nil && c.Installer.Matches(version) {
		c.Logger.Info("tool found", "tool", "node", "version", version)
		return nil
	}

	if err == nil {
		c.Logger.Info("wrong node version on path", "found", version, "pinned", c.Config.NodeVersion)
	} else {
		c.Logger.Info("node not found, installing", "pinned", c.Config.NodeVersion)
	}

	return c.Installer.Ensure()
}
