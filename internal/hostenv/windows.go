//go:build windows

package hostenv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/exec"
)

// steamRegistryKeys are checked in order for the Steam install path.
var steamRegistryKeys = []string{
	`SOFTWARE\WOW6432Node\Valve\Steam`,
	`SOFTWARE\Valve\Steam`,
}

// WindowsIntegrator implements Integrator against the Windows registry
// and the WScript.Shell COM object.
type WindowsIntegrator struct {
	Runner exec.Runner
	Env    *deps.Env
}

// NewIntegrator creates the host integrator for this platform.
func NewIntegrator(runner exec.Runner, env *deps.Env) Integrator {
	return &WindowsIntegrator{Runner: runner, Env: env}
}

// LocateCompanionApp reads the Steam install path from the registry and
// verifies the executable exists there.
func (w *WindowsIntegrator) LocateCompanionApp() (string, error) {
	for _, keyPath := range steamRegistryKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		installPath, _, err := key.GetStringValue("InstallPath")
		key.Close()
		if err != nil || installPath == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(installPath, "steam.exe")); err != nil {
			continue
		}
		return installPath, nil
	}
	return "", fmt.Errorf("steam installation not found in registry")
}

// CreateFlagFile creates an empty marker file.
func (w *WindowsIntegrator) CreateFlagFile(path string) error {
	return os.WriteFile(path, nil, 0o644)
}

// CreateShortcut creates a .lnk entry through WScript.Shell.
func (w *WindowsIntegrator) CreateShortcut(sc Shortcut) error {
	script := buildShortcutScript(sc)
	result, err := w.Runner.Run(exec.Step{
		Name: "create shortcut",
		Argv: []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", script},
		Env:  w.Env.Environ(),
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("shortcut creation exited with code %d: %s",
			result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// CreateAutostartEntry is a shortcut placed in the startup folder.
func (w *WindowsIntegrator) CreateAutostartEntry(sc Shortcut) error {
	return w.CreateShortcut(sc)
}

func buildShortcutScript(sc Shortcut) string {
	var b strings.Builder
	b.WriteString("$ws = New-Object -ComObject WScript.Shell; ")
	fmt.Fprintf(&b, "$s = $ws.CreateShortcut(%s); ", psQuote(sc.LinkPath))
	fmt.Fprintf(&b, "$s.TargetPath = %s; ", psQuote(sc.Target))
	if sc.Arguments != "" {
		fmt.Fprintf(&b, "$s.Arguments = %s; ", psQuote(sc.Arguments))
	}
	if sc.WorkingDir != "" {
		fmt.Fprintf(&b, "$s.WorkingDirectory = %s; ", psQuote(sc.WorkingDir))
	}
	b.WriteString("$s.Save()")
	return b.String()
}

// psQuote single-quotes a string for PowerShell, doubling embedded
// quotes.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
