//go:build !windows

package hostenv

import (
	"github.com/hbtools/deckybuild/internal/deps"
	"github.com/hbtools/deckybuild/internal/exec"
)

// noopIntegrator stands in on hosts without the companion application's
// registry and shortcut machinery. Every capability succeeds without
// touching the system, so non-target development runs complete.
type noopIntegrator struct{}

// NewIntegrator creates the host integrator for this platform.
func NewIntegrator(_ exec.Runner, _ *deps.Env) Integrator {
	return noopIntegrator{}
}

func (noopIntegrator) LocateCompanionApp() (string, error) { return "", nil }
func (noopIntegrator) CreateFlagFile(string) error         { return nil }
func (noopIntegrator) CreateShortcut(Shortcut) error       { return nil }
func (noopIntegrator) CreateAutostartEntry(Shortcut) error { return nil }
