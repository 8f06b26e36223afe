package hostenv

import (
	"os"
	"path/filepath"

	"github.com/hbtools/deckybuild/internal/errors"
	"github.com/hbtools/deckybuild/internal/log"
	"github.com/hbtools/deckybuild/internal/pack"
	"github.com/hbtools/deckybuild/internal/workspace"
)

// DebugFlagName enables the companion app's remote debugging mode when
// present in its install directory.
const DebugFlagName = ".cef-enable-remote-debugging"

// Setup wires the produced artifacts into the host: companion-app debug
// mode, a debug-enabled launcher shortcut, and an autostart entry for
// the detached executable. Every step is required; being the last
// stage, a rerun after fixing host state is always safe.
type Setup struct {
	Integrator Integrator
	Layout     *workspace.Layout
	Logger     *log.Logger

	// DesktopDir receives the debug launcher shortcut
	DesktopDir string

	// StartupDir receives the autostart entry
	StartupDir string
}

// NewSetup creates a Setup with the host's standard shortcut locations.
func NewSetup(integrator Integrator, layout *workspace.Layout, logger *log.Logger) *Setup {
	s := &Setup{
		Integrator: integrator,
		Layout:     layout,
		Logger:     logger,
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.DesktopDir = filepath.Join(home, "Desktop")
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		s.StartupDir = filepath.Join(appData, "Microsoft", "Windows", "Start Menu", "Programs", "Startup")
	}
	return s
}

// Configure runs all host integration steps. Any single failure is
// fatal for the run: the produced artifacts are unusable without the
// debug flag and autostart hook.
func (s *Setup) Configure() error {
	companionDir, err := s.Integrator.LocateCompanionApp()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCompanionNotFound, "companion app not found", err).
			WithSuggestion("Install Steam and rerun the build").
			WithSuggestion("Rerunning only repeats this final stage's work")
	}

	flagPath := filepath.Join(companionDir, DebugFlagName)
	if err := s.Integrator.CreateFlagFile(flagPath); err != nil {
		return errors.Wrap(errors.ErrCodeFlagFileFailed, "create remote debugging flag", err)
	}
	s.Logger.Info("created remote debugging flag", "path", flagPath)

	if err := s.Integrator.CreateShortcut(Shortcut{
		LinkPath:  filepath.Join(s.DesktopDir, "Steam.lnk"),
		Target:    filepath.Join(companionDir, "steam"+pack.ExeSuffix()),
		Arguments: "-dev",
	}); err != nil {
		return errors.Wrap(errors.ErrCodeShortcutFailed, "create debug launcher shortcut", err)
	}
	s.Logger.Info("created debug launcher shortcut")

	servicesDir := filepath.Join(s.Layout.UserHomebrewDir, "services")
	if err := s.Integrator.CreateAutostartEntry(Shortcut{
		LinkPath:   filepath.Join(s.StartupDir, "PluginLoader.lnk"),
		Target:     filepath.Join(servicesDir, pack.DetachedName+pack.ExeSuffix()),
		WorkingDir: servicesDir,
	}); err != nil {
		return errors.Wrap(errors.ErrCodeAutostartFailed, "create autostart entry", err)
	}
	s.Logger.Info("created autostart entry")

	return nil
}
