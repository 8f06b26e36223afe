package hostenv

// Shortcut describes a launchable entry to create on the host.
type Shortcut struct {
	// LinkPath is where the entry itself is placed
	LinkPath string
	// Target is the executable the entry launches
	Target string
	// Arguments are passed to the target
	Arguments string
	// WorkingDir is the directory the target starts in
	WorkingDir string
}

// Integrator is the host capability surface the last pipeline stage
// needs: locating the companion application and creating debug-mode and
// autostart hooks. Non-target hosts get a no-op implementation; tests
// get a fake.
type Integrator interface {
	// LocateCompanionApp returns the companion application's install
	// directory.
	LocateCompanionApp() (string, error)

	// CreateFlagFile creates an empty marker file at path.
	CreateFlagFile(path string) error

	// CreateShortcut creates a launchable entry.
	CreateShortcut(sc Shortcut) error

	// CreateAutostartEntry registers a launchable entry that runs at
	// login.
	CreateAutostartEntry(sc Shortcut) error
}
