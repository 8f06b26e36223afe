package hostenv

// FakeIntegrator records host integration calls and fails on demand.
type FakeIntegrator struct {
	CompanionDir string
	LocateErr    error
	FlagErr      error
	ShortcutErr  error
	AutostartErr error

	FlagFiles  []string
	Shortcuts  []Shortcut
	Autostarts []Shortcut
}

func (f *FakeIntegrator) LocateCompanionApp() (string, error) {
	if f.LocateErr != nil {
		return "", f.LocateErr
	}
	return f.CompanionDir, nil
}

func (f *FakeIntegrator) CreateFlagFile(path string) error {
	if f.FlagErr != nil {
		return f.FlagErr
	}
	f.FlagFiles = append(f.FlagFiles, path)
	return nil
}

func (f *FakeIntegrator) CreateShortcut(sc Shortcut) error {
	if f.ShortcutErr != nil {
		return f.ShortcutErr
	}
	f.Shortcuts = append(f.Shortcuts, sc)
	return nil
}

func (f *FakeIntegrator) CreateAutostartEntry(sc Shortcut) error {
	if f.AutostartErr != nil {
		return f.AutostartErr
	}
	f.Autostarts = append(f.Autostarts, sc)
	return nil
}
