package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout holds the fixed directory layout of a build run. It is computed
// once from the workspace root and the user's home directory and is
// read-only afterwards.
type Layout struct {
	// Root is the workspace root all scratch trees live under
	Root string

	// AppDir is where the loader repository is cloned
	AppDir string

	// SrcDir is the packaging-ready staging tree
	SrcDir string

	// DistDir is where the packager drops built executables
	DistDir string

	// HomebrewDir is the staging mirror of the runtime tree
	HomebrewDir string

	// UserHomebrewDir is the per-user runtime tree the loader consumes
	UserHomebrewDir string

	// TempDir holds downloaded installers and generated scripts
	TempDir string
}

// NewLayout derives the layout from a workspace root.
func NewLayout(root string) (*Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	return NewLayoutWithHome(root, home), nil
}

// NewLayoutWithHome derives the layout with an explicit home directory,
// used by tests to keep runs inside a temp root.
func NewLayoutWithHome(root, home string) *Layout {
	return &Layout{
		Root:            root,
		AppDir:          filepath.Join(root, "app"),
		SrcDir:          filepath.Join(root, "src"),
		DistDir:         filepath.Join(root, "dist"),
		HomebrewDir:     filepath.Join(root, "dist", "homebrew"),
		UserHomebrewDir: filepath.Join(home, "homebrew"),
		TempDir:         filepath.Join(root, "temp"),
	}
}

// FrontendDir returns the frontend subtree of the fetched sources.
func (l *Layout) FrontendDir() string {
	return filepath.Join(l.AppDir, "frontend")
}

// BackendDir returns the backend subtree of the fetched sources.
func (l *Layout) BackendDir() string {
	return filepath.Join(l.AppDir, "backend")
}
