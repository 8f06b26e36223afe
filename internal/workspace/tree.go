package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MarkerName is the single-line file recording the resolved release in
// every artifact-bearing directory.
const MarkerName = ".loader.version"

// EnsureTree idempotently creates root and every named subtree under it.
// Existing directories are left untouched.
func EnsureTree(root string, subtrees []string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create runtime tree %s: %w", root, err)
	}
	for _, sub := range subtrees {
		path := filepath.Join(root, sub)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create runtime subtree %s: %w", path, err)
		}
	}
	return nil
}

// WriteMarker writes the resolved release into dir's version marker,
// overwriting any previous marker.
func WriteMarker(dir, release string) error {
	path := filepath.Join(dir, MarkerName)
	if err := os.WriteFile(path, []byte(release), 0o644); err != nil {
		return fmt.Errorf("write version marker %s: %w", path, err)
	}
	return nil
}

// ReadMarker reads dir's version marker.
func ReadMarker(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, MarkerName))
	if err != nil {
		return "", fmt.Errorf("read version marker in %s: %w", dir, err)
	}
	return strings.TrimSpace(string(data)), nil
}
