package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// StageRecord is one stage's entry in the run manifest.
type StageRecord struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
}

// RunManifest is the audit record of a build run: what release was
// built, how each stage went, and content hashes of the produced
// artifacts.
type RunManifest struct {
	RunID     string            `json:"run_id"`
	Release   string            `json:"release"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
	Stages    []StageRecord     `json:"stages"`
	Artifacts map[string]string `json:"artifact_hashes,omitempty"`
}

// RecordStage appends a stage outcome.
func (m *RunManifest) RecordStage(name, status string, duration time.Duration) {
	m.Stages = append(m.Stages, StageRecord{
		Name:     name,
		Status:   status,
		Duration: duration.String(),
	})
}

// AddArtifactHash hashes a produced artifact and records it under name.
func (m *RunManifest) AddArtifactHash(name, path string) error {
	hash, err := hashFile(path)
	if err != nil {
		return err
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]string)
	}
	m.Artifacts[name] = hash
	return nil
}

// Save writes the manifest as JSON into dir.
func (m *RunManifest) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", m.StartedAt.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// hashFile computes the blake3 hash of a file.
func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
