package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRecordStage(t *testing.T) {
	m := &RunManifest{RunID: "run-1"}

	m.RecordStage("fetch sources", "ok", 2*time.Second)
	m.RecordStage("package executables", "failed", 30*time.Second)

	require.Len(t, m.Stages, 2)
	assert.Equal(t, "fetch sources", m.Stages[0].Name)
	assert.Equal(t, "ok", m.Stages[0].Status)
	assert.Equal(t, "2s", m.Stages[0].Duration)
	assert.Equal(t, "failed", m.Stages[1].Status)
}

func TestManifestAddArtifactHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PluginLoader")
	require.NoError(t, os.WriteFile(path, []byte("binary payload"), 0o755))

	m := &RunManifest{}
	require.NoError(t, m.AddArtifactHash("PluginLoader", path))

	hash, ok := m.Artifacts["PluginLoader"]
	require.True(t, ok)
	assert.Len(t, hash, 64)

	// Identical content hashes identically
	other := filepath.Join(dir, "copy")
	require.NoError(t, os.WriteFile(other, []byte("binary payload"), 0o755))
	require.NoError(t, m.AddArtifactHash("copy", other))
	assert.Equal(t, hash, m.Artifacts["copy"])
}

func TestManifestAddArtifactHashMissingFile(t *testing.T) {
	m := &RunManifest{}
	err := m.AddArtifactHash("gone", filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.Nil(t, m.Artifacts)
}

func TestManifestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dist")
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	m := &RunManifest{
		RunID:     "run-7",
		Release:   "v2.10.3",
		StartedAt: started,
		EndedAt:   started.Add(5 * time.Minute),
	}
	m.RecordStage("check dependencies", "ok", time.Second)

	path, err := m.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run_20260314_092653.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded RunManifest
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "run-7", loaded.RunID)
	assert.Equal(t, "v2.10.3", loaded.Release)
	require.Len(t, loaded.Stages, 1)
	assert.Equal(t, "check dependencies", loaded.Stages[0].Name)
}
