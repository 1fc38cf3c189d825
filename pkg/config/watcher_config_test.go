package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "watchers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadWatcherConfigs(t *testing.T) {
	path := writeConfig(t, `
watchers:
  - folder_id: folder-in
    workflow_definition_id: def-1
    project_id: project-1
    poll_interval: 45s
    file_extensions: [pdf, dwg]
  - folder_id: folder-other
    workflow_definition_id: def-2
`)

	configs, err := LoadWatcherConfigs(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	assert.Equal(t, "folder-in", configs[0].FolderID)
	assert.Equal(t, 45*time.Second, configs[0].PollInterval)
	assert.Equal(t, []string{"pdf", "dwg"}, configs[0].FileExtensions)

	assert.Zero(t, configs[1].PollInterval)
}

func TestLoadWatcherConfigs_MissingFolder(t *testing.T) {
	path := writeConfig(t, `
watchers:
  - workflow_definition_id: def-1
`)

	_, err := LoadWatcherConfigs(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder_id is required")
}

func TestLoadWatcherConfigs_BadInterval(t *testing.T) {
	path := writeConfig(t, `
watchers:
  - folder_id: folder-in
    workflow_definition_id: def-1
    poll_interval: sometimes
`)

	_, err := LoadWatcherConfigs(path)
	require.Error(t, err)
}

func TestLoadWatcherConfigs_FileMissing(t *testing.T) {
	_, err := LoadWatcherConfigs("/nope/watchers.yaml")
	require.Error(t, err)
}
