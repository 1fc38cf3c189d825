// Package config provides configuration loading for folder watchers.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/validoc/validoc/pkg/watcher"
)

// WatcherConfigFile is the structure of the watchers.yaml file.
type WatcherConfigFile struct {
	Watchers []WatcherEntry `yaml:"watchers"`
}

// WatcherEntry declares one folder watcher in the YAML file.
type WatcherEntry struct {
	FolderID             string   `yaml:"folder_id"`
	WorkflowDefinitionID string   `yaml:"workflow_definition_id"`
	ProjectID            string   `yaml:"project_id"`
	PollInterval         string   `yaml:"poll_interval"`
	FileExtensions       []string `yaml:"file_extensions"`
}

// LoadWatcherConfigs loads watcher declarations from a YAML file and converts
// them to watcher configs.
func LoadWatcherConfigs(filepath string) ([]watcher.Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile WatcherConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	configs := make([]watcher.Config, 0, len(configFile.Watchers))

	for i, entry := range configFile.Watchers {
		if entry.FolderID == "" {
			return nil, fmt.Errorf("watcher %d: folder_id is required", i)
		}

		if entry.WorkflowDefinitionID == "" {
			return nil, fmt.Errorf("watcher %d: workflow_definition_id is required", i)
		}

		var interval time.Duration

		if entry.PollInterval != "" {
			interval, err = time.ParseDuration(entry.PollInterval)
			if err != nil {
				return nil, fmt.Errorf("watcher %d: invalid poll_interval %q: %w", i, entry.PollInterval, err)
			}
		}

		configs = append(configs, watcher.Config{
			PollInterval:         interval,
			FolderID:             entry.FolderID,
			WorkflowDefinitionID: entry.WorkflowDefinitionID,
			ProjectID:            entry.ProjectID,
			FileExtensions:       entry.FileExtensions,
		})
	}

	return configs, nil
}
