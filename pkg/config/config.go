// Package config loads the optional YAML configuration file of the API server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dukex/docflow/pkg/workflow"
	"gopkg.in/yaml.v3"
)

// File represents the structure of the docflow.yaml file.
type File struct {
	Schedules []ScheduleConfig `yaml:"schedules"`
	LLM       LLMConfig        `yaml:"llm"`
}

// ScheduleConfig runs a flow on a cron expression.
type ScheduleConfig struct {
	FlowID string `yaml:"flow_id"`
	Cron   string `yaml:"cron"`
}

// LLMConfig holds the model settings. Empty fields keep the command line values.
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

// Load reads and validates a configuration file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file File

	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := file.Validate(); err != nil {
		return File{}, err
	}

	return file, nil
}

// LoadOrDefault returns an empty configuration when path is empty or does not exist.
func LoadOrDefault(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}

	file, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}

	return file, err
}

func (f File) Validate() error {
	for i, s := range f.Schedules {
		if err := s.Schedule().Validate(); err != nil {
			return fmt.Errorf("schedules[%d]: %w", i, err)
		}
	}

	if t := f.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", *t)
	}

	return nil
}

func (s ScheduleConfig) Schedule() workflow.Schedule {
	return workflow.Schedule{FlowID: s.FlowID, Cron: s.Cron}
}

// WorkflowSchedules converts every configured schedule.
func (f File) WorkflowSchedules() []workflow.Schedule {
	out := make([]workflow.Schedule, 0, len(f.Schedules))
	for _, s := range f.Schedules {
		out = append(out, s.Schedule())
	}

	return out
}
