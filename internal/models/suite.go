package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SuiteSpec is a complete scoring-suite specification loaded from YAML.
// It names the models under evaluation, the tasks to score, and where
// each task's response batches live.
type SuiteSpec struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Version     string     `yaml:"version,omitempty"`
	Models      []string   `yaml:"models"`
	Config      RunConfig  `yaml:"config"`
	Tasks       []TaskSpec `yaml:"tasks"`
}

// RunConfig controls execution behavior for a scoring run.
type RunConfig struct {
	Concurrent bool `yaml:"parallel" json:"concurrent"`
	Workers    int  `yaml:"max_workers,omitempty" json:"workers,omitempty"`
	StopOnErr  bool `yaml:"fail_fast,omitempty" json:"stop_on_error,omitempty"`
}

// TaskSpec configures one scoring pipeline within the suite.
type TaskSpec struct {
	Task Task `yaml:"task"`

	// Responses maps a model name to the response batch file for this
	// task. Paths containing "{model}" are expanded per model instead.
	Responses map[string]string `yaml:"responses,omitempty"`
	Pattern   string            `yaml:"responses_pattern,omitempty"`

	// Parameters carries task-specific options (thresholds, phrase lists)
	// decoded by the scoring registry.
	Parameters map[string]any `yaml:"config,omitempty"`
}

// ResponsesFile resolves the response batch path for a model.
func (t *TaskSpec) ResponsesFile(model string) (string, error) {
	if path, ok := t.Responses[model]; ok && path != "" {
		return path, nil
	}
	if t.Pattern != "" {
		return strings.ReplaceAll(t.Pattern, "{model}", sanitizeModelName(model)), nil
	}
	return "", fmt.Errorf("task %s: no response file configured for model %q", t.Task, model)
}

func sanitizeModelName(model string) string {
	r := strings.NewReplacer("/", "_", ":", "_", " ", "_")
	return r.Replace(model)
}

// LoadSuiteSpec loads and validates a suite spec from a YAML file.
func LoadSuiteSpec(path string) (*SuiteSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec SuiteSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing suite spec %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Validate checks that the spec is internally consistent.
func (s *SuiteSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suite name is required")
	}
	if len(s.Models) == 0 {
		return fmt.Errorf("suite must list at least one model")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("suite must list at least one task")
	}
	if s.Config.Workers < 0 {
		return fmt.Errorf("max_workers must be >= 0, got %d", s.Config.Workers)
	}
	seen := map[Task]bool{}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if _, err := ParseTask(string(t.Task)); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if seen[t.Task] {
			return fmt.Errorf("task %q listed more than once", t.Task)
		}
		seen[t.Task] = true
		if len(t.Responses) == 0 && t.Pattern == "" {
			return fmt.Errorf("task %q needs responses or responses_pattern", t.Task)
		}
	}
	return nil
}

// ResolveResponsesPath resolves a batch path relative to the suite
// directory unless it is already absolute.
func ResolveResponsesPath(suiteDir, batchPath string) string {
	if filepath.IsAbs(batchPath) {
		return batchPath
	}
	return filepath.Join(suiteDir, batchPath)
}
