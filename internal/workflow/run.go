// Package workflow loads workflow runs and renders the input a step
// received from the trigger and the steps before it.
package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TriggerStepID is the context key and item id of the trigger.
const TriggerStepID = "trigger"

// Run is a recorded workflow run. Context holds the output of the trigger
// and of each executed step, keyed by step id.
type Run struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Status  string         `yaml:"status"`
	Context map[string]any `yaml:"context"`
	Output  *RunOutput     `yaml:"output"`
}

type RunOutput struct {
	Flow *Flow `yaml:"flow"`
}

type Flow struct {
	Trigger Trigger `yaml:"trigger"`
	Steps   []Step  `yaml:"steps"`
}

type Trigger struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Step struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// ParseRun decodes a run from YAML or JSON.
func ParseRun(data []byte) (*Run, error) {
	var run Run
	if err := yaml.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse workflow run: %w", err)
	}
	return &run, nil
}

// LoadRun reads a run file.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow run: %w", err)
	}
	return ParseRun(data)
}

// StepContextItem is one entry of the input a step receives.
type StepContextItem struct {
	ID      string
	Name    string
	Context any
}

// StepContext returns the trigger followed by every step that precedes
// stepID in flow. The trigger itself has no input.
func StepContext(runContext map[string]any, flow Flow, stepID string) []StepContextItem {
	if stepID == TriggerStepID {
		return nil
	}

	name := flow.Trigger.Name
	if name == "" {
		name = "Trigger"
	}
	items := []StepContextItem{{
		ID:      TriggerStepID,
		Name:    name,
		Context: runContext[TriggerStepID],
	}}
	for _, step := range flow.Steps {
		if step.ID == stepID {
			break
		}
		items = append(items, StepContextItem{
			ID:      step.ID,
			Name:    step.Name,
			Context: runContext[step.ID],
		})
	}
	return items
}
