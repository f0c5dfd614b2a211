package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of one model.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Model is the name of the model to run.
	Model string `yaml:"model"`

	// Catalog is an optional CUE catalog. Relative paths resolve against
	// the scenario file's directory.
	Catalog string `yaml:"catalog,omitempty"`

	// RunID pins the run ID. Empty means one is generated.
	RunID string `yaml:"run_id,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Step dispatches one action.
type Step struct {
	// Dispatch is the action tag.
	Dispatch string `yaml:"dispatch"`

	// Payload is the action payload. Absent means none.
	Payload any `yaml:"payload,omitempty"`

	// ExpectUnchanged requires the reducer to return the previous state.
	ExpectUnchanged bool `yaml:"expect_unchanged,omitempty"`

	// Expect is a subset of the state after this step.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion checks the finished run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// State is the expected final state subset (final_state).
	State map[string]any `yaml:"state,omitempty"`

	// Tag selects dispatches (trace_count, unchanged).
	Tag string `yaml:"tag,omitempty"`

	// Count is the expected number of dispatches of Tag (trace_count).
	Count int `yaml:"count,omitempty"`

	// Tags is the expected relative order of first dispatches (trace_order).
	Tags []string `yaml:"tags,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertTraceCount = "trace_count"
	AssertTraceOrder = "trace_order"
	AssertUnchanged  = "unchanged"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

// ParseScenario parses scenario YAML. Relative catalog paths resolve against
// the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// CatalogPath returns the resolved catalog path, or "" when none is set.
func (s *Scenario) CatalogPath() string {
	if s.Catalog == "" || filepath.IsAbs(s.Catalog) {
		return s.Catalog
	}
	return filepath.Join(s.dir, s.Catalog)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Dispatch == "" {
			return fmt.Errorf("steps[%d]: dispatch is required", i)
		}
		if step.ExpectUnchanged && step.Expect != nil {
			return fmt.Errorf("steps[%d]: expect and expect_unchanged are mutually exclusive", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if len(a.State) == 0 {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	case AssertTraceCount:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Tags) == 0 {
			return fmt.Errorf("assertions[%d]: tags list is required for trace_order", index)
		}
	case AssertUnchanged:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for unchanged", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
