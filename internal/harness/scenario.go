package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/mutant"
)

// Scenario pins one campaign and the outcome expected from it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Subject is a catalog name, e.g. "insertionsort".
	Subject string `yaml:"subject"`

	Seed   int64 `yaml:"seed"`
	Budget int   `yaml:"budget"`
	Shrink bool  `yaml:"shrink,omitempty"`

	// Combo lists the active defects. Empty means the baseline.
	Combo []string `yaml:"combo,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect is the expected RunResult. Unset optional fields are not checked.
type Expect struct {
	// Type is "fail" or "nofail".
	Type string `yaml:"type"`

	Attempts    *int       `yaml:"attempts,omitempty"`
	FailingRepr string     `yaml:"failing_repr,omitempty"`
	Triage      [][]string `yaml:"triage,omitempty"`
}

// ComboSet returns the scenario's active defects as a set.
func (s *Scenario) ComboSet() mutant.Set {
	ids := make([]mutant.DefectID, len(s.Combo))
	for i, id := range s.Combo {
		ids[i] = mutant.DefectID(id)
	}
	return mutant.NewSet(ids...)
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the *.yaml and *.yml files directly under dir,
// sorted by path.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if s.Seed < 0 {
		return fmt.Errorf("seed must be non-negative, got %d", s.Seed)
	}
	if s.Budget < 1 {
		return fmt.Errorf("budget must be positive, got %d", s.Budget)
	}
	for i, id := range s.Combo {
		if id == "" {
			return fmt.Errorf("combo[%d]: defect id is required", i)
		}
	}
	if s.ComboSet().Len() != len(s.Combo) {
		return fmt.Errorf("combo lists a defect more than once")
	}
	return validateExpect(&s.Expect)
}

// validateExpect checks the expect clause against the result type it names.
func validateExpect(e *Expect) error {
	switch ir.Outcome(e.Type) {
	case ir.OutcomeFail:
		for i, set := range e.Triage {
			if len(set) == 0 {
				return fmt.Errorf("expect.triage[%d]: causal sets must be non-empty", i)
			}
		}
	case ir.OutcomeNoFail:
		if len(e.Triage) > 0 || e.FailingRepr != "" {
			return fmt.Errorf("expect: triage and failing_repr only apply to type fail")
		}
	case "":
		return fmt.Errorf("expect.type is required")
	default:
		return fmt.Errorf("expect.type: unknown result type %q", e.Type)
	}
	if e.Attempts != nil && *e.Attempts < 0 {
		return fmt.Errorf("expect.attempts must be non-negative")
	}
	return nil
}
