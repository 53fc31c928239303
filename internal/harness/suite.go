package harness

import (
	"context"
	"fmt"
)

// SuiteResult summarises a directory of scenarios.
type SuiteResult struct {
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Failures []Failure `json:"failures,omitempty"`
}

// Failure records one scenario that failed to load, run or meet its
// expectations.
type Failure struct {
	Scenario string   `json:"scenario,omitempty"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// Pass reports whether every scenario passed.
func (r *SuiteResult) Pass() bool {
	return r.Failed == 0
}

// RunDir loads and runs every scenario under dir.
//
// Broken scenario files are counted as failures rather than aborting the
// suite. Interrupts abort it. Duplicate scenario names are an error since
// they would share a golden file.
func (h *Harness) RunDir(ctx context.Context, dir string) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	res := &SuiteResult{}
	seen := make(map[string]string)
	for _, path := range paths {
		res.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			res.fail(Failure{Path: path, Errors: []string{err.Error()}})
			continue
		}
		if prev, ok := seen[scenario.Name]; ok {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", scenario.Name, prev, path)
		}
		seen[scenario.Name] = path

		result, err := h.Run(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.fail(Failure{Scenario: scenario.Name, Path: path, Errors: []string{err.Error()}})
			continue
		}
		if !result.Pass {
			res.fail(Failure{Scenario: scenario.Name, Path: path, Errors: result.Errors})
			continue
		}
		res.Passed++
	}
	return res, nil
}

func (r *SuiteResult) fail(f Failure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}
