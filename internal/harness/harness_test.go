package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/subject"
	"github.com/roach88/mutsweep/internal/testutil"
)

func toyCatalog() *subject.Catalog {
	c := subject.NewCatalog()
	c.Register(testutil.ToyName, testutil.ToyFactory(nil))
	return c
}

func toyScenario(name string, combo []string, expect Expect) *Scenario {
	return &Scenario{
		Name:        name,
		Description: name,
		Subject:     testutil.ToyName,
		Seed:        5,
		Budget:      50,
		Combo:       combo,
		Expect:      expect,
	}
}

func TestRun_NoFail(t *testing.T) {
	scenario := toyScenario("equivalent", []string{"EQUIVALENT"}, Expect{Type: "nofail", Attempts: intPtr(50)})

	result, err := Run(context.Background(), toyCatalog(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "equivalent", result.Scenario)
	assert.Equal(t, ir.NoFail(50), result.Outcome)
}

func TestRun_ShrunkFailure(t *testing.T) {
	scenario := toyScenario("long", []string{"LONG"}, Expect{
		Type:        "fail",
		FailingRepr: "[0 0 0]",
		Triage:      [][]string{{"LONG"}},
	})
	scenario.Budget = 500
	scenario.Shrink = true

	result, err := Run(context.Background(), toyCatalog(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, ir.OutcomeFail, result.Outcome.Type)
	assert.NoError(t, result.Outcome.Validate())
}

func TestRun_UnmetExpectation(t *testing.T) {
	scenario := toyScenario("wrong", []string{"EQUIVALENT"}, Expect{Type: "fail"})

	result, err := Run(context.Background(), toyCatalog(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expectation failed: type")
}

func TestRun_Errors(t *testing.T) {
	t.Run("unknown subject", func(t *testing.T) {
		scenario := toyScenario("x", nil, Expect{Type: "nofail"})
		scenario.Subject = "heapsort"
		_, err := Run(context.Background(), toyCatalog(), scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown subject "heapsort"`)
	})

	t.Run("undeclared defect", func(t *testing.T) {
		scenario := toyScenario("x", []string{"NOPE"}, Expect{Type: "nofail"})
		_, err := Run(context.Background(), toyCatalog(), scenario)
		assert.ErrorIs(t, err, mutant.ErrUndeclared)
	})

	t.Run("interrupted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		scenario := toyScenario("x", nil, Expect{Type: "nofail"})
		_, err := Run(ctx, toyCatalog(), scenario)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScenarioFiles(t *testing.T) {
	// The shipped scenarios run against the real subject catalog.
	paths, err := FindScenarios(scenarioDir)
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(context.Background(), catalog(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "%v", result.Errors)
		})
	}
}
