package subjects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/subject"
	"github.com/roach88/mutsweep/internal/triage"
)

func load(t *testing.T, name string) subject.Subject {
	t.Helper()
	s, err := Catalog().Load(name)
	require.NoError(t, err)
	return s
}

func TestCatalogNames(t *testing.T) {
	assert.Equal(t, []string{AVLTreeName, InsertionSortName, QuicksortName}, Catalog().Names())
}

func TestRegistries(t *testing.T) {
	tests := []struct {
		name string
		want []mutant.DefectID
	}{
		{QuicksortName, []mutant.DefectID{NoSortLen2Lists, OnlyAddOnePivot}},
		{InsertionSortName, []mutant.DefectID{NoShiftAtHead, NonStrictCompare, SkipLastElement}},
		{AVLTreeName, []mutant.DefectID{
			DeleteFlipMinValue, DeleteNoRebalance, InsertLtRplLte,
			RebalanceSkipInnerRotation, RotateRightZHeightMinus1, SearchNoNullCheck,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, tt.name)
			assert.Equal(t, tt.name, s.Name())
			assert.Equal(t, tt.want, s.Registry().IDs())
			for _, d := range s.Registry().Defects() {
				assert.NotEmpty(t, d.Description, d.ID)
			}
		})
	}
}

func TestBaselineNeverFails(t *testing.T) {
	for _, name := range Catalog().Names() {
		t.Run(name, func(t *testing.T) {
			r := runner.New(load(t, name))
			for seed := int64(1); seed <= 3; seed++ {
				out, err := r.Run(context.Background(), mutant.Set{}, runner.Options{Seed: seed, Budget: 200})
				require.NoError(t, err)
				assert.False(t, out.Failed, "seed %d: %v on %v", seed, out.Violation, out.Input)
			}
		})
	}
}

func TestEquivalentDefectsSurvive(t *testing.T) {
	tests := []struct {
		subject string
		defect  mutant.DefectID
	}{
		{InsertionSortName, NonStrictCompare},
		{AVLTreeName, InsertLtRplLte},
	}
	for _, tt := range tests {
		t.Run(string(tt.defect), func(t *testing.T) {
			r := runner.New(load(t, tt.subject))
			out, err := r.Run(context.Background(), mutant.NewSet(tt.defect), runner.Options{Seed: 1, Budget: 200})
			require.NoError(t, err)
			assert.False(t, out.Failed, "%v on %v", out.Violation, out.Input)
		})
	}
}

func TestDefectsFailOnKnownInputs(t *testing.T) {
	tests := []struct {
		subject string
		defect  mutant.DefectID
		input   []int
	}{
		{QuicksortName, NoSortLen2Lists, []int{2, 1}},
		{QuicksortName, OnlyAddOnePivot, []int{1, 1}},
		{InsertionSortName, SkipLastElement, []int{2, 1}},
		{InsertionSortName, NoShiftAtHead, []int{2, 1}},
		{AVLTreeName, SearchNoNullCheck, []int{1, 2}},
		{AVLTreeName, DeleteFlipMinValue, []int{2, 1, 3, 4}},
		{AVLTreeName, DeleteNoRebalance, []int{2, 1, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.defect), func(t *testing.T) {
			r := runner.New(load(t, tt.subject))
			ctx := context.Background()

			failed, err := r.Check(ctx, mutant.Set{}, tt.input)
			require.NoError(t, err)
			assert.False(t, failed, "baseline")

			failed, err = r.Check(ctx, mutant.NewSet(tt.defect), tt.input)
			require.NoError(t, err)
			assert.True(t, failed, "defect")
		})
	}
}

func TestSkipLastElementSeed7(t *testing.T) {
	r := runner.New(load(t, InsertionSortName))
	combo := mutant.NewSet(SkipLastElement)
	ctx := context.Background()

	out, err := r.Run(ctx, combo, runner.Options{Seed: 7, Budget: 500})
	require.NoError(t, err)
	require.True(t, out.Failed)

	causes, err := triage.Minimize(ctx, r, combo, out.Input)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"SKIP_LAST_ELEMENT"}}, triage.Strings(causes))
}

func TestShrinkKeepsAttempts(t *testing.T) {
	for _, name := range Catalog().Names() {
		t.Run(name, func(t *testing.T) {
			r := runner.New(load(t, name))
			ctx := context.Background()
			all := mutant.NewSet(r.Subject().Registry().IDs()...)

			for seed := int64(1); seed <= 3; seed++ {
				plain, err := r.Run(ctx, all, runner.Options{Seed: seed, Budget: 300})
				require.NoError(t, err)
				shrunk, err := r.Run(ctx, all, runner.Options{Seed: seed, Budget: 300, Shrink: true})
				require.NoError(t, err)

				require.Equal(t, plain.Failed, shrunk.Failed)
				assert.Equal(t, plain.Attempts, shrunk.Attempts)
				if shrunk.Failed {
					failed, err := r.Check(ctx, all, shrunk.Input)
					require.NoError(t, err)
					assert.True(t, failed)
				}
			}
		})
	}
}
