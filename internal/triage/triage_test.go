package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/testutil"
)

// dnfChecker fails whenever one of its causes is fully active.
type dnfChecker struct {
	causes []mutant.Set
	calls  []mutant.Set
	err    error
}

func (c *dnfChecker) Check(_ context.Context, active mutant.Set, _ any) (bool, error) {
	c.calls = append(c.calls, active)
	if c.err != nil {
		return false, c.err
	}
	for _, cause := range c.causes {
		if cause.SubsetOf(active) {
			return true, nil
		}
	}
	return false, nil
}

func set(ids ...mutant.DefectID) mutant.Set { return mutant.NewSet(ids...) }

func TestMinimize(t *testing.T) {
	tests := []struct {
		name   string
		causes []mutant.Set
		combo  mutant.Set
		want   []mutant.Set
	}{
		{
			name:   "single cause",
			causes: []mutant.Set{set("A")},
			combo:  set("A"),
			want:   []mutant.Set{set("A")},
		},
		{
			name:   "one of two",
			causes: []mutant.Set{set("B")},
			combo:  set("A", "B"),
			want:   []mutant.Set{set("B")},
		},
		{
			name:   "both independently",
			causes: []mutant.Set{set("A"), set("B")},
			combo:  set("A", "B"),
			want:   []mutant.Set{set("A"), set("B")},
		},
		{
			name:   "conjunction",
			causes: []mutant.Set{set("A", "B")},
			combo:  set("A", "B", "C"),
			want:   []mutant.Set{set("A", "B")},
		},
		{
			name:   "conjunction or single",
			causes: []mutant.Set{set("A", "B"), set("C")},
			combo:  set("A", "B", "C"),
			want:   []mutant.Set{set("C"), set("A", "B")},
		},
		{
			name:   "superset cause is pruned",
			causes: []mutant.Set{set("A"), set("A", "B")},
			combo:  set("A", "B"),
			want:   []mutant.Set{set("A")},
		},
		{
			name:   "no reproduction",
			causes: []mutant.Set{set("Z")},
			combo:  set("A", "B"),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &dnfChecker{causes: tt.causes}
			got, err := Minimize(context.Background(), checker, tt.combo, nil)
			require.NoError(t, err)
			assert.Equal(t, keys(tt.want), keys(got))
		})
	}
}

func TestMinimizeSkipsSupersets(t *testing.T) {
	checker := &dnfChecker{causes: []mutant.Set{set("A")}}
	_, err := Minimize(context.Background(), checker, set("A", "B", "C"), nil)
	require.NoError(t, err)

	// A, B, C, then only B|C survives pruning at size two; A|B|C is pruned.
	assert.Equal(t, []mutant.ComboKey{"A", "B", "C", "B|C"}, keys(checker.calls))
}

func TestMinimizeCheckError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Minimize(context.Background(), &dnfChecker{err: boom}, set("A"), nil)
	assert.ErrorIs(t, err, boom)
}

func TestMinimizeWithRunner(t *testing.T) {
	toy, err := testutil.NewToy(nil)
	require.NoError(t, err)
	r := runner.New(toy)

	combo := set(testutil.Negative, testutil.PairA, testutil.PairB)
	got, err := Minimize(context.Background(), r, combo, []int{-4, 2})
	require.NoError(t, err)
	assert.Equal(t, "NEGATIVE ∨ (PAIR_A ∧ PAIR_B)", Describe(got))

	for _, cause := range got {
		failed, err := r.Check(context.Background(), cause, []int{-4, 2})
		require.NoError(t, err)
		assert.True(t, failed, cause.String())
	}
}

func TestMinimizeProperties(t *testing.T) {
	universe := []mutant.DefectID{"A", "B", "C", "D", "E"}
	subset := rapid.Custom(func(t *rapid.T) mutant.Set {
		ids := rapid.SliceOfNDistinct(rapid.SampledFrom(universe), 1, 3, rapid.ID[mutant.DefectID]).Draw(t, "ids")
		return mutant.NewSet(ids...)
	})

	rapid.Check(t, func(t *rapid.T) {
		causes := rapid.SliceOfN(subset, 0, 4).Draw(t, "causes")
		combo := subset.Draw(t, "combo")
		checker := &dnfChecker{causes: causes}

		got, err := Minimize(context.Background(), checker, combo, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !Minimal(got) {
			t.Fatalf("not minimal: %s", Describe(got))
		}
		for _, s := range got {
			if !s.SubsetOf(combo) {
				t.Fatalf("%s is not a subset of %s", s, combo)
			}
			if ok, _ := checker.Check(context.Background(), s, nil); !ok {
				t.Fatalf("%s does not reproduce", s)
			}
		}
		comboFails, _ := checker.Check(context.Background(), combo, nil)
		if comboFails != (len(got) > 0) {
			t.Fatalf("combo fails=%v but found %d causes", comboFails, len(got))
		}
	})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "∅", Describe(nil))
	assert.Equal(t, "A", Describe([]mutant.Set{set("A")}))
	assert.Equal(t, "(A ∧ B) ∨ C", Describe([]mutant.Set{set("B", "A"), set("C")}))
}

func TestStringsParse(t *testing.T) {
	causes := []mutant.Set{set("C"), set("B", "A")}
	raw := Strings(causes)
	assert.Equal(t, [][]string{{"C"}, {"A", "B"}}, raw)
	assert.Equal(t, keys(causes), keys(Parse(raw)))
}

func TestMinimal(t *testing.T) {
	assert.True(t, Minimal([]mutant.Set{set("A"), set("B", "C")}))
	assert.False(t, Minimal([]mutant.Set{set("A"), set("A", "C")}))
}

func keys(sets []mutant.Set) []mutant.ComboKey {
	var out []mutant.ComboKey
	for _, s := range sets {
		out = append(out, s.Key())
	}
	return out
}

func ExampleDescribe() {
	fmt.Println(Describe([]mutant.Set{mutant.NewSet("SKIP_LAST_ELEMENT")}))
	// Output: SKIP_LAST_ELEMENT
}
