package mutant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysOf(sets []Set) []ComboKey {
	out := make([]ComboKey, len(sets))
	for i, s := range sets {
		out[i] = s.Key()
	}
	return out
}

func TestCombinationsLexicographic(t *testing.T) {
	got := Combinations([]DefectID{"D", "B", "A", "C"}, 2)
	assert.Equal(t, []ComboKey{"A|B", "A|C", "A|D", "B|C", "B|D", "C|D"}, keysOf(got))
}

func TestCombinationsEdges(t *testing.T) {
	ids := []DefectID{"A", "B", "C"}

	assert.Empty(t, Combinations(ids, 0))
	assert.Empty(t, Combinations(ids, 4))
	assert.Equal(t, []ComboKey{"A|B|C"}, keysOf(Combinations(ids, 3)))
	assert.Equal(t, []ComboKey{"A", "B", "C"}, keysOf(Combinations(ids, 1)))
}

func TestCombinationsStableAcrossInputOrder(t *testing.T) {
	a := Combinations([]DefectID{"X", "Y", "Z", "W"}, 3)
	b := Combinations([]DefectID{"W", "Z", "Y", "X"}, 3)
	assert.Equal(t, keysOf(a), keysOf(b))
}

func TestCombinationsCount(t *testing.T) {
	ids := []DefectID{"A", "B", "C", "D", "E", "F", "G"}
	for k := 1; k <= len(ids); k++ {
		require.Len(t, Combinations(ids, k), CountCombinations(len(ids), k), "k=%d", k)
	}
	assert.Equal(t, 0, CountCombinations(3, 5))
	assert.Equal(t, 1, CountCombinations(3, 0))
}

func TestSubsetsBySizeIncreasing(t *testing.T) {
	got := SubsetsBySize(NewSet("C", "A", "B"))
	assert.Equal(t, []ComboKey{"A", "B", "C", "A|B", "A|C", "B|C", "A|B|C"}, keysOf(got))
	assert.Empty(t, SubsetsBySize(Set{}))
}
