package subjects

import (
	"slices"

	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
)

// InsertionSortName is the catalog name of the insertion sort subject.
const InsertionSortName = "insertionsort"

// Insertion sort defects.
const (
	SkipLastElement  mutant.DefectID = "SKIP_LAST_ELEMENT"
	NonStrictCompare mutant.DefectID = "NON_STRICT_COMPARE"
	NoShiftAtHead    mutant.DefectID = "NO_SHIFT_AT_HEAD"
)

// InsertionSort sorts a copy of its input in place.
type InsertionSort struct {
	reg      *mutant.Registry
	strategy gen.Strategy

	skipLast, nonStrict, noShiftAtHead mutant.Point
}

// NewInsertionSort loads the insertion sort subject.
func NewInsertionSort() (*InsertionSort, error) {
	b := mutant.NewBuilder(InsertionSortName)
	s := &InsertionSort{
		strategy:      gen.IntSlices(),
		skipLast:      b.Point(b.Declare(SkipLastElement, "Never inserts the last element.")),
		nonStrict:     b.Point(b.Declare(NonStrictCompare, "Shifts past equal elements. Equivalent for integers.")),
		noShiftAtHead: b.Point(b.Declare(NoShiftAtHead, "Never moves an element into the first slot.")),
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	s.reg = reg
	return s, nil
}

func (s *InsertionSort) Name() string               { return InsertionSortName }
func (s *InsertionSort) Registry() *mutant.Registry { return s.reg }
func (s *InsertionSort) Strategy() gen.Strategy     { return s.strategy }

// Property checks that sorting yields an ordered permutation.
func (s *InsertionSort) Property(mc *mutant.Context, input any) error {
	xs, err := intSlice(InsertionSortName, input)
	if err != nil {
		return err
	}
	return checkSorted(xs, s.sort(mc, xs))
}

func (s *InsertionSort) sort(mc *mutant.Context, in []int) []int {
	out := slices.Clone(in)
	end := mutant.Choose(mc, s.skipLast, func() int { return len(out) }, func() int { return len(out) - 1 })
	floor := mutant.Choose(mc, s.noShiftAtHead, func() int { return 0 }, func() int { return 1 })
	greater := mutant.Choose(mc, s.nonStrict,
		func() func(a, b int) bool { return func(a, b int) bool { return a > b } },
		func() func(a, b int) bool { return func(a, b int) bool { return a >= b } })

	for i := 1; i < end; i++ {
		v := out[i]
		j := i
		for j > floor && greater(out[j-1], v) {
			out[j] = out[j-1]
			j--
		}
		out[j] = v
	}
	return out
}
