package subjects

import (
	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
)

// QuicksortName is the catalog name of the quicksort subject.
const QuicksortName = "quicksort"

// Quicksort defects.
const (
	OnlyAddOnePivot mutant.DefectID = "ONLY_ADD_ONE_PIVOT"
	NoSortLen2Lists mutant.DefectID = "NO_SORT_LEN_2_LISTS"
)

// Quicksort is a functional three-way quicksort.
type Quicksort struct {
	reg      *mutant.Registry
	strategy gen.Strategy

	onlyOnePivot, noSortLen2 mutant.Point
}

// NewQuicksort loads the quicksort subject.
func NewQuicksort() (*Quicksort, error) {
	b := mutant.NewBuilder(QuicksortName)
	q := &Quicksort{
		strategy:     gen.IntSlices(),
		onlyOnePivot: b.Point(b.Declare(OnlyAddOnePivot, "Only adds the pivot once if there are multiple.")),
		noSortLen2:   b.Point(b.Declare(NoSortLen2Lists, "Returns two-element lists unsorted.")),
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	q.reg = reg
	return q, nil
}

func (q *Quicksort) Name() string               { return QuicksortName }
func (q *Quicksort) Registry() *mutant.Registry { return q.reg }
func (q *Quicksort) Strategy() gen.Strategy     { return q.strategy }

// Property checks that sorting yields an ordered permutation.
func (q *Quicksort) Property(mc *mutant.Context, input any) error {
	xs, err := intSlice(QuicksortName, input)
	if err != nil {
		return err
	}
	return checkSorted(xs, q.sort(mc, xs))
}

func (q *Quicksort) sort(mc *mutant.Context, l []int) []int {
	limit := mutant.Choose(mc, q.noSortLen2, func() int { return 1 }, func() int { return 2 })
	if len(l) <= limit {
		return l
	}
	pivot := l[0]
	var lo, pivots, hi []int
	for _, x := range l {
		switch {
		case x < pivot:
			lo = append(lo, x)
		case x > pivot:
			hi = append(hi, x)
		default:
			pivots = append(pivots, x)
		}
	}
	pivots = mutant.Choose(mc, q.onlyOnePivot,
		func() []int { return pivots },
		func() []int { return pivots[:1] })

	out := make([]int, 0, len(l))
	out = append(out, q.sort(mc, lo)...)
	out = append(out, pivots...)
	return append(out, q.sort(mc, hi)...)
}
