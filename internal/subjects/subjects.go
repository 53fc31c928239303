// Package subjects holds the built-in programs under test.
//
// Each subject is a small reference implementation with labelled injection
// points. Loading a subject declares its defects and binds its points; a
// fresh instance is loaded per worker.
package subjects

import (
	"fmt"
	"slices"

	"github.com/roach88/mutsweep/internal/subject"
)

// Register adds every built-in subject to c.
func Register(c *subject.Catalog) {
	c.Register(QuicksortName, func() (subject.Subject, error) { return NewQuicksort() })
	c.Register(InsertionSortName, func() (subject.Subject, error) { return NewInsertionSort() })
	c.Register(AVLTreeName, func() (subject.Subject, error) { return NewAVLTree() })
}

// Catalog returns a catalog holding the built-in subjects.
func Catalog() *subject.Catalog {
	c := subject.NewCatalog()
	Register(c)
	return c
}

// checkSorted reports whether out is an ordered permutation of in.
func checkSorted(in, out []int) error {
	for i := 1; i < len(out); i++ {
		if out[i-1] > out[i] {
			return fmt.Errorf("not sorted at %d: %d > %d", i, out[i-1], out[i])
		}
	}
	want := slices.Clone(in)
	slices.Sort(want)
	if !slices.Equal(want, out) {
		return fmt.Errorf("not a permutation of the input: got %v, want %v", out, want)
	}
	return nil
}

func intSlice(name string, input any) ([]int, error) {
	xs, ok := input.([]int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected input %T", name, input)
	}
	return xs, nil
}
