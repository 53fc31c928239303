package gen

import "pgregory.net/rapid"

// ShrinkInt proposes integers closer to zero.
func ShrinkInt(n int) []int {
	if n == 0 {
		return nil
	}
	out := []int{0}
	if n < 0 {
		out = append(out, -n)
	}
	if half := n / 2; half != 0 {
		out = append(out, half)
	}
	if n > 0 {
		out = append(out, n-1)
	} else {
		out = append(out, n+1)
	}
	return dedupe(out, n)
}

// ShrinkSlice proposes shorter slices first (halves, then single removals),
// then slices with one element shrunk by elem. elem may be nil.
func ShrinkSlice[T any](s []T, elem func(T) []T) [][]T {
	n := len(s)
	if n == 0 {
		return nil
	}
	var out [][]T
	out = append(out, []T{})
	if n > 1 {
		out = append(out, cloneSlice(s[:n/2]), cloneSlice(s[n/2:]))
	}
	for i := 0; i < n; i++ {
		c := make([]T, 0, n-1)
		c = append(c, s[:i]...)
		c = append(c, s[i+1:]...)
		out = append(out, c)
	}
	if elem != nil {
		for i := 0; i < n; i++ {
			for _, smaller := range elem(s[i]) {
				c := cloneSlice(s)
				c[i] = smaller
				out = append(out, c)
			}
		}
	}
	return out
}

// IntSlices is the usual strategy for sorting subjects.
func IntSlices() *Typed[[]int] {
	return From(rapid.SliceOf(rapid.Int()), func(s []int) [][]int {
		return ShrinkSlice(s, ShrinkInt)
	})
}

// DistinctIntSlices yields slices without repeated elements. Shrinking only
// removes elements, which keeps them distinct.
func DistinctIntSlices() *Typed[[]int] {
	return From(rapid.SliceOfDistinct(rapid.Int(), rapid.ID[int]), func(s []int) [][]int {
		return ShrinkSlice(s, nil)
	})
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func dedupe(vals []int, exclude int) []int {
	seen := map[int]bool{exclude: true}
	out := vals[:0]
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
