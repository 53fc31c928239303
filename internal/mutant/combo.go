package mutant

// Combinations returns every size-k subset of ids in lexicographic order of
// the sorted universe. The order is stable across runs, which keeps work
// partitioning reproducible.
func Combinations(ids []DefectID, k int) []Set {
	universe := NewSet(ids...).ids
	n := len(universe)
	if k <= 0 || k > n {
		return nil
	}

	var out []Set
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		members := make([]DefectID, k)
		for i, j := range idx {
			members[i] = universe[j]
		}
		// universe is sorted and idx is increasing, so members are already canonical
		out = append(out, Set{ids: members})

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// SubsetsBySize returns every non-empty subset of s, smallest first. Within a
// size the order follows Combinations.
func SubsetsBySize(s Set) []Set {
	var out []Set
	for k := 1; k <= s.Len(); k++ {
		out = append(out, Combinations(s.ids, k)...)
	}
	return out
}

// CountCombinations returns C(n, k).
func CountCombinations(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	c := 1
	for i := 1; i <= k; i++ {
		c = c * (n - k + i) / i
	}
	return c
}
