// Package triage isolates the minimal defect subsets that reproduce a
// recorded failure.
//
// A failing combo is explained as a disjunction of conjunctions: the combo
// fails on the recorded input when at least one returned subset is fully
// active. Subsets are tried smallest first and any superset of a confirmed
// cause is skipped, so every returned subset is minimal and none contains
// another.
package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/mutsweep/internal/mutant"
)

// Checker evaluates the property once against a fixed input.
//
// runner.Runner satisfies this interface.
type Checker interface {
	Check(ctx context.Context, active mutant.Set, input any) (bool, error)
}

// Minimize returns the minimal subsets of combo that still fail on input,
// ordered by size and then lexicographically by members. combo itself is not required to fail; an
// empty result means no subset reproduces the failure.
func Minimize(ctx context.Context, checker Checker, combo mutant.Set, input any) ([]mutant.Set, error) {
	var found []mutant.Set
	for _, candidate := range mutant.SubsetsBySize(combo) {
		if coveredBy(candidate, found) {
			continue
		}
		failed, err := checker.Check(ctx, candidate, input)
		if err != nil {
			return nil, fmt.Errorf("triage %s: check %s: %w", combo.Key(), candidate.Key(), err)
		}
		if failed {
			found = append(found, candidate)
		}
	}
	return found, nil
}

// coveredBy reports whether some confirmed cause is a subset of s.
func coveredBy(s mutant.Set, found []mutant.Set) bool {
	for _, f := range found {
		if f.SubsetOf(s) {
			return true
		}
	}
	return false
}

// Describe renders causes as a Boolean formula, e.g. "(A ∧ B) ∨ C". An empty
// slice renders as "∅".
func Describe(causes []mutant.Set) string {
	if len(causes) == 0 {
		return "∅"
	}
	terms := make([]string, len(causes))
	for i, c := range causes {
		ids := c.Strings()
		if len(ids) == 1 {
			terms[i] = ids[0]
			continue
		}
		terms[i] = "(" + strings.Join(ids, " ∧ ") + ")"
	}
	return strings.Join(terms, " ∨ ")
}

// Strings converts causes to the nested string form stored in results.
func Strings(causes []mutant.Set) [][]string {
	out := make([][]string, len(causes))
	for i, c := range causes {
		out[i] = c.Strings()
	}
	return out
}

// Parse is the inverse of Strings.
func Parse(raw [][]string) []mutant.Set {
	out := make([]mutant.Set, len(raw))
	for i, ids := range raw {
		members := make([]mutant.DefectID, len(ids))
		for j, id := range ids {
			members[j] = mutant.DefectID(id)
		}
		out[i] = mutant.NewSet(members...)
	}
	return out
}

// Minimal reports whether no cause is a subset of another.
func Minimal(causes []mutant.Set) bool {
	for i, a := range causes {
		for j, b := range causes {
			if i != j && a.SubsetOf(b) {
				return false
			}
		}
	}
	return true
}
