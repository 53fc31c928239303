package mutant

import (
	"slices"
	"strings"
)

// KeySeparator joins sorted defect IDs into a ComboKey.
const KeySeparator = "|"

// DefectID identifies a defect within a subject's registry.
type DefectID string

// ComboKey is the canonical string form of a Set: members sorted
// lexicographically and joined with KeySeparator.
type ComboKey string

// Set is an immutable set of defect IDs. The zero value is the empty set.
// Members are kept sorted, so two sets built from the same IDs in any order
// are indistinguishable.
type Set struct {
	ids []DefectID
}

// NewSet builds a Set from ids. Duplicates are collapsed.
func NewSet(ids ...DefectID) Set {
	if len(ids) == 0 {
		return Set{}
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return Set{ids: slices.Compact(sorted)}
}

// ParseKey is the inverse of Set.Key. Members are re-sorted, so keys written
// in a non-canonical order parse to the same set.
func ParseKey(key ComboKey) Set {
	if key == "" {
		return Set{}
	}
	parts := strings.Split(string(key), KeySeparator)
	ids := make([]DefectID, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		ids = append(ids, DefectID(p))
	}
	return NewSet(ids...)
}

// CanonicalKey rewrites key into canonical member order.
func CanonicalKey(key ComboKey) ComboKey {
	return ParseKey(key).Key()
}

// Key returns the canonical key of the set.
func (s Set) Key() ComboKey {
	return ComboKey(strings.Join(s.Strings(), KeySeparator))
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	return len(s.ids) == 0
}

// IDs returns the members in canonical order. The slice is a copy.
func (s Set) IDs() []DefectID {
	return slices.Clone(s.ids)
}

// Strings returns the members as plain strings in canonical order.
func (s Set) Strings() []string {
	out := make([]string, len(s.ids))
	for i, id := range s.ids {
		out[i] = string(id)
	}
	return out
}

// Contains reports whether id is a member.
func (s Set) Contains(id DefectID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// SubsetOf reports whether every member of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	if len(s.ids) > len(other.ids) {
		return false
	}
	for _, id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.ids, other.ids)
}

// String renders the set as {A, B}.
func (s Set) String() string {
	return "{" + strings.Join(s.Strings(), ", ") + "}"
}
