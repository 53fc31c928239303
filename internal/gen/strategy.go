// Package gen adapts input generation and shrinking for the property runner.
//
// The runner treats generation as opaque: a Strategy yields the candidate at
// a given (seed, index) position and proposes simpler variants of a failing
// value. Candidates are produced by pgregory.net/rapid generators, so the
// same seed always yields the same sequence.
package gen

import (
	"encoding/json"
	"fmt"

	"pgregory.net/rapid"
)

// Strategy produces candidate inputs for a subject's property.
type Strategy interface {
	// Draw returns the index-th candidate for seed.
	Draw(seed int64, index int) any

	// Shrink returns simpler variants of v, most aggressive first.
	Shrink(v any) []any

	// Clone returns a copy the property may mutate freely.
	Clone(v any) any

	// Encode and Decode give the portable form stored with failures.
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)

	// Repr renders v for humans.
	Repr(v any) string
}

// Typed is a Strategy over values of type T.
type Typed[T any] struct {
	gen    *rapid.Generator[T]
	shrink func(T) []T
}

// From wraps a rapid generator. shrink may be nil, in which case failing
// inputs are reported unshrunk.
func From[T any](g *rapid.Generator[T], shrink func(T) []T) *Typed[T] {
	return &Typed[T]{gen: g, shrink: shrink}
}

// Draw implements Strategy.
func (s *Typed[T]) Draw(seed int64, index int) any {
	return s.gen.Example(DeriveSeed(seed, index))
}

// Shrink implements Strategy.
func (s *Typed[T]) Shrink(v any) []any {
	if s.shrink == nil {
		return nil
	}
	tv, ok := v.(T)
	if !ok {
		return nil
	}
	next := s.shrink(tv)
	out := make([]any, len(next))
	for i, n := range next {
		out[i] = n
	}
	return out
}

// Clone implements Strategy via a JSON round trip.
func (s *Typed[T]) Clone(v any) any {
	data, err := s.Encode(v)
	if err != nil {
		panic(fmt.Sprintf("gen: clone %T: %v", v, err))
	}
	out, err := s.Decode(data)
	if err != nil {
		panic(fmt.Sprintf("gen: clone %T: %v", v, err))
	}
	return out
}

// Encode implements Strategy.
func (s *Typed[T]) Encode(v any) ([]byte, error) {
	tv, ok := v.(T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("encode: got %T, want %T", v, zero)
	}
	return json.Marshal(tv)
}

// Decode implements Strategy.
func (s *Typed[T]) Decode(data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// Repr implements Strategy.
func (s *Typed[T]) Repr(v any) string {
	return fmt.Sprintf("%v", v)
}

// DeriveSeed mixes a campaign seed and candidate index into the seed handed
// to rapid (splitmix64 finaliser).
func DeriveSeed(seed int64, index int) int {
	z := uint64(seed)*0x9E3779B97F4A7C15 + uint64(index) + 1
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return int(z >> 1)
}
