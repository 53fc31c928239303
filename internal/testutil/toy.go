// Package testutil provides deterministic fixture subjects for tests.
package testutil

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/subject"
)

// Toy defects. Each one fails on a simple, predictable class of inputs.
const (
	// Negative fails on any input holding a negative number.
	Negative mutant.DefectID = "NEGATIVE"
	// Long fails on inputs with three or more elements.
	Long mutant.DefectID = "LONG"
	// PairA and PairB fail together on any non-empty input, never alone.
	PairA mutant.DefectID = "PAIR_A"
	PairB mutant.DefectID = "PAIR_B"
	// Equivalent changes nothing observable.
	Equivalent mutant.DefectID = "EQUIVALENT"
)

// ToyName is the subject name used by the toy fixture.
const ToyName = "toy"

// Toy is a subject over []int whose property fails exactly when an active
// defect's trigger condition holds. Failure causes are known in advance,
// which makes triage results predictable.
type Toy struct {
	reg      *mutant.Registry
	strategy gen.Strategy
	calls    *atomic.Int64

	negative, long, pairA, pairB, equivalent mutant.Point
}

// NewToy loads a Toy. calls, when non-nil, is incremented on every property
// evaluation; it is the only state shared between instances.
func NewToy(calls *atomic.Int64) (*Toy, error) {
	b := mutant.NewBuilder(ToyName)
	t := &Toy{
		strategy:   gen.IntSlices(),
		calls:      calls,
		negative:   b.Point(b.Declare(Negative, "fails on negative elements")),
		long:       b.Point(b.Declare(Long, "fails on three or more elements")),
		pairA:      b.Point(b.Declare(PairA, "half of a conjunctive defect")),
		pairB:      b.Point(b.Declare(PairB, "other half of a conjunctive defect")),
		equivalent: b.Point(b.Declare(Equivalent, "equivalent mutant")),
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	t.reg = reg
	return t, nil
}

// ToyFactory returns a factory producing independent Toy instances that
// share calls.
func ToyFactory(calls *atomic.Int64) subject.Factory {
	return func() (subject.Subject, error) {
		return NewToy(calls)
	}
}

// Name implements subject.Subject.
func (t *Toy) Name() string { return ToyName }

// Registry implements subject.Subject.
func (t *Toy) Registry() *mutant.Registry { return t.reg }

// Strategy implements subject.Subject.
func (t *Toy) Strategy() gen.Strategy { return t.strategy }

// Property implements subject.Subject.
func (t *Toy) Property(mc *mutant.Context, input any) error {
	if t.calls != nil {
		t.calls.Add(1)
	}
	xs, ok := input.([]int)
	if !ok {
		return fmt.Errorf("toy: unexpected input %T", input)
	}

	if mc.Active(t.negative.ID()) && slices.ContainsFunc(xs, func(x int) bool { return x < 0 }) {
		return errors.New("negative element")
	}
	limit := mutant.Choose(mc, t.long, func() int { return -1 }, func() int { return 3 })
	if limit >= 0 && len(xs) >= limit {
		return fmt.Errorf("length %d", len(xs))
	}
	if mc.Active(t.pairA.ID()) && mc.Active(t.pairB.ID()) && len(xs) > 0 {
		panic("pair defect")
	}
	n := mutant.Choose(mc, t.equivalent, func() int { return len(xs) }, func() int { return len(xs) + 0 })
	if n != len(xs) {
		return errors.New("unreachable")
	}
	return nil
}

// Fails reports whether the toy property fails on xs with active switched
// on, computed independently of the subject.
func Fails(active mutant.Set, xs []int) bool {
	if active.Contains(Negative) && slices.ContainsFunc(xs, func(x int) bool { return x < 0 }) {
		return true
	}
	if active.Contains(Long) && len(xs) >= 3 {
		return true
	}
	return active.Contains(PairA) && active.Contains(PairB) && len(xs) > 0
}
