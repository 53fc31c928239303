// Package runner executes deterministic property-based campaigns against a
// subject with a given set of active defects.
//
// A campaign draws candidates from the subject's strategy in index order and
// evaluates the property on each until the first violation or until the
// budget is spent. Attempts counts the candidates evaluated strictly before
// the first violation; shrinking only post-processes that violation and
// never changes the count.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/subject"
)

// DefaultMaxShrinks bounds the property evaluations spent minimising one
// failure.
const DefaultMaxShrinks = 1000

// Options configures one campaign.
type Options struct {
	Seed       int64
	Budget     int
	Shrink     bool
	MaxShrinks int
}

func (o Options) maxShrinks() int {
	if o.MaxShrinks <= 0 {
		return DefaultMaxShrinks
	}
	return o.MaxShrinks
}

// Outcome is the raw result of a campaign.
type Outcome struct {
	Failed   bool
	Attempts int

	// Input is the reported counterexample: the first failing candidate, or
	// its minimised form when shrinking is on.
	Input any

	// Violation describes why Input fails.
	Violation error

	// ShrinkSteps counts property evaluations spent minimising.
	ShrinkSteps int
}

// Runner evaluates one subject instance. It is not safe for concurrent use.
type Runner struct {
	subject subject.Subject
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New returns a runner for s.
func New(s subject.Subject, opts ...Option) *Runner {
	r := &Runner{
		subject: s,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subject returns the subject the runner evaluates.
func (r *Runner) Subject() subject.Subject {
	return r.subject
}

// Strategy returns the subject's input strategy.
func (r *Runner) Strategy() gen.Strategy {
	return r.subject.Strategy()
}

// Run executes one campaign. Identical subject, active set and options give
// identical outcomes. Cancelling ctx stops generation and returns ctx.Err().
func (r *Runner) Run(ctx context.Context, active mutant.Set, opts Options) (Outcome, error) {
	if opts.Budget < 0 {
		return Outcome{}, fmt.Errorf("run: negative budget %d", opts.Budget)
	}
	mc, err := r.subject.Registry().NewContext(active)
	if err != nil {
		return Outcome{}, fmt.Errorf("run: %w", err)
	}
	strategy := r.subject.Strategy()

	for i := 0; i < opts.Budget; i++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		candidate, err := draw(strategy, opts.Seed, i)
		if err != nil {
			return Outcome{}, err
		}
		violation, err := r.evaluate(mc, strategy, candidate)
		if err != nil {
			return Outcome{}, err
		}
		if violation == nil {
			continue
		}

		out := Outcome{Failed: true, Attempts: i, Input: candidate, Violation: violation}
		r.logger.Debug("violation found",
			"combo", active.Key(), "seed", opts.Seed, "attempts", i, "error", violation)
		if opts.Shrink {
			if err := r.shrink(ctx, mc, strategy, &out, opts.maxShrinks()); err != nil {
				return Outcome{}, err
			}
		}
		return out, nil
	}

	return Outcome{Attempts: opts.Budget}, nil
}

// Check evaluates the property once on input with active switched on. It
// reports whether the property is violated.
func (r *Runner) Check(ctx context.Context, active mutant.Set, input any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	mc, err := r.subject.Registry().NewContext(active)
	if err != nil {
		return false, fmt.Errorf("check: %w", err)
	}
	violation, err := r.evaluate(mc, r.subject.Strategy(), input)
	if err != nil {
		return false, err
	}
	return violation != nil, nil
}

// shrink greedily replaces out.Input with the first simpler variant that
// still fails, until no variant fails or the step budget is spent.
func (r *Runner) shrink(ctx context.Context, mc *mutant.Context, strategy gen.Strategy, out *Outcome, maxSteps int) error {
	for improved := true; improved && out.ShrinkSteps < maxSteps; {
		improved = false
		for _, next := range strategy.Shrink(out.Input) {
			if out.ShrinkSteps >= maxSteps {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			out.ShrinkSteps++
			violation, err := r.evaluate(mc, strategy, next)
			if err != nil {
				return err
			}
			if violation != nil {
				out.Input = next
				out.Violation = violation
				improved = true
				break
			}
		}
	}
	r.logger.Debug("shrink finished", "steps", out.ShrinkSteps, "input", strategy.Repr(out.Input))
	return nil
}

// evaluate runs the property on a private copy of input. The first return is
// the violation, if any; the second is a harness fault.
func (r *Runner) evaluate(mc *mutant.Context, strategy gen.Strategy, input any) (violation error, fault error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		var ue *mutant.UndeclaredError
		if err, ok := rec.(error); ok && errors.As(err, &ue) {
			fault = fmt.Errorf("property referenced %w", ue)
			return
		}
		violation = &PanicError{Value: rec}
	}()

	return r.subject.Property(mc, strategy.Clone(input)), nil
}

func draw(strategy gen.Strategy, seed int64, index int) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("draw candidate %d for seed %d: %v", index, seed, rec)
		}
	}()
	return strategy.Draw(seed, index), nil
}

// PanicError wraps a panic raised by the property.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
