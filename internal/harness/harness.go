package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/subject"
	"github.com/roach88/mutsweep/internal/sweep"
)

// Harness executes scenarios against a subject catalog.
//
// Every scenario loads a fresh subject instance, so scenarios share no
// state and may run in any order.
type Harness struct {
	catalog *subject.Catalog
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New returns a harness over catalog.
func New(catalog *subject.Catalog, opts ...Option) *Harness {
	h := &Harness{
		catalog: catalog,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness over catalog.
func Run(ctx context.Context, catalog *subject.Catalog, scenario *Scenario) (*Result, error) {
	return New(catalog).Run(ctx, scenario)
}

// Run evaluates the scenario's campaign exactly as a sweep would and checks
// the outcome against its expect clause.
//
// A returned error means the scenario could not be executed at all (unknown
// subject, undeclared defect, interrupt). Unmet expectations are reported in
// the Result instead.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	s, err := h.catalog.Load(scenario.Subject)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	combo := scenario.ComboSet()
	if err := s.Registry().Validate(combo); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	r := runner.New(s, runner.WithLogger(h.logger))
	outcome, err := sweep.Evaluate(ctx, r, combo, runner.Options{
		Seed:   scenario.Seed,
		Budget: scenario.Budget,
		Shrink: scenario.Shrink,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Outcome = outcome
	for _, e := range EvaluateExpect(outcome, scenario.Expect) {
		result.AddError(e.Error())
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"subject", scenario.Subject,
		"combo", combo.Key(),
		"seed", scenario.Seed,
		"type", outcome.Type,
		"attempts", outcome.Attempts,
		"pass", result.Pass,
	)
	return result, nil
}
