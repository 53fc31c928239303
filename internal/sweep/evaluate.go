package sweep

import (
	"context"
	"fmt"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/triage"
)

// Evaluate runs one campaign for combo and, on failure, triages the
// reported input.
func Evaluate(ctx context.Context, r *runner.Runner, combo mutant.Set, opts runner.Options) (ir.RunResult, error) {
	out, err := r.Run(ctx, combo, opts)
	if err != nil {
		return ir.RunResult{}, err
	}
	if !out.Failed {
		return ir.NoFail(out.Attempts), nil
	}

	causes, err := triage.Minimize(ctx, r, combo, out.Input)
	if err != nil {
		return ir.RunResult{}, err
	}
	strategy := r.Strategy()
	data, err := strategy.Encode(out.Input)
	if err != nil {
		return ir.RunResult{}, fmt.Errorf("encode failing input for %s: %w", combo.Key(), err)
	}
	return ir.RunResult{
		Type:         ir.OutcomeFail,
		Attempts:     out.Attempts,
		FailingInput: data,
		FailingRepr:  strategy.Repr(out.Input),
		Triage:       triage.Strings(causes),
	}, nil
}
