package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/harness"
)

// VerifyOutput wraps a suite result for text rendering.
type VerifyOutput struct {
	*harness.SuiteResult
}

func (o VerifyOutput) String() string {
	var b strings.Builder
	for _, f := range o.Failures {
		name := f.Scenario
		if name == "" {
			name = f.Path
		}
		fmt.Fprintf(&b, "✗ %s\n", name)
		for _, e := range f.Errors {
			for _, line := range strings.Split(e, "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}
	fmt.Fprintf(&b, "%d passed, %d failed, %d total", o.Passed, o.Failed, o.Total)
	return b.String()
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <scenarios-dir>",
		Short: "Run expectation scenarios against the subject catalog",
		Long: `Run every YAML scenario in a directory. Each scenario pins one campaign
(subject, combo, seed, budget, shrink mode) and the result a sweep must
record for it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (directory missing, duplicate scenario names)

Examples:
  mutsweep verify ./testdata/scenarios
  mutsweep verify ./testdata/scenarios --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd, args[0])
		},
	}
}

func runVerify(opts *RootOptions, cmd *cobra.Command, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	h := harness.New(opts.catalog(), harness.WithLogger(opts.logger))
	res, err := h.RunDir(ctx, dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenarios", err)
	}

	if err := opts.formatter(cmd).Success(VerifyOutput{res}); err != nil {
		return err
	}
	if !res.Pass() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", res.Failed, res.Total))
	}
	return nil
}
