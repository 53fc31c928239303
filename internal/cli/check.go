package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/sweep"
	"github.com/roach88/mutsweep/internal/triage"
)

// CheckOutput is the result payload of the check command.
type CheckOutput struct {
	Subject     string     `json:"subject"`
	Combo       string     `json:"combo"`
	Seed        int64      `json:"seed"`
	Shrink      bool       `json:"shrink"`
	Type        ir.Outcome `json:"type"`
	Attempts    int        `json:"attempts"`
	FailingRepr string     `json:"failing_repr,omitempty"`
	Triage      [][]string `json:"triage,omitempty"`
}

func (o CheckOutput) String() string {
	combo := o.Combo
	if combo == "" {
		combo = "baseline"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s seed=%d shrink=%t\n", o.Subject, combo, o.Seed, o.Shrink)
	if o.Type != ir.OutcomeFail {
		fmt.Fprintf(&b, "  nofail after %d attempts", o.Attempts)
		return b.String()
	}
	fmt.Fprintf(&b, "  fail after %d attempts\n", o.Attempts)
	fmt.Fprintf(&b, "  input: %s\n", o.FailingRepr)
	fmt.Fprintf(&b, "  causes: %s", triage.Describe(triage.Parse(o.Triage)))
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		defects []string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one campaign and print its result",
		Long: `Run a single property-based campaign for one defect combination and seed,
triage the failure if there is one, and print the result. The store is not
read or written.

Examples:
  mutsweep check -s insertionsort --combo SKIP_LAST_ELEMENT --seed 7
  mutsweep check -s quicksort --combo NO_SORT_LEN_2_LISTS,ONLY_ADD_ONE_PIVOT --shrink
  mutsweep check -s avltree --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, defects, seed)
		},
	}

	keys := addSweepFlags(cmd)
	delete(keys, cfgComboSize)
	_ = cmd.Flags().MarkHidden("combo-size")
	cmd.Flags().StringSliceVar(&defects, "combo", nil, "defects to activate, comma separated (empty: baseline)")
	cmd.Flags().Int64Var(&seed, "seed", sweep.DefaultFirstSeed, "campaign seed")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(rootOpts.v, cmd, keys)
	}

	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, defects []string, seed int64) error {
	v := opts.v
	name := v.GetString(cfgSubject)
	if name == "" {
		return NewExitError(ExitCommandError, "subject is required")
	}
	subj, err := opts.catalog().Load(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load subject", err)
	}
	combo := parseCombo(defects)
	if err := subj.Registry().Validate(combo); err != nil {
		return WrapExitError(ExitCommandError, "invalid combo", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	r := runner.New(subj, runner.WithLogger(opts.logger))
	res, err := sweep.Evaluate(ctx, r, combo, runner.Options{
		Seed:       seed,
		Budget:     v.GetInt(cfgBudget),
		Shrink:     v.GetBool(cfgShrink),
		MaxShrinks: v.GetInt(cfgMaxShrinks),
	})
	if err != nil {
		return WrapExitError(ExitFailure, "campaign aborted", err)
	}

	return opts.formatter(cmd).Success(CheckOutput{
		Subject:     name,
		Combo:       string(combo.Key()),
		Seed:        seed,
		Shrink:      v.GetBool(cfgShrink),
		Type:        res.Type,
		Attempts:    res.Attempts,
		FailingRepr: res.FailingRepr,
		Triage:      res.Triage,
	})
}

// parseCombo builds a set from flag values. Entries may themselves be
// combo keys ("A|B").
func parseCombo(values []string) mutant.Set {
	var ids []mutant.DefectID
	for _, v := range values {
		for _, id := range strings.Split(v, mutant.KeySeparator) {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, mutant.DefectID(id))
			}
		}
	}
	return mutant.NewSet(ids...)
}
