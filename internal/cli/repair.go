package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/sweep"
)

// RepairOutput is the result payload of the repair command.
type RepairOutput struct {
	Namespace string       `json:"namespace"`
	Seed      int64        `json:"seed"`
	Combo     string       `json:"combo"`
	Changed   bool         `json:"changed"`
	Result    ir.RunResult `json:"result"`
	Diff      string       `json:"diff,omitempty"`
}

func (o RepairOutput) String() string {
	if !o.Changed {
		return "unchanged"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "repaired %s seed %d combo %s", o.Namespace, o.Seed, o.Combo)
	if o.Diff != "" {
		fmt.Fprintf(&b, "\n%s", strings.TrimRight(o.Diff, "\n"))
	}
	return b.String()
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		defects []string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Recompute one stored combo result",
		Long: `Re-run one combo for one stored seed against the current subject and
replace its entry in the seed's record. Prints "unchanged" when the new
result is identical to the stored one, otherwise a diff.

The seed must already be swept; repair never creates partial records.

Examples:
  mutsweep repair -s avltree -k 2 --seed 12 --combo DELETE_NO_REBALANCE,SEARCH_NO_NULL_CHECK`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(rootOpts, cmd, defects, seed)
		},
	}

	keys := addStoreFlags(cmd, addSweepFlags(cmd))
	cmd.Flags().StringSliceVar(&defects, "combo", nil, "defects of the combo, comma separated")
	cmd.Flags().Int64Var(&seed, "seed", 0, "stored seed to repair")
	_ = cmd.MarkFlagRequired("combo")
	_ = cmd.MarkFlagRequired("seed")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(rootOpts.v, cmd, keys)
	}

	return cmd
}

func runRepair(opts *RootOptions, cmd *cobra.Command, defects []string, seed int64) error {
	v := opts.v
	cfg, err := sweepConfig(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	factory, err := opts.catalog().Factory(cfg.Subject)
	if err != nil {
		return WrapExitError(ExitCommandError, "unknown subject", err)
	}

	backend, err := openStore(v, opts.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			opts.logger.Error("error closing store", "error", closeErr)
		}
	}()

	sched, err := sweep.New(cfg, factory, backend.Records(cfg.Namespace()), sweep.WithLogger(opts.logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare repair", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	res, err := sched.Repair(ctx, seed, parseCombo(defects))
	if err != nil {
		return WrapExitError(ExitCommandError, "repair failed", err)
	}

	return opts.formatter(cmd).Success(RepairOutput{
		Namespace: cfg.Namespace().String(),
		Seed:      res.Seed,
		Combo:     res.Combo,
		Changed:   res.Changed,
		Result:    res.New,
		Diff:      res.Diff,
	})
}
