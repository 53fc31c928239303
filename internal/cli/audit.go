package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/sweep"
)

// AuditOutput is the result payload of the audit command.
type AuditOutput struct {
	Unshrunk string `json:"unshrunk"`
	Shrunk   string `json:"shrunk"`
	Seeds    int    `json:"seeds"`
	Compared int    `json:"compared"`
	Unpaired int    `json:"unpaired"`
}

func (o AuditOutput) String() string {
	return fmt.Sprintf("%s and %s agree: %d seeds, %d combos compared, %d seeds unpaired",
		o.Unshrunk, o.Shrunk, o.Seeds, o.Compared, o.Unpaired)
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check that shrunk and unshrunk sweeps agree",
		Long: `Compare the shrunk and unshrunk records of one subject and combo size.
For every seed and combo stored in both, the outcome type must match and
fail results must report the same attempt count. Shrinking only rewrites the
reported input, so any disagreement means the subject or the harness is
non-deterministic.

Exit codes:
  0 - Records agree
  1 - Consistency violation (details printed)
  2 - Command error

Examples:
  mutsweep audit -s quicksort -k 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rootOpts, cmd)
		},
	}

	keys := addStoreFlags(cmd, addSweepFlags(cmd))
	delete(keys, cfgShrink)
	delete(keys, cfgBudget)
	delete(keys, cfgMaxShrinks)
	for _, name := range []string{"shrink", "budget", "max-shrinks"} {
		_ = cmd.Flags().MarkHidden(name)
	}
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(rootOpts.v, cmd, keys)
	}

	return cmd
}

func runAudit(opts *RootOptions, cmd *cobra.Command) error {
	v := opts.v
	ns, err := namespace(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid namespace", err)
	}
	unshrunkNS, shrunkNS := ns.WithShrink(false), ns.WithShrink(true)

	backend, err := openStore(v, opts.logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			opts.logger.Error("error closing store", "error", closeErr)
		}
	}()

	rep, err := sweep.Audit(cmd.Context(), backend.Records(unshrunkNS), backend.Records(shrunkNS))
	if err != nil {
		var serr *sweep.Error
		if errors.As(err, &serr) {
			_ = opts.formatter(cmd).Error(string(serr.Code), serr.Error(), serr.Details)
			return WrapExitError(ExitFailure, "audit failed", err)
		}
		return WrapExitError(ExitCommandError, "audit failed", err)
	}

	return opts.formatter(cmd).Success(AuditOutput{
		Unshrunk: unshrunkNS.String(),
		Shrunk:   shrunkNS.String(),
		Seeds:    rep.Seeds,
		Compared: rep.Compared,
		Unpaired: rep.Unpaired,
	})
}
