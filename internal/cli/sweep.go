package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/store"
	"github.com/roach88/mutsweep/internal/sweep"
)

// SweepOutput is the result payload of the sweep command.
type SweepOutput struct {
	RunID     string `json:"run_id"`
	Namespace string `json:"namespace"`
	Seeds     int    `json:"seeds"`
	Swept     int    `json:"swept"`
	Skipped   int    `json:"skipped"`
	Combos    int    `json:"combos"`
	Failures  int    `json:"failures"`
	Export    string `json:"export,omitempty"`
}

func (o SweepOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Swept %s (run %s)\n", o.Namespace, o.RunID)
	fmt.Fprintf(&b, "  seeds: %d (%d swept, %d already stored)\n", o.Seeds, o.Swept, o.Skipped)
	fmt.Fprintf(&b, "  combos per seed: %d\n", o.Combos)
	fmt.Fprintf(&b, "  failing results: %d", o.Failures)
	if o.Export != "" {
		fmt.Fprintf(&b, "\n  export: %s", o.Export)
	}
	return b.String()
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep every defect combination over a range of seeds",
		Long: `Run one property-based campaign per defect combination of the chosen
size for every seed, triage each failure and commit one record per seed.

Seeds already in the store are skipped unless --override is given. When run
on a terminal with existing results, the command asks before recomputing.

Exit codes:
  0 - Sweep completed
  1 - Sweep aborted (worker failure, incomplete merge, interrupt)
  2 - Command error (bad flags, unknown subject, store unavailable)

Examples:
  mutsweep sweep -s quicksort -k 2 --seeds 100
  mutsweep sweep -s avltree --shrink --workers 4 --backend sqlite
  MUTSWEEP_STORE_DIR=/tmp/results mutsweep sweep -s insertionsort`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(rootOpts, cmd)
		},
	}

	keys := addStoreFlags(cmd, addSweepFlags(cmd))
	f := cmd.Flags()
	f.Int("seeds", sweep.DefaultSeeds, "number of seeds to sweep")
	f.Int64("first-seed", sweep.DefaultFirstSeed, "first seed of the range")
	f.IntP("workers", "j", sweep.DefaultWorkers(), "worker goroutines per seed")
	f.Bool("override", false, "recompute seeds that are already stored")
	f.Bool("export", true, "write <store-dir>/<namespace>.json after the sweep")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	keys[cfgSeeds] = "seeds"
	keys[cfgFirstSeed] = "first-seed"
	keys[cfgWorkers] = "workers"
	keys[cfgOverride] = "override"
	keys[cfgExport] = "export"
	keys[cfgMetricsFile] = "metrics-file"
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(rootOpts.v, cmd, keys)
	}

	return cmd
}

func runSweep(opts *RootOptions, cmd *cobra.Command) error {
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
	records := backend.Records(cfg.Namespace())

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	if !cfg.Override {
		override, err := confirmOverride(ctx, opts, cmd, records, cfg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to inspect store", err)
		}
		cfg.Override = override
	}

	reg := prometheus.NewRegistry()
	sched, err := sweep.New(cfg, factory, records,
		sweep.WithLogger(opts.logger),
		sweep.WithMetrics(sweep.NewMetrics(reg)),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare sweep", err)
	}

	f := opts.formatter(cmd)
	f.VerboseLog("sweeping %s: %d combos x %d seeds on %d workers (run %s)",
		cfg.Namespace(), len(sched.Combos()), cfg.Seeds, sched.Workers(), sched.RunID())

	sum, err := sched.Run(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "sweep aborted", err)
	}

	out := SweepOutput{
		RunID:     sum.RunID,
		Namespace: cfg.Namespace().String(),
		Seeds:     sum.Seeds,
		Swept:     sum.Swept,
		Skipped:   sum.Skipped,
		Combos:    sum.Combos,
		Failures:  sum.Failures,
	}

	if v.GetBool(cfgExport) {
		path, err := sweep.WriteExport(ctx, records, v.GetString(cfgStoreDir))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to write export", err)
		}
		out.Export = path
	}
	if path := v.GetString(cfgMetricsFile); path != "" {
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	return f.Success(out)
}

// confirmOverride asks whether stored seeds in the requested range should
// be recomputed. It never prompts when nothing is stored or when stdin is
// not a terminal; the answer then is no.
func confirmOverride(ctx context.Context, opts *RootOptions, cmd *cobra.Command, records store.Records, cfg sweep.Config) (bool, error) {
	stored, err := records.Seeds(ctx)
	if err != nil {
		return false, err
	}
	want := cfg.SeedList()
	lo, hi := want[0], want[len(want)-1]
	existing := 0
	for _, seed := range stored {
		if seed >= lo && seed <= hi {
			existing++
		}
	}
	if existing == 0 || !opts.interactive() {
		return false, nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s already holds %d of %d seeds. Override existing results? [y/N] ",
		records.Namespace(), existing, len(want))
	return readYes(opts.input())
}

func readYes(r io.Reader) (bool, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// signalContext derives a context cancelled on SIGINT or SIGTERM. An
// interrupted sweep commits nothing for the seed in flight.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
