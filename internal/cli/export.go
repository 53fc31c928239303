package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/mutsweep/internal/sweep"
)

// ExportOutput is the result payload of the export command.
type ExportOutput struct {
	Namespace string `json:"namespace"`
	Seeds     int    `json:"seeds"`
	Path      string `json:"path"`
}

func (o ExportOutput) String() string {
	return "wrote " + o.Path
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a namespace's records as one JSON file",
		Long: `Write every stored record of a namespace to <dir>/<namespace>.json as a
canonical JSON object keyed by seed.

Examples:
  mutsweep export -s quicksort -k 2
  mutsweep export -s avltree --shrink --out ./results`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, outDir)
		},
	}

	keys := addStoreFlags(cmd, addSweepFlags(cmd))
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: the store directory)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return bindFlags(rootOpts.v, cmd, keys)
	}

	return cmd
}

func runExport(opts *RootOptions, cmd *cobra.Command, outDir string) error {
	v := opts.v
	ns, err := namespace(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid namespace", err)
	}
	if outDir == "" {
		outDir = v.GetString(cfgStoreDir)
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
	records := backend.Records(ns)

	ctx := cmd.Context()
	seeds, err := records.Seeds(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read store", err)
	}
	path, err := sweep.WriteExport(ctx, records, outDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}

	return opts.formatter(cmd).Success(ExportOutput{
		Namespace: ns.String(),
		Seeds:     len(seeds),
		Path:      path,
	})
}
