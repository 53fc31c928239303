// Command mutsweep sweeps combinations of injected defects through
// property-based tests and records what each one breaks.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mutsweep/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
