package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/roach88/mutsweep/internal/subject"
	"github.com/roach88/mutsweep/internal/testutil"
)

// toyOptions returns root options over the toy catalog that never prompt.
func toyOptions() *RootOptions {
	c := subject.NewCatalog()
	c.Register(testutil.ToyName, testutil.ToyFactory(nil))
	return &RootOptions{
		Catalog:     c,
		Interactive: func() bool { return false },
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// storeArgs points a command at a sqlite store in dir.
func storeArgs(dir string, args ...string) []string {
	return append(args, "--backend", "sqlite", "--store-dir", dir)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
