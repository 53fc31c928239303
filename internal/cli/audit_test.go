package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/store"
)

func TestAudit_Agree(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"--shrink=false", "--shrink=true"} {
		_, _, err := execute(t, toyOptions(), storeArgs(dir,
			"sweep", "-s", "toy", mode, "--seeds", "3", "--budget", "50", "--export=false")...)
		require.NoError(t, err)
	}
	// One extra unshrunk seed has no partner.
	_, _, err := execute(t, toyOptions(), storeArgs(dir,
		"sweep", "-s", "toy", "--first-seed", "4", "--seeds", "1", "--budget", "50", "--export=false")...)
	require.NoError(t, err)

	out, _, err := execute(t, toyOptions(), storeArgs(dir, "audit", "-s", "toy")...)
	require.NoError(t, err)
	assert.Equal(t,
		"toy_single_unshrunk and toy_single_shrunk agree: 3 seeds, 15 combos compared, 1 seeds unpaired\n", out)
}

func TestAudit_Violation(t *testing.T) {
	dir := t.TempDir()
	ns := store.Namespace{Subject: "toy", ComboSize: 1}
	fail := func(attempts int) ir.RunResult {
		return ir.RunResult{
			Type:         ir.OutcomeFail,
			Attempts:     attempts,
			FailingInput: []byte("[-1]"),
			FailingRepr:  "[-1]",
			Triage:       [][]string{{"NEGATIVE"}},
		}
	}

	backend, err := store.Open(store.Config{Backend: store.BackendSQLite, Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, backend.Records(ns).Put(ctx, 1, ir.SweepRecord{"NEGATIVE": fail(3)}))
	require.NoError(t, backend.Records(ns.WithShrink(true)).Put(ctx, 1, ir.SweepRecord{"NEGATIVE": fail(4)}))
	require.NoError(t, backend.Close())

	out, _, err := execute(t, toyOptions(), storeArgs(dir, "audit", "-s", "toy")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [CONSISTENCY_VIOLATION]")
	assert.Contains(t, out, "seed=1, combo=NEGATIVE")
	assert.Contains(t, out, "unshrunk:\n")
	assert.Contains(t, out, `"attempts":3`)
	assert.Contains(t, out, `"attempts":4`)
}
