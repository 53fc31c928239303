package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mutsweep/internal/ir"
)

var backends = []string{BackendBadger, BackendSQLite}

// createTestBackend opens an in-memory backend closed at test end.
func createTestBackend(t *testing.T, backend string) Backend {
	t.Helper()
	b, err := Open(Config{Backend: backend, InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func testNamespace() Namespace {
	return Namespace{Subject: "toy", ComboSize: 1, Shrink: false}
}

func failResult(attempts int) ir.RunResult {
	return ir.RunResult{
		Type:         ir.OutcomeFail,
		Attempts:     attempts,
		FailingInput: []byte("[-1]"),
		FailingRepr:  "[-1]",
		Triage:       [][]string{{"NEGATIVE"}},
	}
}

func TestRecordsPutGet(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			r := createTestBackend(t, backend).Records(testNamespace())

			_, ok, err := r.Get(ctx, 1)
			require.NoError(t, err)
			assert.False(t, ok)

			rec := ir.SweepRecord{"NEGATIVE": failResult(4), "LONG": ir.NoFail(100)}
			require.NoError(t, r.Put(ctx, 1, rec))

			got, ok, err := r.Get(ctx, 1)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, rec, got)
		})
	}
}

func TestRecordsPutReplaces(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			r := createTestBackend(t, backend).Records(testNamespace())

			require.NoError(t, r.Put(ctx, 3, ir.SweepRecord{"A": ir.NoFail(1), "B": ir.NoFail(2)}))
			require.NoError(t, r.Put(ctx, 3, ir.SweepRecord{"A": ir.NoFail(5)}))

			got, ok, err := r.Get(ctx, 3)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, ir.SweepRecord{"A": ir.NoFail(5)}, got)
		})
	}
}

func TestRecordsSeedsOrdered(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			r := createTestBackend(t, backend).Records(testNamespace())

			for _, seed := range []int64{10, 2, 1, 33} {
				require.NoError(t, r.Put(ctx, seed, ir.SweepRecord{"A": ir.NoFail(int(seed))}))
			}

			seeds, err := r.Seeds(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2, 10, 33}, seeds)

			export, err := r.Export(ctx)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2, 10, 33}, export.Seeds())
			assert.Equal(t, ir.NoFail(33), export[33]["A"])
		})
	}
}

func TestRecordsNamespacesIsolated(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			b := createTestBackend(t, backend)
			unshrunk := b.Records(testNamespace())
			shrunk := b.Records(testNamespace().WithShrink(true))

			require.NoError(t, unshrunk.Put(ctx, 1, ir.SweepRecord{"A": ir.NoFail(1)}))

			_, ok, err := shrunk.Get(ctx, 1)
			require.NoError(t, err)
			assert.False(t, ok)

			seeds, err := shrunk.Seeds(ctx)
			require.NoError(t, err)
			assert.Empty(t, seeds)
		})
	}
}

func TestRecordsPersistAcrossOpen(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			rec := ir.SweepRecord{"NEGATIVE": failResult(0)}

			b, err := Open(Config{Backend: backend, Dir: dir})
			require.NoError(t, err)
			require.NoError(t, b.Records(testNamespace()).Put(ctx, 7, rec))
			require.NoError(t, b.Close())

			b, err = Open(Config{Backend: backend, Dir: dir})
			require.NoError(t, err)
			defer b.Close()

			got, ok, err := b.Records(testNamespace()).Get(ctx, 7)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, rec, got)
		})
	}
}

func TestRecordsCancelledContext(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			r := createTestBackend(t, backend).Records(testNamespace())
			assert.Error(t, r.Put(ctx, 1, ir.SweepRecord{}))
		})
	}
}

func TestOpenSQLiteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(Config{Backend: BackendSQLite, Dir: dir})
	require.NoError(t, err)
	defer b.Close()

	_, err = os.Stat(filepath.Join(dir, "results.db"))
	assert.NoError(t, err)

	var version int
	require.NoError(t, b.(*SQLite).db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpenSQLiteIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		b, err := Open(Config{Backend: BackendSQLite, Dir: dir})
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, b.Close())
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(Config{Backend: "leveldb", InMemory: true})
	assert.ErrorContains(t, err, "unknown backend")

	_, err = Open(Config{Backend: BackendBadger})
	assert.ErrorContains(t, err, "dir is required")
}

func TestGetRejectsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	b := createTestBackend(t, BackendSQLite).(*SQLite)
	_, err := b.db.Exec(`INSERT INTO sweep_records (namespace, seed, record) VALUES (?, ?, ?)`,
		testNamespace().String(), 1, `{"A":{"type":"maybe","attempts":1}}`)
	require.NoError(t, err)

	_, _, err = b.Records(testNamespace()).Get(ctx, 1)
	assert.ErrorContains(t, err, "unknown result type")
}
