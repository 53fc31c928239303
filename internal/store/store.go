package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/roach88/mutsweep/internal/ir"
)

// Backend names.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Records is the record set of one namespace.
type Records interface {
	// Namespace returns the namespace the records belong to.
	Namespace() Namespace

	// Get returns the record for seed. The bool is false when no record
	// exists.
	Get(ctx context.Context, seed int64) (ir.SweepRecord, bool, error)

	// Put replaces the record for seed.
	Put(ctx context.Context, seed int64, rec ir.SweepRecord) error

	// Seeds returns the stored seeds in ascending order.
	Seeds(ctx context.Context) ([]int64, error)

	// Export returns every stored record.
	Export(ctx context.Context) (ir.Export, error)
}

// Backend opens namespaces on one underlying database.
type Backend interface {
	Records(ns Namespace) Records
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is BackendBadger or BackendSQLite.
	Backend string

	// Dir holds the database files. Ignored when InMemory is true.
	Dir string

	// InMemory keeps everything in memory. Used by tests.
	InMemory bool

	// Logger receives backend diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Open opens the configured backend.
func Open(cfg Config) (Backend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, fmt.Errorf("open store: dir is required")
	}

	switch cfg.Backend {
	case BackendBadger, "":
		path := ""
		if !cfg.InMemory {
			path = filepath.Join(cfg.Dir, "badger")
		}
		return openBadger(path, logger)
	case BackendSQLite:
		path := ":memory:"
		if !cfg.InMemory {
			path = filepath.Join(cfg.Dir, "results.db")
		}
		return openSQLite(path)
	default:
		return nil, fmt.Errorf("open store: unknown backend %q", cfg.Backend)
	}
}

// exportAll reads every seed of r through Get.
func exportAll(ctx context.Context, r Records) (ir.Export, error) {
	seeds, err := r.Seeds(ctx)
	if err != nil {
		return nil, err
	}
	out := make(ir.Export, len(seeds))
	for _, seed := range seeds {
		rec, ok, err := r.Get(ctx, seed)
		if err != nil {
			return nil, err
		}
		if ok {
			out[seed] = rec
		}
	}
	return out, nil
}

func sortSeeds(seeds []int64) []int64 {
	slices.Sort(seeds)
	return seeds
}
