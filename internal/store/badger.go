package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/mutsweep/internal/ir"
)

// gcDiscardRatio is the garbage ratio that triggers value log GC on close.
const gcDiscardRatio = 0.5

// Badger stores records in an embedded badger database.
type Badger struct {
	db       *badger.DB
	logger   *slog.Logger
	inMemory bool
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// openBadger opens the database at path, or in memory when path is empty.
func openBadger(path string, logger *slog.Logger) (*Badger, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db, logger: logger, inMemory: path == ""}, nil
}

// Records implements Backend.
func (b *Badger) Records(ns Namespace) Records {
	return &badgerRecords{db: b.db, ns: ns, prefix: []byte(ns.String() + "/")}
}

// Close runs one round of value log GC and closes the database.
func (b *Badger) Close() error {
	if !b.inMemory {
		err := b.db.RunValueLogGC(gcDiscardRatio)
		if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			b.logger.Warn("badger value log GC error", slog.String("error", err.Error()))
		}
	}
	return b.db.Close()
}

type badgerRecords struct {
	db     *badger.DB
	ns     Namespace
	prefix []byte
}

func (r *badgerRecords) key(seed int64) []byte {
	return strconv.AppendInt(append([]byte(nil), r.prefix...), seed, 10)
}

func (r *badgerRecords) Namespace() Namespace { return r.ns }

func (r *badgerRecords) Get(ctx context.Context, seed int64) (ir.SweepRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(seed))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", r.ns, seed, err)
	}
	rec, err := ir.UnmarshalRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%d: %w", r.ns, seed, err)
	}
	return rec, true, nil
}

func (r *badgerRecords) Put(ctx context.Context, seed int64, rec ir.SweepRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := ir.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("put %s/%d: %w", r.ns, seed, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(seed), data)
	})
	if err != nil {
		return fmt.Errorf("put %s/%d: %w", r.ns, seed, err)
	}
	return nil
}

// Seeds scans the namespace prefix. Keys are decimal text, so the scan order
// is not numeric and the result is sorted afterwards.
func (r *badgerRecords) Seeds(ctx context.Context) ([]int64, error) {
	var seeds []int64
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = r.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			seed, err := strconv.ParseInt(string(key[len(r.prefix):]), 10, 64)
			if err != nil {
				return fmt.Errorf("malformed key %q: %w", key, err)
			}
			seeds = append(seeds, seed)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seeds %s: %w", r.ns, err)
	}
	return sortSeeds(seeds), nil
}

func (r *badgerRecords) Export(ctx context.Context) (ir.Export, error) {
	return exportAll(ctx, r)
}
