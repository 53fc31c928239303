package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/mutsweep/internal/ir"
	"github.com/roach88/mutsweep/internal/mutant"
	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/store"
	"github.com/roach88/mutsweep/internal/subject"
)

// Scheduler sweeps the combos of one namespace seed by seed.
type Scheduler struct {
	cfg     Config
	factory subject.Factory
	records store.Records
	logger  *slog.Logger
	metrics *Metrics
	runID   string

	universe []mutant.DefectID
	combos   []mutant.Set
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The scheduler tags it with the run ID.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New validates cfg and loads the subject once to enumerate its combos.
// Declaration problems and oversized combos are reported here, before any
// seed runs.
func New(cfg Config, factory subject.Factory, records store.Records, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if records.Namespace() != cfg.Namespace() {
		return nil, fmt.Errorf("records namespace %s does not match sweep %s", records.Namespace(), cfg.Namespace())
	}
	subj, err := factory()
	if err != nil {
		return nil, fmt.Errorf("load subject %q: %w", cfg.Subject, err)
	}
	universe := subj.Registry().IDs()
	if cfg.ComboSize > len(universe) {
		return nil, fmt.Errorf("combo size %d exceeds the %d defects of %q", cfg.ComboSize, len(universe), cfg.Subject)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	s := &Scheduler{
		cfg:      cfg,
		factory:  factory,
		records:  records,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:    runID.String(),
		universe: universe,
		combos:   mutant.Combinations(universe, cfg.ComboSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(
		"run_id", s.runID,
		"subject", cfg.Subject,
		"combo_size", cfg.ComboSize,
		"shrink", cfg.Shrink,
	)
	return s, nil
}

// RunID identifies this scheduler's run in logs.
func (s *Scheduler) RunID() string { return s.runID }

// Combos returns the enumerated combos in canonical order.
func (s *Scheduler) Combos() []mutant.Set { return s.combos }

// Workers returns the number of workers used per seed.
func (s *Scheduler) Workers() int {
	return min(s.cfg.Workers, len(s.combos))
}

// SeedReport describes what happened to one seed.
type SeedReport struct {
	Seed    int64
	Skipped bool
	Record  ir.SweepRecord
}

// Failures counts fail results in the record.
func (r SeedReport) Failures() int {
	n := 0
	for _, res := range r.Record {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Summary totals a sweep.
type Summary struct {
	RunID    string
	Seeds    int
	Swept    int
	Skipped  int
	Combos   int
	Failures int
}

// Run sweeps every configured seed in order and stops at the first error.
// Seeds committed before the error stay committed.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	sum := Summary{RunID: s.runID, Combos: len(s.combos)}
	s.logger.Info("sweep started",
		"seeds", s.cfg.Seeds, "first_seed", s.cfg.FirstSeed,
		"combos", len(s.combos), "workers", s.Workers())

	for _, seed := range s.cfg.SeedList() {
		rep, err := s.RunSeed(ctx, seed)
		if err != nil {
			return sum, err
		}
		sum.Seeds++
		sum.Failures += rep.Failures()
		if rep.Skipped {
			sum.Skipped++
		} else {
			sum.Swept++
		}
	}

	s.logger.Info("sweep finished",
		"swept", sum.Swept, "skipped", sum.Skipped, "failures", sum.Failures)
	return sum, nil
}

// RunSeed sweeps one seed. A stored record is returned untouched unless
// Override is set.
func (s *Scheduler) RunSeed(ctx context.Context, seed int64) (SeedReport, error) {
	start := time.Now()
	if !s.cfg.Override {
		rec, ok, err := s.records.Get(ctx, seed)
		if err != nil {
			return SeedReport{}, err
		}
		if ok {
			s.logger.Debug("seed already stored", "seed", seed)
			s.metrics.observeSeed(true, 0)
			return SeedReport{Seed: seed, Skipped: true, Record: rec}, nil
		}
	}

	rec, err := s.sweepSeed(ctx, seed)
	if err != nil {
		return SeedReport{}, err
	}
	if err := s.records.Put(ctx, seed, rec); err != nil {
		return SeedReport{}, fmt.Errorf("commit seed %d: %w", seed, err)
	}
	s.metrics.observeSeed(false, time.Since(start))
	digest, err := ir.RecordDigest(rec)
	if err != nil {
		return SeedReport{}, err
	}
	s.logger.Info("seed committed",
		"seed", seed, "digest", digest[:12], "elapsed", time.Since(start).Round(time.Millisecond))
	return SeedReport{Seed: seed, Record: rec}, nil
}

// partition deals combos round-robin to n workers.
func partition(combos []mutant.Set, n int) [][]mutant.Set {
	parts := make([][]mutant.Set, n)
	for i, c := range combos {
		parts[i%n] = append(parts[i%n], c)
	}
	return parts
}

// fragment is the single message a worker sends.
type fragment struct {
	worker int
	record ir.SweepRecord
}

// sweepSeed fans the seed's combos out to the workers and merges their
// fragments. Any worker error cancels the others and nothing is returned.
func (s *Scheduler) sweepSeed(ctx context.Context, seed int64) (ir.SweepRecord, error) {
	parts := partition(s.combos, s.Workers())
	fragments := make(chan fragment, len(parts))
	opts := s.cfg.RunOptions(seed)

	g, gctx := errgroup.WithContext(ctx)
	for w, part := range parts {
		g.Go(func() error {
			rec, err := s.work(gctx, seed, w, part, opts)
			if err != nil {
				return err
			}
			fragments <- fragment{worker: w, record: rec}
			return nil
		})
	}
	err := g.Wait()
	close(fragments)
	if err != nil {
		return nil, err
	}

	var received []ir.SweepRecord
	for f := range fragments {
		s.logger.Debug("fragment received", "seed", seed, "worker", f.worker, "combos", len(f.record))
		received = append(received, f.record)
	}
	if len(received) != len(parts) {
		return nil, NewIncompleteError(seed, len(parts), len(received), nil)
	}
	return mergeFragments(seed, s.combos, received)
}

// work evaluates one worker's combos on its own subject instance.
func (s *Scheduler) work(ctx context.Context, seed int64, worker int, combos []mutant.Set, opts runner.Options) (ir.SweepRecord, error) {
	subj, err := s.factory()
	if err != nil {
		return nil, NewWorkerError(seed, worker, "", err)
	}
	r := runner.New(subj, runner.WithLogger(s.logger.With("worker", worker)))

	rec := make(ir.SweepRecord, len(combos))
	for _, combo := range combos {
		res, err := Evaluate(ctx, r, combo, opts)
		if err != nil {
			return nil, NewWorkerError(seed, worker, string(combo.Key()), err)
		}
		rec[string(combo.Key())] = res
		s.metrics.observeResult(res)
	}
	return rec, nil
}

// mergeFragments joins worker fragments and checks that together they
// cover combos exactly once.
func mergeFragments(seed int64, combos []mutant.Set, fragments []ir.SweepRecord) (ir.SweepRecord, error) {
	merged := make(ir.SweepRecord, len(combos))
	total := 0
	for _, f := range fragments {
		for k, res := range f {
			merged[k] = res
			total++
		}
	}

	var missing []string
	for _, c := range combos {
		if _, ok := merged[string(c.Key())]; !ok {
			missing = append(missing, string(c.Key()))
		}
	}
	if len(missing) > 0 || total != len(combos) || len(merged) != len(combos) {
		return nil, NewIncompleteError(seed, len(combos), total, missing)
	}
	return merged, nil
}

// RepairResult reports the outcome of Repair.
type RepairResult struct {
	Seed    int64
	Combo   string
	Old     ir.RunResult
	HadOld  bool
	New     ir.RunResult
	Changed bool
	Diff    string
}

// Repair re-executes one combo for one stored seed against the current
// subject and upserts the result into that seed's record.
func (s *Scheduler) Repair(ctx context.Context, seed int64, combo mutant.Set) (RepairResult, error) {
	if combo.Len() != s.cfg.ComboSize {
		return RepairResult{}, fmt.Errorf("repair %s: combo has %d defects, namespace %s holds %d",
			combo.Key(), combo.Len(), s.cfg.Namespace(), s.cfg.ComboSize)
	}
	rec, ok, err := s.records.Get(ctx, seed)
	if err != nil {
		return RepairResult{}, err
	}
	if !ok {
		return RepairResult{}, fmt.Errorf("repair: no record for seed %d in %s; sweep it first", seed, s.cfg.Namespace())
	}

	subj, err := s.factory()
	if err != nil {
		return RepairResult{}, fmt.Errorf("load subject %q: %w", s.cfg.Subject, err)
	}
	if err := subj.Registry().Validate(combo); err != nil {
		return RepairResult{}, fmt.Errorf("repair %s: %w", combo.Key(), err)
	}
	r := runner.New(subj, runner.WithLogger(s.logger))
	res, err := Evaluate(ctx, r, combo, s.cfg.RunOptions(seed))
	if err != nil {
		return RepairResult{}, fmt.Errorf("repair %s seed %d: %w", combo.Key(), seed, err)
	}

	key := string(combo.Key())
	old, had := rec[key]
	out := RepairResult{Seed: seed, Combo: key, Old: old, HadOld: had, New: res}
	if had {
		out.Diff = cmp.Diff(old, res)
	}
	out.Changed = !had || out.Diff != ""

	rec[key] = res
	if err := s.records.Put(ctx, seed, rec); err != nil {
		return RepairResult{}, fmt.Errorf("repair: commit seed %d: %w", seed, err)
	}
	s.logger.Info("repaired", "seed", seed, "combo", key, "changed", out.Changed)
	return out, nil
}
