package sweep

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/store"
)

// Default values for Config.
const (
	DefaultBudget    = 500
	DefaultFirstSeed = 1
	DefaultSeeds     = 100
)

var validate = validator.New()

// Config describes one sweep.
type Config struct {
	Subject    string `validate:"required"`
	ComboSize  int    `validate:"min=1"`
	Shrink     bool
	Seeds      int   `validate:"min=1"`
	FirstSeed  int64 `validate:"min=0"`
	Workers    int   `validate:"min=1"`
	Budget     int   `validate:"min=1"`
	MaxShrinks int   `validate:"min=0"`
	Override   bool
}

// DefaultWorkers leaves one CPU for the coordinator.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// DefaultConfig returns a config for a single-defect, unshrunk sweep of
// subject.
func DefaultConfig(subject string) Config {
	return Config{
		Subject:    subject,
		ComboSize:  1,
		Seeds:      DefaultSeeds,
		FirstSeed:  DefaultFirstSeed,
		Workers:    DefaultWorkers(),
		Budget:     DefaultBudget,
		MaxShrinks: runner.DefaultMaxShrinks,
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid sweep config: %w", err)
	}
	return nil
}

// SeedList returns the seeds covered by the sweep, in order.
func (c Config) SeedList() []int64 {
	seeds := make([]int64, c.Seeds)
	for i := range seeds {
		seeds[i] = c.FirstSeed + int64(i)
	}
	return seeds
}

// Namespace returns the store namespace the sweep writes to.
func (c Config) Namespace() store.Namespace {
	return store.Namespace{Subject: c.Subject, ComboSize: c.ComboSize, Shrink: c.Shrink}
}

// RunOptions returns the runner options for seed.
func (c Config) RunOptions(seed int64) runner.Options {
	return runner.Options{
		Seed:       seed,
		Budget:     c.Budget,
		Shrink:     c.Shrink,
		MaxShrinks: c.MaxShrinks,
	}
}
