package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/mutsweep/internal/runner"
	"github.com/roach88/mutsweep/internal/store"
	"github.com/roach88/mutsweep/internal/sweep"
)

const (
	configFileName = "mutsweep"
	configFileType = "yaml"
	envPrefix      = "MUTSWEEP"

	defaultStoreDir = "data"
)

// Config keys. Nested keys map to env vars with "." replaced by "_", e.g.
// store.dir is MUTSWEEP_STORE_DIR.
const (
	cfgSubject      = "subject"
	cfgComboSize    = "combo_size"
	cfgShrink       = "shrink"
	cfgSeeds        = "seeds"
	cfgFirstSeed    = "first_seed"
	cfgWorkers      = "workers"
	cfgBudget       = "budget"
	cfgMaxShrinks   = "max_shrinks"
	cfgOverride     = "override"
	cfgStoreBackend = "store.backend"
	cfgStoreDir     = "store.dir"
	cfgExport       = "export"
	cfgMetricsFile  = "metrics_file"
)

// loadConfig resolves configuration from flags, MUTSWEEP_* env vars, an
// optional YAML file and defaults, in that order of precedence. Without an
// explicit path a missing ./mutsweep.yaml is not an error.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgComboSize, 1)
	v.SetDefault(cfgSeeds, sweep.DefaultSeeds)
	v.SetDefault(cfgFirstSeed, sweep.DefaultFirstSeed)
	v.SetDefault(cfgWorkers, sweep.DefaultWorkers())
	v.SetDefault(cfgBudget, sweep.DefaultBudget)
	v.SetDefault(cfgMaxShrinks, runner.DefaultMaxShrinks)
	v.SetDefault(cfgStoreBackend, store.BackendBadger)
	v.SetDefault(cfgStoreDir, defaultStoreDir)
	v.SetDefault(cfgExport, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// bindFlags binds command flags to config keys. Only flags set on the
// command line take precedence over env and file values.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("bind %s: no flag --%s", key, flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// addSweepFlags registers the flags that select a namespace and shape
// campaigns. Defaults are reported for help text only; values resolve
// through viper.
func addSweepFlags(cmd *cobra.Command) map[string]string {
	f := cmd.Flags()
	f.StringP("subject", "s", "", "subject to sweep (see 'mutsweep subjects')")
	f.IntP("combo-size", "k", 1, "number of simultaneously active defects")
	f.Bool("shrink", false, "minimise failing inputs before recording them")
	f.Int("budget", sweep.DefaultBudget, "generated inputs per campaign")
	f.Int("max-shrinks", runner.DefaultMaxShrinks, "property evaluations allowed while shrinking")
	return map[string]string{
		cfgSubject:    "subject",
		cfgComboSize:  "combo-size",
		cfgShrink:     "shrink",
		cfgBudget:     "budget",
		cfgMaxShrinks: "max-shrinks",
	}
}

// addStoreFlags registers the result store flags.
func addStoreFlags(cmd *cobra.Command, keys map[string]string) map[string]string {
	f := cmd.Flags()
	f.String("store-dir", defaultStoreDir, "directory holding the result store and exports")
	f.String("backend", store.BackendBadger, "result store backend (badger|sqlite)")
	keys[cfgStoreDir] = "store-dir"
	keys[cfgStoreBackend] = "backend"
	return keys
}

// sweepConfig assembles and validates a sweep.Config from resolved values.
func sweepConfig(v *viper.Viper) (sweep.Config, error) {
	cfg := sweep.Config{
		Subject:    v.GetString(cfgSubject),
		ComboSize:  v.GetInt(cfgComboSize),
		Shrink:     v.GetBool(cfgShrink),
		Seeds:      v.GetInt(cfgSeeds),
		FirstSeed:  v.GetInt64(cfgFirstSeed),
		Workers:    v.GetInt(cfgWorkers),
		Budget:     v.GetInt(cfgBudget),
		MaxShrinks: v.GetInt(cfgMaxShrinks),
		Override:   v.GetBool(cfgOverride),
	}
	if err := cfg.Validate(); err != nil {
		return sweep.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured result store backend.
func openStore(v *viper.Viper, logger *slog.Logger) (store.Backend, error) {
	return store.Open(store.Config{
		Backend: v.GetString(cfgStoreBackend),
		Dir:     v.GetString(cfgStoreDir),
		Logger:  logger,
	})
}

// namespace resolves the namespace selected by the sweep flags.
func namespace(v *viper.Viper) (store.Namespace, error) {
	ns := store.Namespace{
		Subject:   v.GetString(cfgSubject),
		ComboSize: v.GetInt(cfgComboSize),
		Shrink:    v.GetBool(cfgShrink),
	}
	if err := ns.Validate(); err != nil {
		return store.Namespace{}, err
	}
	return ns, nil
}
