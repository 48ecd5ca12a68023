// Command engine is the local operations surface for the decision
// engine: feed it events, run the delayed-reward sweeper, replay a
// fixture, or inspect a user's persisted state. Transport, auth and
// dashboards live outside this repository; this binary is the thin
// wiring the core needs to be driven at all.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

var (
	flagConfig string
	flagDB     string
	flagSeed   int64
)

var rootCmd = &cobra.Command{
	Use:   "engine",
	Short: "Adaptive vocabulary-learning decision engine",
	Long: `Run and inspect the adaptive learning decision engine locally.
Configuration comes from a TOML file (see 'engine bootstrap'), with
ENGINE_DB_PATH overriding the store location.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "engine.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 1, "Seed for the engine's sampling RNG")
}

// openEngine resolves configuration and wires a fully-constructed engine
// plus its store handle. The caller owns closing the store.
func openEngine() (*control.Engine, *store.Store, config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	if flagDB != "" {
		cfg.Store.DBPath = flagDB
	}
	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("open store at %s: %w", cfg.Store.DBPath, err)
	}
	sink := telemetry.NewMultiSink(
		telemetry.NewStdlogSink("[ENGINE]"),
		store.NewTelemetrySink(db),
	)
	eng, err := control.NewEngine(db, sink, cfg, flagSeed)
	if err != nil {
		db.Close()
		return nil, nil, config.Config{}, err
	}
	return eng, db, cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
