package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/config"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/replay"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/store"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/telemetry"
)

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("verbose", false, "Print each event's decision, not just the summary")
}

var replayCmd = &cobra.Command{
	Use:   "replay FIXTURE",
	Short: "Replay a recorded event fixture deterministically",
	Long: `Run a JSON fixture through a fresh engine on a throwaway database,
check its expectations, and print a summary. Exit status 1 if any
expectation fails — usable as a regression gate.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	fixture, err := replay.LoadFixture(args[0])
	if err != nil {
		return err
	}

	// Replays always run against a scratch database so a fixture can
	// never contaminate live state.
	dir, err := os.MkdirTemp("", "engine-replay-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	db, err := store.Open(filepath.Join(dir, "replay.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	eng, err := control.NewEngine(db, telemetry.Noop{}, cfg, fixture.Seed)
	if err != nil {
		return err
	}

	results := replay.Run(context.Background(), eng, fixture)

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		enc := json.NewEncoder(os.Stdout)
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	}

	summary := replay.Summarize(results)
	fmt.Printf("%s\n", fixture.Description)
	fmt.Printf("events=%d decisions=%d failures=%d rest_suggestions=%d\n",
		summary.TotalEvents, summary.Decisions, summary.Failures, summary.RestSuggests)
	for name, n := range summary.RuleCounts {
		fmt.Printf("  rule %-16s fired %d time(s)\n", name, n)
	}

	mismatches := replay.Check(fixture, results)
	if len(mismatches) == 0 {
		fmt.Println("all expectations held")
		return nil
	}
	for _, m := range mismatches {
		fmt.Fprintf(os.Stderr, "event %d: %s: want %s, got %s\n", m.EventIndex, m.Field, m.Want, m.Got)
	}
	return fmt.Errorf("%d expectation(s) failed", len(mismatches))
}
