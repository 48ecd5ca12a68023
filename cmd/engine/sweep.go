package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
)

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().Bool("once", false, "Run a single sweep pass and exit")
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the delayed-reward sweeper",
	Long: `Claim due reward-queue entries, compute each realised reward, and
apply the bandit updates. By default this loops on the configured
sweep interval until interrupted; --once runs a single pass.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	eng, db, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	sweeper := control.NewSweeper(eng)
	once, _ := cmd.Flags().GetBool("once")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		return sweeper.Sweep(ctx)
	}

	interval := time.Duration(cfg.Reward.SweepIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fmt.Fprintf(os.Stderr, "sweeping every %s (ctrl-c to stop)\n", interval)

	for {
		if err := sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "sweep pass: %v\n", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
