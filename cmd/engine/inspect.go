package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringSlice("words", nil, "Word ids to evaluate mastery for")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect USER_ID",
	Short: "Inspect a user's persisted engine state",
	Long: `Print a user's current state components and, with --words, the
word-mastery verdicts for the given word ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	eng, db, _, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	userID := args[0]
	view, err := eng.GetUserState(context.Background(), userID)
	if err != nil {
		return err
	}
	s := view.State
	fmt.Printf("user %s\n", userID)
	fmt.Printf("  attention   %.3f\n", s.Attention)
	fmt.Printf("  fatigue     %.3f\n", s.Fatigue)
	fmt.Printf("  motivation  %+.3f\n", s.Motivation)
	fmt.Printf("  cognitive   mem=%.3f speed=%.3f stability=%.3f\n", s.Mem, s.Speed, s.Stability)
	fmt.Printf("  confidence  %.3f\n", s.Confidence)
	if s.TS > 0 {
		fmt.Printf("  last event  %s\n", time.UnixMilli(s.TS).UTC().Format(time.RFC3339))
	} else {
		fmt.Printf("  last event  never\n")
	}

	words, _ := cmd.Flags().GetStringSlice("words")
	if len(words) == 0 {
		return nil
	}
	verdicts, err := eng.EvaluateMany(userID, words)
	if err != nil {
		return err
	}
	fmt.Println("mastery:")
	for _, v := range verdicts {
		fmt.Printf("  %-16s learned=%-5v confidence=%.2f srs=%.2f actr=%.2f recent=%.2f  %s\n",
			v.WordID, v.IsLearned, v.Confidence, v.Factors.SRS, v.Factors.ActR, v.Factors.Recent, v.Suggestion)
	}
	return nil
}
