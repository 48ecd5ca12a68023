package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartcoolman/adaptive-vocab-engine/internal/control"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/replay"
)

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("file", "f", "", "JSONL file of events (default: stdin)")
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a stream of learning events",
	Long: `Read events as JSON lines (one fixture-format event per line), run
each through the full decision pipeline, and print the resulting
strategy as JSON. A trailing outcome window is accumulated per user
from the stream itself.`,
	RunE: runProcess,
}

// processOutput is one line of the command's JSON output.
type processOutput struct {
	DecisionID  string   `json:"decision_id"`
	ActionIndex int      `json:"action_index"`
	Strategy    any      `json:"strategy"`
	FiredRules  []string `json:"fired_rules"`
	Error       string   `json:"error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	eng, db, _, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	var in io.Reader = os.Stdin
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open events file: %w", err)
		}
		defer f.Close()
		in = f
	}

	histories := make(map[string][]perception.Outcome)
	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var fe replay.FixtureEvent
		if err := json.Unmarshal(raw, &fe); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		histories[fe.UserID] = append(histories[fe.UserID], perception.Outcome{
			TSMs: fe.TSMs, Correct: fe.Correct, ResponseTimeMs: fe.ResponseTimeMs,
		})
		window := histories[fe.UserID]
		if len(window) > 20 {
			window = window[len(window)-20:]
		}

		res, err := eng.ProcessEvent(context.Background(), control.ProcessEventInput{
			Event:   fe.ToRawEvent(),
			Word:    fe.ToWordMetadata(),
			History: window,
		})
		out := processOutput{}
		if err != nil {
			out.Error = err.Error()
		} else {
			out.DecisionID = res.DecisionID
			out.ActionIndex = res.Explanation.ActionIndex
			out.Strategy = res.Strategy
			for _, r := range res.Explanation.FiredRules {
				out.FiredRules = append(out.FiredRules, r.Name)
			}
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return scanner.Err()
}
