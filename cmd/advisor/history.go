package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/codeadvisor/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent training and prediction runs",
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 10, "Number of runs of each kind to show")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	trainingRuns, err := store.RecentTrainingRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	analysisRuns, err := store.RecentAnalysisRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Training runs"))
	if len(trainingRuns) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("none"))
	}
	for _, r := range trainingRuns {
		fmt.Fprintf(out, "%s  %-10s %-24s rows=%-6d train=%s test=%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.ModelKind, r.ModelName, r.Rows,
			cli.StyleScore(r.TrainAccuracy, fmt.Sprintf("%.1f%%", r.TrainAccuracy*100)),
			cli.StyleScore(r.TestAccuracy, fmt.Sprintf("%.1f%%", r.TestAccuracy*100)))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.FormatTitle("Prediction runs"))
	if len(analysisRuns) == 0 {
		fmt.Fprintln(out, cli.SubtleStyle.Render("none"))
	}
	for _, r := range analysisRuns {
		fmt.Fprintf(out, "%s  %-24s rows=%-6d optimal=%-5d suboptimal=%-5d confidence=%.2f suggestions=%d\n",
			r.CreatedAt.Local().Format(time.DateTime), filepath.Base(r.ModelPath), r.Rows,
			r.Optimal, r.Suboptimal, r.MeanConfidence, r.Suggestions)
	}
	return nil
}
