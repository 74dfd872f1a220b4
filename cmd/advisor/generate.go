package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/codeadvisor/internal/cli"
	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/model"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic code-metric data",
	}
	cmd.AddCommand(generateBalancedCmd())
	cmd.AddCommand(generateProductionCmd())
	return cmd
}

func generateBalancedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balanced",
		Short: "Generate labeled training data with equal optimal and suboptimal rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, seed, output := generateFlags(cmd)
			if rows < 2 {
				return fmt.Errorf("--rows must be at least 2, got %d", rows)
			}
			table := model.NewExampleTable(dataset.NewGenerator(seed).Balanced(rows))
			return writeGenerated(cmd, output, table)
		},
	}
	addGenerateFlags(cmd, 1000, "training_data.csv")
	return cmd
}

func generateProductionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "production",
		Short: "Generate unlabeled rows resembling real code units, with a class_type column",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, seed, output := generateFlags(cmd)
			if rows < 1 {
				return fmt.Errorf("--rows must be positive, got %d", rows)
			}
			return writeGenerated(cmd, output, dataset.NewGenerator(seed).Production(rows))
		},
	}
	addGenerateFlags(cmd, 100, "production_data.csv")
	return cmd
}

func addGenerateFlags(cmd *cobra.Command, rows int, output string) {
	cmd.Flags().IntP("rows", "n", rows, "Number of rows")
	cmd.Flags().Int64("seed", config.DefaultSeed, "Random seed")
	cmd.Flags().StringP("output", "o", output, "Output CSV")
}

func generateFlags(cmd *cobra.Command) (rows int, seed int64, output string) {
	rows, _ = cmd.Flags().GetInt("rows")
	seed, _ = cmd.Flags().GetInt64("seed")
	output, _ = cmd.Flags().GetString("output")
	return rows, seed, config.ExpandPath(output)
}

func writeGenerated(cmd *cobra.Command, output string, table *model.Table) error {
	if err := dataset.WriteFile(output, table); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d rows to %s", table.Len(), output)))
	return nil
}
