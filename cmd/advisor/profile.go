package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/codeadvisor/internal/analysis"
	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/dataset"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Describe the class balance and metric distribution of labeled data",
		RunE:  runProfile,
	}
	cmd.Flags().StringP("data", "d", "", "Labeled code metrics (CSV)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runProfile(cmd *cobra.Command, _ []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	asJSON, _ := cmd.Flags().GetBool("json")

	table, err := dataset.ReadFile(config.ExpandPath(dataPath))
	if err != nil {
		return err
	}
	profile, err := dataset.NewProfile(table)
	if err != nil {
		return fmt.Errorf("profiling %s failed: %w", dataPath, err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	fmt.Fprintln(out, analysis.NewCLIFormatter().FormatProfile(profile))
	return nil
}
