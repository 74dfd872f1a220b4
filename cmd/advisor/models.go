package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/codeadvisor/internal/analysis"
	"github.com/Veraticus/codeadvisor/internal/cli"
	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/modelstore"
)

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect saved models",
	}
	cmd.AddCommand(modelsListCmd())
	cmd.AddCommand(modelsShowCmd())
	return cmd
}

func modelsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved models, newest first",
		RunE:  runModelsList,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func modelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <model>",
		Short: "Show the evaluation metrics stored with a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelsShow,
	}
}

// modelSummary is one listed model in JSON output.
type modelSummary struct {
	Filename     string  `json:"filename"`
	Path         string  `json:"path"`
	ModelName    string  `json:"model_name"`
	ModelKind    string  `json:"model_kind"`
	SavedAt      string  `json:"saved_at"`
	TestAccuracy float64 `json:"test_accuracy"`
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	store := modelstore.NewStore(settings.ModelsDir, modelstore.WithLogger(slog.Default()))
	entries, skipped, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		summaries := make([]modelSummary, 0, len(entries))
		for _, e := range entries {
			summaries = append(summaries, modelSummary{
				Filename:     e.Filename,
				Path:         e.Path,
				ModelName:    e.Metadata.ModelName,
				ModelKind:    e.Metadata.ModelKind,
				SavedAt:      e.Metadata.SavedAt,
				TestAccuracy: e.Metadata.TestAccuracy,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	fmt.Fprintln(out, cli.TitleStyle.Render(fmt.Sprintf("%s Models in %s", cli.FolderIcon, store.Dir())))
	if len(entries) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No models saved yet. Run 'advisor train' first."))
	} else {
		header := fmt.Sprintf("%-44s %-10s %-26s %s", "File", "Kind", "Saved", "Test accuracy")
		fmt.Fprintln(out, cli.TableHeaderStyle.Render(header))
		for _, e := range entries {
			acc := fmt.Sprintf("%.1f%%", e.Metadata.TestAccuracy*100)
			fmt.Fprintf(out, "%-44s %-10s %-26s %s\n",
				e.Filename, e.Metadata.ModelKind, e.Metadata.SavedAt, cli.StyleScore(e.Metadata.TestAccuracy, acc))
		}
	}

	for _, s := range skipped {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Skipped %s: %v", s.Path, s.Err)))
	}
	return nil
}

func runModelsShow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store := modelstore.NewStore(settings.ModelsDir)
	clf, meta, err := store.Load(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}

	lines := []string{
		fmt.Sprintf("%-18s %s", "kind:", clf.Kind()),
		fmt.Sprintf("%-18s %s", "saved_at:", meta.SavedAt),
		fmt.Sprintf("%-18s %s", "timestamp:", meta.Timestamp),
	}
	params := clf.Params()
	for _, name := range slices.Sorted(maps.Keys(params)) {
		lines = append(lines, fmt.Sprintf("%-18s %g", name+":", params[name]))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderBox(cli.AdvisorIcon+" "+meta.ModelName, strings.Join(lines, "\n")))
	fmt.Fprintln(out)
	fmt.Fprintln(out, analysis.NewCLIFormatter().FormatTraining(meta.EvaluationMetrics))
	return nil
}
