package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/codeadvisor/internal/analysis"
	"github.com/Veraticus/codeadvisor/internal/cli"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/inference"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/modelstore"
	"github.com/Veraticus/codeadvisor/internal/suggest"
)

// Columns appended to the input rows by --output.
const (
	PredictedLabelColumn = "predicted_label"
	ConfidenceColumn     = "confidence"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify code units and suggest refactorings",
		Long: `Classify every row of a CSV of code metrics with a saved model, summarize
the predictions and list refactoring suggestions for the rows predicted
suboptimal.

Columns outside the metric schema (for example class_type) are ignored for
scoring and kept for reporting. When an is_optimal column is present the
predictions are also evaluated against it.`,
		RunE: runPredict,
	}

	cmd.Flags().StringP("data", "d", "", "Code metrics to classify (CSV)")
	cmd.Flags().StringP("model", "m", "", "Saved model file, or a file name in the models directory")
	cmd.Flags().StringP("format", "f", "terminal", "Output format (terminal, json)")
	cmd.Flags().StringP("output", "o", "", "Also write the rows with predicted_label and confidence to this CSV")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

// predictionRow is one scored row in JSON output.
type predictionRow struct {
	Text           map[string]string `json:"text,omitempty"`
	Row            int               `json:"row"`
	PredictedLabel int               `json:"predicted_label"`
	Confidence     float64           `json:"confidence"`
}

// predictOutput is the JSON document written by --format json.
type predictOutput struct {
	Evaluation  *model.Evaluation    `json:"evaluation,omitempty"`
	Analysis    *analysis.Report     `json:"analysis"`
	Model       string               `json:"model"`
	Predictions []predictionRow      `json:"predictions"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

func runPredict(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	dataPath, _ := cmd.Flags().GetString("data")
	modelPath, _ := cmd.Flags().GetString("model")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "terminal" && format != "json" {
		return common.NewUserError(fmt.Sprintf("unknown format %q (valid: terminal, json)", format), nil)
	}

	table, err := dataset.ReadFile(config.ExpandPath(dataPath))
	if err != nil {
		return err
	}

	session := inference.NewSession(modelstore.NewStore(settings.ModelsDir), slog.Default())
	if _, err := session.Load(config.ExpandPath(modelPath)); err != nil {
		return err
	}

	result, report, err := session.Analyze(table)
	if err != nil {
		return fmt.Errorf("prediction on %s failed: %w", dataPath, err)
	}
	suggestions, err := session.Suggest(table, result)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := dataset.WriteFile(config.ExpandPath(outputPath), withPredictions(table, result)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = writePredictJSON(out, session.Source(), table, result, report, suggestions)
	default:
		writePredictTerminal(out, table, result, report, suggestions)
		if outputPath != "" {
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Predictions written to %s", outputPath)))
		}
	}
	if err != nil {
		return err
	}

	recordAnalysisRun(cmd.Context(), settings, &model.AnalysisRun{
		ModelPath:      session.Source(),
		DataPath:       dataPath,
		Rows:           report.Total,
		Optimal:        report.PredictionCounts.Optimal,
		Suboptimal:     report.PredictionCounts.Suboptimal,
		MeanConfidence: report.MeanConfidence(),
		LowConfidence:  len(report.LowConfidence),
		Suggestions:    len(suggestions),
	})
	return nil
}

func writePredictTerminal(w io.Writer, table *model.Table, result *model.PredictionResult,
	report *analysis.Report, suggestions []suggest.Suggestion) {
	f := analysis.NewCLIFormatter()
	fmt.Fprintln(w, f.FormatPredictions(result, report))
	fmt.Fprintln(w)
	fmt.Fprintln(w, f.FormatAnalysis(report))
	fmt.Fprintln(w)
	fmt.Fprintln(w, f.FormatSuggestions(suggestions, table.Text[dataset.ClassTypeColumn]))
}

func writePredictJSON(w io.Writer, source string, table *model.Table, result *model.PredictionResult,
	report *analysis.Report, suggestions []suggest.Suggestion) error {
	doc := predictOutput{
		Model:       source,
		Evaluation:  result.Evaluation,
		Analysis:    report,
		Predictions: make([]predictionRow, len(result.Predictions)),
		Suggestions: suggestions,
	}
	if doc.Suggestions == nil {
		doc.Suggestions = []suggest.Suggestion{}
	}

	textCols := make([]string, 0, len(table.Text))
	for name := range table.Text {
		textCols = append(textCols, name)
	}
	slices.Sort(textCols)

	for i, label := range result.Predictions {
		row := predictionRow{Row: i, PredictedLabel: label, Confidence: result.Confidence(i)}
		if len(textCols) > 0 {
			row.Text = make(map[string]string, len(textCols))
			for _, name := range textCols {
				row.Text[name] = table.Text[name][i]
			}
		}
		doc.Predictions[i] = row
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode predictions: %w", err)
	}
	return nil
}

// withPredictions returns a copy of table with the predicted label and confidence
// appended to every row. Text columns are carried over.
func withPredictions(table *model.Table, result *model.PredictionResult) *model.Table {
	base := table.Drop(PredictedLabelColumn).Drop(ConfidenceColumn)
	out := &model.Table{
		Text:    table.Text,
		Columns: append(base.Columns, PredictedLabelColumn, ConfidenceColumn),
		Rows:    make([][]float64, len(base.Rows)),
	}
	for i, row := range base.Rows {
		out.Rows[i] = append(row, float64(result.Predictions[i]), result.Confidence(i))
	}
	return out
}
