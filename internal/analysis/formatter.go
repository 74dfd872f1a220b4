package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/codeadvisor/internal/cli"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/suggest"
)

// maxLowConfidenceRows limits the low-confidence rows listed in terminal output.
const maxLowConfidenceRows = 10

// CLIFormatter renders reports for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{
		styles: NewStyles(),
	}
}

// FormatTraining renders the evaluation of a training run.
func (f *CLIFormatter) FormatTraining(m model.EvaluationMetrics) string {
	var sections []string

	sections = append(sections, f.styles.Title.Render(fmt.Sprintf("%s Training Results (%s)", cli.TreeIcon, m.ModelKind)))

	accuracy := []string{
		fmt.Sprintf("Train accuracy: %s", f.percent(m.TrainAccuracy)),
		fmt.Sprintf("Test accuracy:  %s", f.percent(m.TestAccuracy)),
		f.styles.Subtle.Render(fmt.Sprintf("%d training rows, %d test rows", m.TrainSamples, m.TestSamples)),
	}
	sections = append(sections, f.styles.RenderBox(strings.Join(accuracy, "\n"), "Accuracy", f.styles.MetricsBox))

	sections = append(sections, f.formatReport(m.ClassificationReport))
	sections = append(sections, f.formatConfusionMatrix(m.ConfusionMatrix))

	if len(m.FeatureImportance) > 0 {
		sections = append(sections, f.formatImportance(m.FeatureImportance))
	}

	return strings.Join(sections, "\n\n")
}

// FormatPredictions renders prediction counts, confidence statistics and, when
// labels were supplied, the evaluation of the batch.
func (f *CLIFormatter) FormatPredictions(result *model.PredictionResult, report *Report) string {
	if result == nil || report == nil {
		return f.styles.Error.Render("No predictions available")
	}

	var sections []string
	sections = append(sections, f.styles.Title.Render(cli.ChartIcon + " Prediction Summary"))

	counts := report.PredictionCounts
	share := 0.0
	if report.Total > 0 {
		share = float64(counts.Optimal) / float64(report.Total)
	}
	lines := []string{
		fmt.Sprintf("%s %d", f.styles.Success.Render("Optimal:   "), counts.Optimal),
		fmt.Sprintf("%s %d", f.styles.Error.Render("Suboptimal:"), counts.Suboptimal),
		f.styles.ForScore(share).Render(f.styles.RenderProgressBar(share, 30)),
	}
	sections = append(sections, strings.Join(lines, "\n"))

	cs := report.ConfidenceStats
	confidence := fmt.Sprintf("Confidence: mean %s  min %s  max %s  std %s",
		cs.Mean.Format(3), cs.Min.Format(3), cs.Max.Format(3), cs.StdDev.Format(3))
	sections = append(sections, f.styles.Subtitle.UnsetMargins().Render(confidence))

	if ev := result.Evaluation; ev != nil {
		sections = append(sections,
			fmt.Sprintf("Accuracy against supplied labels: %s", f.percent(ev.Accuracy)),
			f.formatReport(ev.ClassificationReport),
			f.formatConfusionMatrix(ev.ConfusionMatrix))
	}

	return strings.Join(sections, "\n\n")
}

// FormatAnalysis renders per-feature statistics by predicted class and the
// low-confidence rows.
func (f *CLIFormatter) FormatAnalysis(report *Report) string {
	if report == nil {
		return f.styles.Error.Render("No report available")
	}

	var sections []string
	sections = append(sections, f.styles.Title.Render("📈 Feature Statistics by Prediction"))

	nameWidth, colWidth := 26, 22
	header := fmt.Sprintf("%-*s %-*s %-*s", nameWidth, "Feature", colWidth, "Optimal (mean ± std)", colWidth, "Suboptimal (mean ± std)")
	rows := []string{f.styles.Header.Render(header), f.styles.Subtle.Render(strings.Repeat("─", lipgloss.Width(header)))}
	for _, fs := range report.FeatureStats {
		rows = append(rows, fmt.Sprintf("%-*s %-*s %-*s",
			nameWidth, fs.Name,
			colWidth, groupText(fs.Optimal),
			colWidth, groupText(fs.Suboptimal)))
	}
	sections = append(sections, strings.Join(rows, "\n"))

	if len(report.LowConfidence) == 0 {
		sections = append(sections, f.styles.Success.Render("✅ No low-confidence predictions"))
		return strings.Join(sections, "\n\n")
	}

	title := f.styles.Warning.Render(fmt.Sprintf("⚠️  %d low-confidence predictions (< %.0f%%)",
		len(report.LowConfidence), LowConfidenceThreshold*100))
	var lines []string
	for _, row := range report.LowConfidence[:min(len(report.LowConfidence), maxLowConfidenceRows)] {
		lines = append(lines, fmt.Sprintf("• row %d: %s (%.1f%%)",
			row.Index, cli.StyleLabel(row.Prediction), row.Confidence*100))
	}
	if extra := len(report.LowConfidence) - maxLowConfidenceRows; extra > 0 {
		lines = append(lines, f.styles.Subtle.Render(fmt.Sprintf("... and %d more", extra)))
	}
	sections = append(sections, title+"\n"+strings.Join(lines, "\n"))

	return strings.Join(sections, "\n\n")
}

// FormatSuggestions renders refactoring advice. names, when non-nil, labels each
// row (for example with its code-unit category).
func (f *CLIFormatter) FormatSuggestions(suggestions []suggest.Suggestion, names []string) string {
	if len(suggestions) == 0 {
		return f.styles.Success.Render("✅ No refactoring suggestions")
	}

	blocks := make([]string, 0, len(suggestions)+1)
	blocks = append(blocks, f.styles.Title.Render(fmt.Sprintf("%s Refactoring Suggestions (%d)", cli.WrenchIcon, len(suggestions))))
	for _, sg := range suggestions {
		title := fmt.Sprintf("Row %d", sg.RowIndex)
		if sg.RowIndex < len(names) && names[sg.RowIndex] != "" {
			title = fmt.Sprintf("Row %d (%s)", sg.RowIndex, names[sg.RowIndex])
		}

		var lines []string
		for i, issue := range sg.Issues {
			lines = append(lines, f.styles.Error.Render("• "+issue))
			lines = append(lines, f.styles.Subtle.Render("  "+sg.Suggestions[i]))
		}
		blocks = append(blocks, f.styles.RenderBox(strings.Join(lines, "\n"), title, f.styles.SuggestionBox))
	}
	return strings.Join(blocks, "\n")
}

// FormatProfile renders the class balance and per-class metric distribution of
// a labeled data set.
func (f *CLIFormatter) FormatProfile(p *dataset.Profile) string {
	if p == nil {
		return f.styles.Error.Render("No profile available")
	}

	var sections []string
	sections = append(sections, f.styles.Title.Render(cli.ChartIcon + " Data Profile"))

	share := p.OptimalShare()
	balance := []string{
		fmt.Sprintf("Samples:    %d", p.Total),
		fmt.Sprintf("Optimal:    %d (%.1f%%)", p.Optimal, share*100),
		fmt.Sprintf("Suboptimal: %d (%.1f%%)", p.Suboptimal, (1-share)*100),
		fmt.Sprintf("Ratio:      %s", p.Ratio.Format(2)),
	}
	sections = append(sections, strings.Join(balance, "\n"))

	nameWidth, colWidth := 26, 28
	header := fmt.Sprintf("%-*s %-*s %-*s %s", nameWidth, "Metric",
		colWidth, "Optimal (mean/median/std)", colWidth, "Suboptimal (mean/median/std)", "Correlation")
	rows := []string{f.styles.Header.Render(header), f.styles.Subtle.Render(strings.Repeat("─", lipgloss.Width(header)))}
	for _, m := range p.Metrics {
		rows = append(rows, fmt.Sprintf("%-*s %-*s %-*s %s",
			nameWidth, m.Name,
			colWidth, classText(m.Optimal),
			colWidth, classText(m.Suboptimal),
			m.Correlation.Format(3)))
	}
	sections = append(sections, strings.Join(rows, "\n"))

	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatReport(r model.ClassificationReport) string {
	header := fmt.Sprintf("%-14s %10s %10s %10s %10s", "", "precision", "recall", "f1-score", "support")
	rows := []string{f.styles.Header.Render(header)}
	line := func(m model.ClassMetrics) string {
		return fmt.Sprintf("%-14s %10.2f %10.2f %10.2f %10d", m.Label, m.Precision, m.Recall, m.F1Score, m.Support)
	}
	for _, m := range r.Classes {
		rows = append(rows, line(m))
	}
	rows = append(rows, "", fmt.Sprintf("%-14s %32.2f %10d", "accuracy", r.Accuracy, r.MacroAvg.Support))
	rows = append(rows, line(r.MacroAvg), line(r.WeightedAvg))
	return strings.Join(rows, "\n")
}

func (f *CLIFormatter) formatConfusionMatrix(cm model.ConfusionMatrix) string {
	title := f.styles.Subtitle.UnsetMargins().Render("Confusion matrix (rows = true, columns = predicted):")
	rows := []string{
		title,
		fmt.Sprintf("%14s %8s %8s", "", "0", "1"),
		fmt.Sprintf("%14s %8d %8d", "0 suboptimal", cm[0][0], cm[0][1]),
		fmt.Sprintf("%14s %8d %8d", "1 optimal", cm[1][0], cm[1][1]),
	}
	return strings.Join(rows, "\n")
}

func (f *CLIFormatter) formatImportance(importance map[string]float64) string {
	type weight struct {
		name  string
		value float64
	}
	weights := make([]weight, 0, len(importance))
	for name, v := range importance {
		weights = append(weights, weight{name, v})
	}
	slices.SortFunc(weights, func(a, b weight) int {
		switch {
		case a.value > b.value:
			return -1
		case a.value < b.value:
			return 1
		default:
			return strings.Compare(a.name, b.name)
		}
	})

	top := 0.0
	if len(weights) > 0 {
		top = weights[0].value
	}
	lines := []string{f.styles.Subtitle.UnsetMargins().Render("Feature importance:")}
	for _, w := range weights {
		scaled := 0.0
		if top > 0 {
			scaled = w.value / top
		}
		lines = append(lines, fmt.Sprintf("%-26s %6.3f %s", w.name, w.value,
			f.styles.Score.Render(f.styles.RenderProgressBar(scaled, 20))))
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) percent(v float64) string {
	return f.styles.ForScore(v).Render(fmt.Sprintf("%.1f%%", v*100))
}

func groupText(g GroupStats) string {
	if !g.Mean.Valid {
		return model.NoData
	}
	return fmt.Sprintf("%s ± %s", g.Mean.Format(2), g.StdDev.Format(2))
}

func classText(c dataset.ClassStats) string {
	if !c.Mean.Valid {
		return model.NoData
	}
	return fmt.Sprintf("%s / %s / %s", c.Mean.Format(2), c.Median.Format(2), c.StdDev.Format(2))
}
