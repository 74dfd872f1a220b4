// Package training fits classifiers on labeled code-metric tables and evaluates them
// on a held-out partition.
package training

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// DefaultTestFraction is the share of rows held out for evaluation.
const DefaultTestFraction = 0.2

// Options configures a training run.
type Options struct {
	OnTreeFitted func()
	Kind         classifier.Kind
	TestFraction float64
	Seed         int64
	Trees        int
	MaxDepth     int
	Workers      int
}

// Split holds the row indices of each partition.
type Split struct {
	Train []int
	Test  []int
}

// Result is the outcome of a training run.
type Result struct {
	Classifier classifier.Classifier
	Split      Split
	Metrics    model.EvaluationMetrics
}

// Trainer owns the split/fit/evaluate protocol.
type Trainer struct {
	logger *slog.Logger
}

// NewTrainer creates a trainer logging through logger, or the default logger when nil.
func NewTrainer(logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{logger: logger}
}

// Train validates table, partitions it with a seeded shuffle, fits the requested
// classifier on the training rows and evaluates it on both partitions.
func (t *Trainer) Train(table *model.Table, opts Options) (*Result, error) {
	if _, err := classifier.ParseKind(string(opts.Kind)); err != nil {
		return nil, err
	}
	if opts.TestFraction == 0 {
		opts.TestFraction = DefaultTestFraction
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 || math.IsNaN(opts.TestFraction) {
		return nil, fmt.Errorf("%w: test_fraction must be in (0,1), got %v", common.ErrInvalidTestFraction, opts.TestFraction)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: table is nil", common.ErrNotADataTable)
	}
	if !table.HasColumn(model.LabelColumn) {
		return nil, fmt.Errorf("%w: column %q not found in training data (columns: %v)",
			common.ErrMissingLabelColumn, model.LabelColumn, table.Columns)
	}
	if _, err := model.Validate(table); err != nil {
		return nil, err
	}

	labels, err := table.Labels()
	if err != nil {
		return nil, err
	}
	features, err := table.Select(model.FeatureNames())
	if err != nil {
		return nil, err
	}

	split, err := TrainTestSplit(table.Len(), opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, err
	}

	kind, _ := classifier.ParseKind(string(opts.Kind))
	clf, err := classifier.New(kind, classifier.Options{
		Seed:         opts.Seed,
		Trees:        opts.Trees,
		MaxDepth:     opts.MaxDepth,
		Workers:      opts.Workers,
		OnTreeFitted: opts.OnTreeFitted,
	})
	if err != nil {
		return nil, err
	}

	xTrain, yTrain := gather(features.Rows, labels, split.Train)
	xTest, yTest := gather(features.Rows, labels, split.Test)

	t.logger.Info("Training classifier",
		"model_kind", kind,
		"rows", table.Len(),
		"train_rows", len(split.Train),
		"test_rows", len(split.Test),
		"seed", opts.Seed)

	start := time.Now()
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit %s classifier: %w", kind, err)
	}

	metrics, err := Evaluate(clf, xTrain, yTrain, xTest, yTest)
	if err != nil {
		return nil, err
	}

	t.logger.Info("Training complete",
		"model_kind", kind,
		"train_accuracy", metrics.TrainAccuracy,
		"test_accuracy", metrics.TestAccuracy,
		"duration", time.Since(start))

	return &Result{
		Classifier: clf,
		Split:      split,
		Metrics:    metrics,
	}, nil
}

// Evaluate scores a fitted classifier on its training and test partitions.
func Evaluate(clf classifier.Classifier, xTrain [][]float64, yTrain []int, xTest [][]float64, yTest []int) (model.EvaluationMetrics, error) {
	metrics := model.EvaluationMetrics{
		ModelKind:    string(clf.Kind()),
		Params:       clf.Params(),
		TrainSamples: len(yTrain),
		TestSamples:  len(yTest),
	}

	var err error
	if metrics.TrainAccuracy, err = clf.Score(xTrain, yTrain); err != nil {
		return metrics, fmt.Errorf("failed to score training partition: %w", err)
	}
	if metrics.TestAccuracy, err = clf.Score(xTest, yTest); err != nil {
		return metrics, fmt.Errorf("failed to score test partition: %w", err)
	}

	predicted, err := clf.Predict(xTest)
	if err != nil {
		return metrics, fmt.Errorf("failed to predict test partition: %w", err)
	}
	if metrics.ConfusionMatrix, err = model.NewConfusionMatrix(yTest, predicted); err != nil {
		return metrics, err
	}
	metrics.ClassificationReport = metrics.ConfusionMatrix.Report()

	if weights, ok := classifier.FeatureImportances(clf); ok {
		metrics.FeatureImportance = ImportanceMap(model.FeatureNames(), weights)
	}
	return metrics, nil
}

// ImportanceMap keys weights by feature name. Negative weights are clamped to zero.
func ImportanceMap(names []string, weights []float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	for i, name := range names {
		if i >= len(weights) {
			break
		}
		out[name] = math.Max(weights[i], 0)
	}
	return out
}

func gather(rows [][]float64, labels []int, indices []int) ([][]float64, []int) {
	x := make([][]float64, len(indices))
	y := make([]int, len(indices))
	for i, idx := range indices {
		x[i] = rows[idx]
		y[i] = labels[idx]
	}
	return x, y
}
