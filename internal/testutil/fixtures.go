package testutil

import (
	"path/filepath"
	"testing"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/training"
)

// LabeledTable returns a balanced synthetic table of rows labeled examples.
func LabeledTable(seed int64, rows int) *model.Table {
	return model.NewExampleTable(dataset.NewGenerator(seed).Balanced(rows))
}

// FeatureRows returns only the schema feature values of a balanced synthetic table.
func FeatureRows(t *testing.T, seed int64, rows int) [][]float64 {
	t.Helper()
	features, err := LabeledTable(seed, rows).Select(model.FeatureNames())
	if err != nil {
		t.Fatalf("failed to select features: %v", err)
	}
	return features.Rows
}

// TrainModel fits a classifier of the given kind on a balanced synthetic table.
func TrainModel(t *testing.T, kind classifier.Kind, seed int64, rows int) *training.Result {
	t.Helper()
	result, err := training.NewTrainer(nil).Train(LabeledTable(seed, rows), training.Options{
		Kind:         kind,
		TestFraction: 0.2,
		Seed:         seed,
		Trees:        10,
	})
	if err != nil {
		t.Fatalf("failed to train %s model: %v", kind, err)
	}
	return result
}

// WriteTable writes table as CSV into dir and returns its path.
func WriteTable(t *testing.T, dir, name string, table *model.Table) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := dataset.WriteFile(path, table); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
