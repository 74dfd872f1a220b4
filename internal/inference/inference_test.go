package inference

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/dataset"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/modelstore"
	"github.com/Veraticus/codeadvisor/internal/suggest"
	"github.com/Veraticus/codeadvisor/internal/testutil"
	"github.com/Veraticus/codeadvisor/internal/training"
)

func trainedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(modelstore.NewStore(t.TempDir()), nil)
	_, err := s.Train(testutil.LabeledTable(42, 100), training.Options{
		Kind:         classifier.KindEnsemble,
		TestFraction: 0.2,
		Seed:         42,
	})
	require.NoError(t, err)
	return s
}

func TestInfer(t *testing.T) {
	s := trainedSession(t)
	clf, err := s.Classifier()
	require.NoError(t, err)

	table := testutil.LabeledTable(7, 40)
	labels, err := table.Labels()
	require.NoError(t, err)

	result, err := Infer(clf, table, labels)
	require.NoError(t, err)
	require.Len(t, result.Predictions, 40)
	require.Len(t, result.Probabilities, 40)
	for i, p := range result.Probabilities {
		assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)
		assert.GreaterOrEqual(t, result.Confidence(i), 0.5)
	}

	require.NotNil(t, result.Evaluation)
	assert.Greater(t, result.Evaluation.Accuracy, 0.85)
	assert.Equal(t, 40, result.Evaluation.ConfusionMatrix.Total())

	unlabeled, err := Infer(clf, table.Drop(model.LabelColumn), nil)
	require.NoError(t, err)
	assert.Nil(t, unlabeled.Evaluation)
	assert.Equal(t, result.Predictions, unlabeled.Predictions)
}

func TestInfer_IgnoresExtraColumns(t *testing.T) {
	s := trainedSession(t)
	clf, err := s.Classifier()
	require.NoError(t, err)

	table := dataset.NewGenerator(3).Production(30)
	base, err := Infer(clf, table, nil)
	require.NoError(t, err)

	extended := table.Drop("")
	extended.Columns = append([]string{"file_id"}, extended.Columns...)
	for i := range extended.Rows {
		extended.Rows[i] = append([]float64{float64(i)}, extended.Rows[i]...)
	}
	got, err := Infer(clf, extended, nil)
	require.NoError(t, err)
	assert.Equal(t, base.Predictions, got.Predictions)
}

func TestInfer_Errors(t *testing.T) {
	s := trainedSession(t)
	clf, err := s.Classifier()
	require.NoError(t, err)

	tests := []struct {
		name    string
		table   *model.Table
		labels  []int
		wantErr error
	}{
		{"nil table", nil, nil, common.ErrNotADataTable},
		{"ragged", &model.Table{Columns: []string{"a", "b"}, Rows: [][]float64{{1}}}, nil, common.ErrNotADataTable},
		{"label only", &model.Table{Columns: []string{model.LabelColumn}, Rows: [][]float64{{1}}}, nil, common.ErrEmptyFeatureSet},
		{"no columns", &model.Table{}, nil, common.ErrEmptyFeatureSet},
		{"missing feature", &model.Table{Columns: []string{"lines_of_code"}, Rows: [][]float64{{10}}}, nil, common.ErrSchema},
		{"label count", model.NewFeatureTable(make([]model.FeatureRow, 2)), []int{1}, common.ErrLengthMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer(clf, tt.table, tt.labels)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSession_NothingLoaded(t *testing.T) {
	s := NewSession(nil, nil)
	table := model.NewFeatureTable(make([]model.FeatureRow, 1))

	_, err := s.Metrics()
	assert.ErrorIs(t, err, common.ErrNoMetricsAvailable)
	_, err = s.Classifier()
	assert.ErrorIs(t, err, common.ErrNoModelLoaded)
	_, err = s.Predict(table, nil)
	assert.ErrorIs(t, err, common.ErrNoModelLoaded)
	_, _, err = s.Analyze(table)
	assert.ErrorIs(t, err, common.ErrNoModelLoaded)
	_, err = s.Suggest(table, nil)
	assert.ErrorIs(t, err, common.ErrNoModelLoaded)
	_, err = s.Save("x")
	assert.ErrorIs(t, err, common.ErrNoModelLoaded)
}

func TestSession_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := modelstore.NewStore(dir, modelstore.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	trainer := NewSession(store, nil)
	_, err := trainer.Train(testutil.LabeledTable(1, 60), training.Options{
		Kind: classifier.KindTree,
		Seed: 1,
	})
	require.NoError(t, err)

	path, err := trainer.Save("session")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session_20260102_030405.model"), path)
	assert.Equal(t, path, trainer.Source())

	want, err := trainer.Metrics()
	require.NoError(t, err)

	loader := NewSession(store, nil)
	meta, err := loader.Load(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, "session", meta.ModelName)

	got, err := loader.Metrics()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = loader.Load(filepath.Join(dir, "missing.model"))
	assert.ErrorIs(t, err, common.ErrModelNotFound)
	_, err = loader.Classifier()
	assert.NoError(t, err, "a failed load keeps the previous model")
}

func TestSession_EndToEnd(t *testing.T) {
	s := trainedSession(t)

	metrics, err := s.Metrics()
	require.NoError(t, err)
	assert.Greater(t, metrics.TestAccuracy, 0.85)

	suboptimal := model.NewExampleTable(dataset.NewGenerator(1234).Suboptimal(50))
	result, report, err := s.Analyze(suboptimal)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.PredictionCounts.Suboptimal, 40)
	require.NotNil(t, result.Evaluation)

	suggestions, err := s.Suggest(suboptimal, result)
	require.NoError(t, err)

	flagged := map[int]suggest.Suggestion{}
	for _, sg := range suggestions {
		flagged[sg.RowIndex] = sg
	}
	cc, err := suboptimal.Column(model.FeatureCyclomaticComplexity)
	require.NoError(t, err)
	for i, p := range result.Predictions {
		if p != model.Suboptimal || cc[i] <= 15 {
			continue
		}
		sg, ok := flagged[i]
		require.True(t, ok, "row %d predicted suboptimal with complexity %v has no suggestion", i, cc[i])
		assert.Contains(t, sg.Issues, suggest.IssueComplexity)
	}
	for _, sg := range suggestions {
		assert.Equal(t, model.Suboptimal, result.Predictions[sg.RowIndex])
	}
}
