package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

func sampleTable() *model.Table {
	return &model.Table{
		Columns: []string{"cyclomatic_complexity", "lack_of_cohesion", model.LabelColumn},
		Rows: [][]float64{
			{4, 0.2, 1},
			{6, 0.3, 1},
			{20, 0.6, 0},
			{30, 0.8, 0},
		},
	}
}

func TestAnalyze(t *testing.T) {
	report, err := Analyze(sampleTable(), []int{1, 1, 0, 0}, [][2]float64{
		{0.1, 0.9},
		{0.35, 0.65},
		{0.8, 0.2},
		{0.5, 0.5},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, PredictionCounts{Optimal: 2, Suboptimal: 2}, report.PredictionCounts)
	assert.InDeltaSlice(t, []float64{0.9, 0.65, 0.8, 0.5}, report.Confidences, 1e-12)

	cs := report.ConfidenceStats
	assert.InDelta(t, 0.7125, cs.Mean.Value, 1e-9)
	assert.InDelta(t, 0.5, cs.Min.Value, 1e-9)
	assert.InDelta(t, 0.9, cs.Max.Value, 1e-9)
	assert.InDelta(t, 0.17500, cs.StdDev.Value, 1e-5)

	require.Len(t, report.LowConfidence, 2)
	assert.Equal(t, 1, report.LowConfidence[0].Index)
	assert.Equal(t, 1, report.LowConfidence[0].Prediction)
	assert.InDelta(t, 0.65, report.LowConfidence[0].Confidence, 1e-12)
	assert.Equal(t, map[string]float64{"cyclomatic_complexity": 6, "lack_of_cohesion": 0.3}, report.LowConfidence[0].Features)
	assert.Equal(t, 3, report.LowConfidence[1].Index)

	require.Len(t, report.FeatureStats, 2, "label column is not a feature")
	cc, ok := report.Feature("cyclomatic_complexity")
	require.True(t, ok)
	assert.InDelta(t, 5, cc.Optimal.Mean.Value, 1e-9)
	assert.InDelta(t, 25, cc.Suboptimal.Mean.Value, 1e-9)
	assert.InDelta(t, 1.41421, cc.Optimal.StdDev.Value, 1e-5)
}

func TestAnalyze_ConfidenceBound(t *testing.T) {
	probs := [][2]float64{{0.5, 0.5}, {0, 1}, {1, 0}, {0.49, 0.51}, {0.73, 0.27}}
	report, err := Analyze(&model.Table{Columns: []string{"x"}, Rows: make([][]float64, 5)}, []int{0, 1, 0, 1, 0}, probs)
	require.Error(t, err, "rows must be rectangular")
	assert.Nil(t, report)

	rows := [][]float64{{1}, {2}, {3}, {4}, {5}}
	report, err = Analyze(&model.Table{Columns: []string{"x"}, Rows: rows}, []int{0, 1, 0, 1, 0}, probs)
	require.NoError(t, err)
	for _, c := range report.Confidences {
		assert.GreaterOrEqual(t, c, 0.5)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestAnalyze_EmptyGroupIsNoData(t *testing.T) {
	table := &model.Table{Columns: []string{"x"}, Rows: [][]float64{{1}, {2}}}
	report, err := Analyze(table, []int{1, 1}, [][2]float64{{0.2, 0.8}, {0.1, 0.9}})
	require.NoError(t, err)

	x, ok := report.Feature("x")
	require.True(t, ok)
	assert.True(t, x.Optimal.Mean.Valid)
	assert.False(t, x.Suboptimal.Mean.Valid)
	assert.False(t, x.Suboptimal.StdDev.Valid)
	assert.Equal(t, model.NoData, x.Suboptimal.Mean.String())

	data, err := json.Marshal(x.Suboptimal)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":null,"std":null}`, string(data))
}

func TestAnalyze_SingleRowStdIsNoData(t *testing.T) {
	report, err := Analyze(&model.Table{Columns: []string{"x"}, Rows: [][]float64{{3}}}, []int{0}, [][2]float64{{0.9, 0.1}})
	require.NoError(t, err)
	assert.True(t, report.ConfidenceStats.Mean.Valid)
	assert.False(t, report.ConfidenceStats.StdDev.Valid)
}

func TestAnalyze_EmptyBatch(t *testing.T) {
	report, err := Analyze(&model.Table{Columns: []string{"x"}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.False(t, report.ConfidenceStats.Mean.Valid)
	assert.Zero(t, report.MeanConfidence())
}

func TestAnalyze_LengthMismatch(t *testing.T) {
	_, err := Analyze(sampleTable(), []int{1}, [][2]float64{{0, 1}})
	assert.ErrorIs(t, err, common.ErrLengthMismatch)
}
