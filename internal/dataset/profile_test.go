package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

func TestNewProfile(t *testing.T) {
	table := &model.Table{
		Columns: []string{"cyclomatic_complexity", model.LabelColumn},
		Rows: [][]float64{
			{2, 1},
			{4, 1},
			{6, 1},
			{20, 0},
			{30, 0},
		},
	}

	p, err := NewProfile(table)
	require.NoError(t, err)

	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.Optimal)
	assert.Equal(t, 2, p.Suboptimal)
	assert.InDelta(t, 0.6, p.OptimalShare(), 1e-9)
	require.True(t, p.Ratio.Valid)
	assert.InDelta(t, 1.5, p.Ratio.Value, 1e-9)

	require.Len(t, p.Metrics, 1)
	m := p.Metrics[0]
	assert.Equal(t, "cyclomatic_complexity", m.Name)
	assert.InDelta(t, 4, m.Optimal.Mean.Value, 1e-9)
	assert.InDelta(t, 4, m.Optimal.Median.Value, 1e-9)
	assert.InDelta(t, 2, m.Optimal.StdDev.Value, 1e-9)
	assert.InDelta(t, 25, m.Suboptimal.Mean.Value, 1e-9)
	assert.InDelta(t, 25, m.Suboptimal.Median.Value, 1e-9)
	require.True(t, m.Correlation.Valid)
	assert.Less(t, m.Correlation.Value, 0.0)
}

func TestNewProfile_SingleClass(t *testing.T) {
	table := &model.Table{
		Columns: []string{"lack_of_cohesion", model.LabelColumn},
		Rows:    [][]float64{{0.2, 1}},
	}

	p, err := NewProfile(table)
	require.NoError(t, err)

	assert.False(t, p.Ratio.Valid)
	m := p.Metrics[0]
	assert.True(t, m.Optimal.Mean.Valid)
	assert.False(t, m.Optimal.StdDev.Valid)
	assert.False(t, m.Suboptimal.Mean.Valid)
	assert.False(t, m.Correlation.Valid)
	assert.Equal(t, model.NoData, m.Suboptimal.Median.String())

	data, err := json.Marshal(m.Suboptimal)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":null,"median":null,"std":null}`, string(data))
}

func TestNewProfile_MissingLabel(t *testing.T) {
	_, err := NewProfile(&model.Table{Columns: []string{"a"}, Rows: [][]float64{{1}}})
	assert.ErrorIs(t, err, common.ErrMissingLabelColumn)
}
