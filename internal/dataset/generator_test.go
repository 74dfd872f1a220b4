package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/codeadvisor/internal/model"
)

func TestGenerator_BalancedCounts(t *testing.T) {
	examples := NewGenerator(42).Balanced(101)
	require.Len(t, examples, 100)

	var optimal int
	for _, ex := range examples {
		if ex.IsOptimal == model.Optimal {
			optimal++
		}
	}
	assert.Equal(t, 50, optimal)
}

func TestGenerator_RowsStayInDomain(t *testing.T) {
	g := NewGenerator(7)
	for _, ex := range g.Balanced(2000) {
		row := ex.FeatureRow
		assert.GreaterOrEqual(t, row.LinesOfCode, 0)
		assert.GreaterOrEqual(t, row.EffectiveLines, 0)
		assert.LessOrEqual(t, row.EffectiveLines, row.LinesOfCode)
		assert.GreaterOrEqual(t, row.NumberOfMethods, 0)
		assert.GreaterOrEqual(t, row.CyclomaticComplexity, 0)
		assert.GreaterOrEqual(t, row.InheritanceDepth, 0)
		assert.GreaterOrEqual(t, row.NumberOfBranches, 0)
		assert.GreaterOrEqual(t, row.CouplingBetweenObjects, 0)
		assert.GreaterOrEqual(t, row.ExternalDependencies, 0)
		assert.GreaterOrEqual(t, row.LackOfCohesion, 0.0)
		assert.LessOrEqual(t, row.LackOfCohesion, 1.0)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42).Balanced(50)
	b := NewGenerator(42).Balanced(50)
	c := NewGenerator(43).Balanced(50)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerator_ProfilesSeparate(t *testing.T) {
	g := NewGenerator(1)
	mean := func(examples []model.LabeledExample) float64 {
		var sum float64
		for _, ex := range examples {
			sum += float64(ex.CyclomaticComplexity)
		}
		return sum / float64(len(examples))
	}

	assert.Less(t, mean(g.Optimal(500)), mean(g.Suboptimal(500)))
}

func TestGenerator_Production(t *testing.T) {
	table := NewGenerator(3).Production(200)

	require.NoError(t, table.CheckRectangular())
	assert.Equal(t, model.FeatureNames(), table.Columns)
	assert.False(t, table.HasColumn(model.LabelColumn))
	require.Len(t, table.Text[ClassTypeColumn], 200)

	kinds := map[string]bool{}
	for _, k := range table.Text[ClassTypeColumn] {
		kinds[k] = true
	}
	assert.Greater(t, len(kinds), 1)

	rows, err := table.FeatureRows()
	require.NoError(t, err)
	for _, row := range rows {
		assert.LessOrEqual(t, row.EffectiveLines, row.LinesOfCode)
		assert.GreaterOrEqual(t, row.LackOfCohesion, 0.0)
		assert.LessOrEqual(t, row.LackOfCohesion, 1.0)
	}
}
