package model

import (
	"errors"
	"testing"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() FeatureRow {
	return FeatureRow{
		LinesOfCode:            200,
		EffectiveLines:         150,
		NumberOfMethods:        5,
		CyclomaticComplexity:   8,
		InheritanceDepth:       2,
		NumberOfBranches:       20,
		CouplingBetweenObjects: 5,
		ExternalDependencies:   4,
		LackOfCohesion:         0.25,
	}
}

func TestValidate_MissingColumns(t *testing.T) {
	names := FeatureNames()

	for i, missing := range names {
		t.Run(missing, func(t *testing.T) {
			cols := append(append([]string(nil), names[:i]...), names[i+1:]...)
			table := &Table{Columns: cols, Rows: [][]float64{make([]float64, len(cols))}}

			_, err := Validate(table)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrSchema)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, []string{missing}, schemaErr.Missing)
			assert.Contains(t, err.Error(), missing)
		})
	}

	t.Run("several missing", func(t *testing.T) {
		table := &Table{Columns: []string{FeatureLinesOfCode, FeatureLackOfCohesion, "class_type"}}

		_, err := Validate(table)
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, []string{
			FeatureEffectiveLines,
			FeatureNumberOfMethods,
			FeatureCyclomaticComplexity,
			FeatureInheritanceDepth,
			FeatureNumberOfBranches,
			FeatureCouplingBetweenObjects,
			FeatureExternalDependencies,
		}, schemaErr.Missing)
	})
}

func TestValidate_AcceptsExtraColumns(t *testing.T) {
	table := NewFeatureTable([]FeatureRow{sampleRow()})
	table.Columns = append(table.Columns, "extra")
	table.Rows[0] = append(table.Rows[0], 7)

	got, err := Validate(table)
	require.NoError(t, err)
	assert.Same(t, table, got)
}

func TestValidate_Ragged(t *testing.T) {
	table := NewFeatureTable([]FeatureRow{sampleRow(), sampleRow()})
	table.Rows[1] = table.Rows[1][:3]

	_, err := Validate(table)
	assert.ErrorIs(t, err, common.ErrNotADataTable)
}

func TestTable_SelectAndDrop(t *testing.T) {
	table := NewExampleTable([]LabeledExample{
		{FeatureRow: sampleRow(), IsOptimal: 1},
		{FeatureRow: sampleRow(), IsOptimal: 0},
	})

	dropped := table.Drop(LabelColumn)
	assert.Equal(t, FeatureNames(), dropped.Columns)
	assert.Len(t, dropped.Rows[0], 9)
	assert.Len(t, table.Rows[0], 10, "drop must not mutate the source table")

	sel, err := table.Select([]string{FeatureLackOfCohesion, FeatureLinesOfCode})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 200}, sel.Rows[0])

	_, err = table.Select([]string{"nope", FeatureLinesOfCode, "other"})
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"nope", "other"}, schemaErr.Missing)
}

func TestTable_Labels(t *testing.T) {
	table := NewExampleTable([]LabeledExample{
		{FeatureRow: sampleRow(), IsOptimal: 1},
		{FeatureRow: sampleRow(), IsOptimal: 0},
	})

	labels, err := table.Labels()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)

	table.Rows[1][9] = 2
	_, err = table.Labels()
	assert.ErrorIs(t, err, common.ErrInvalidLabel)

	_, err = table.Drop(LabelColumn).Labels()
	assert.ErrorIs(t, err, common.ErrMissingLabelColumn)
}

func TestTable_SubsetKeepsText(t *testing.T) {
	table := NewFeatureTable([]FeatureRow{sampleRow(), sampleRow(), sampleRow()})
	table.Text = map[string][]string{"class_type": {"Controller", "Service", "Util"}}

	sub := table.Subset([]int{2, 0})
	assert.Equal(t, []string{"Util", "Controller"}, sub.Text["class_type"])
	assert.Equal(t, 2, sub.Len())
}

func TestFeatureRow_Clean(t *testing.T) {
	row := FeatureRow{
		LinesOfCode:            100,
		EffectiveLines:         180,
		NumberOfMethods:        -3,
		CyclomaticComplexity:   -1,
		CouplingBetweenObjects: 4,
		LackOfCohesion:         1.4,
	}

	cleaned := row.Clean()
	assert.Equal(t, 100, cleaned.EffectiveLines)
	assert.Equal(t, 0, cleaned.NumberOfMethods)
	assert.Equal(t, 0, cleaned.CyclomaticComplexity)
	assert.InDelta(t, 1.0, cleaned.LackOfCohesion, 1e-12)

	row.LackOfCohesion = -0.2
	assert.InDelta(t, 0.0, row.Clean().LackOfCohesion, 1e-12)
}

func TestFeatureRow_ValuesRoundTrip(t *testing.T) {
	row := sampleRow()
	assert.Equal(t, row, FeatureRowFromValues(row.Values()))

	table := NewFeatureTable([]FeatureRow{row})
	rows, err := table.FeatureRows()
	require.NoError(t, err)
	assert.Equal(t, []FeatureRow{row}, rows)
}
