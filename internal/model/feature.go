// Package model defines the core domain models used throughout the application.
package model

import "math"

// LabelColumn is the name of the binary training label (1 = optimal, 0 = suboptimal).
const LabelColumn = "is_optimal"

// Label values.
const (
	Suboptimal = 0
	Optimal    = 1
)

// Feature column names, in schema order.
const (
	FeatureLinesOfCode            = "lines_of_code"
	FeatureEffectiveLines         = "effective_lines"
	FeatureNumberOfMethods        = "number_of_methods"
	FeatureCyclomaticComplexity   = "cyclomatic_complexity"
	FeatureInheritanceDepth       = "inheritance_depth"
	FeatureNumberOfBranches       = "number_of_branches"
	FeatureCouplingBetweenObjects = "coupling_between_objects"
	FeatureExternalDependencies   = "external_dependencies"
	FeatureLackOfCohesion         = "lack_of_cohesion"
)

var featureNames = []string{
	FeatureLinesOfCode,
	FeatureEffectiveLines,
	FeatureNumberOfMethods,
	FeatureCyclomaticComplexity,
	FeatureInheritanceDepth,
	FeatureNumberOfBranches,
	FeatureCouplingBetweenObjects,
	FeatureExternalDependencies,
	FeatureLackOfCohesion,
}

// FeatureNames returns the nine schema features in canonical order.
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// FeatureRow holds the metrics of one code unit.
type FeatureRow struct {
	LinesOfCode            int     `json:"lines_of_code"`
	EffectiveLines         int     `json:"effective_lines"`
	NumberOfMethods        int     `json:"number_of_methods"`
	CyclomaticComplexity   int     `json:"cyclomatic_complexity"`
	InheritanceDepth       int     `json:"inheritance_depth"`
	NumberOfBranches       int     `json:"number_of_branches"`
	CouplingBetweenObjects int     `json:"coupling_between_objects"`
	ExternalDependencies   int     `json:"external_dependencies"`
	LackOfCohesion         float64 `json:"lack_of_cohesion"`
}

// Values returns the row as a feature vector in schema order.
func (r FeatureRow) Values() []float64 {
	return []float64{
		float64(r.LinesOfCode),
		float64(r.EffectiveLines),
		float64(r.NumberOfMethods),
		float64(r.CyclomaticComplexity),
		float64(r.InheritanceDepth),
		float64(r.NumberOfBranches),
		float64(r.CouplingBetweenObjects),
		float64(r.ExternalDependencies),
		r.LackOfCohesion,
	}
}

// FeatureRowFromValues builds a row from a schema-ordered vector.
// Integer metrics are truncated toward zero.
func FeatureRowFromValues(values []float64) FeatureRow {
	get := func(i int) float64 {
		if i < len(values) {
			return values[i]
		}
		return 0
	}
	return FeatureRow{
		LinesOfCode:            int(get(0)),
		EffectiveLines:         int(get(1)),
		NumberOfMethods:        int(get(2)),
		CyclomaticComplexity:   int(get(3)),
		InheritanceDepth:       int(get(4)),
		NumberOfBranches:       int(get(5)),
		CouplingBetweenObjects: int(get(6)),
		ExternalDependencies:   int(get(7)),
		LackOfCohesion:         get(8),
	}
}

// Clean clips the row into its valid domain: no negative counts, cohesion in [0,1]
// and effective lines never above lines of code.
func (r FeatureRow) Clean() FeatureRow {
	r.LinesOfCode = max(r.LinesOfCode, 0)
	r.EffectiveLines = max(r.EffectiveLines, 0)
	r.NumberOfMethods = max(r.NumberOfMethods, 0)
	r.CyclomaticComplexity = max(r.CyclomaticComplexity, 0)
	r.InheritanceDepth = max(r.InheritanceDepth, 0)
	r.NumberOfBranches = max(r.NumberOfBranches, 0)
	r.CouplingBetweenObjects = max(r.CouplingBetweenObjects, 0)
	r.ExternalDependencies = max(r.ExternalDependencies, 0)
	r.LackOfCohesion = math.Min(math.Max(r.LackOfCohesion, 0), 1)
	r.EffectiveLines = min(r.EffectiveLines, r.LinesOfCode)
	return r
}

// LabeledExample is a FeatureRow with its training label.
type LabeledExample struct {
	FeatureRow
	IsOptimal int `json:"is_optimal"`
}

// NewExampleTable builds a table with the nine features and the label column.
func NewExampleTable(examples []LabeledExample) *Table {
	columns := append(FeatureNames(), LabelColumn)
	rows := make([][]float64, len(examples))
	for i, ex := range examples {
		rows[i] = append(ex.Values(), float64(ex.IsOptimal))
	}
	return &Table{Columns: columns, Rows: rows}
}

// NewFeatureTable builds an unlabeled table with the nine features.
func NewFeatureTable(rows []FeatureRow) *Table {
	values := make([][]float64, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}
	return &Table{Columns: FeatureNames(), Rows: values}
}
