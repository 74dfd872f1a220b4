// Package analysis summarizes batches of predictions and renders prediction,
// analysis, suggestion and training reports for the terminal.
package analysis

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// LowConfidenceThreshold is the confidence below which a prediction is flagged.
const LowConfidenceThreshold = 0.7

// PredictionCounts tallies predictions per class.
type PredictionCounts struct {
	Optimal    int `json:"optimal"`
	Suboptimal int `json:"suboptimal"`
}

// ConfidenceStats aggregates per-row confidences. The standard deviation is the
// sample standard deviation.
type ConfidenceStats struct {
	Mean   model.Measure `json:"mean"`
	Min    model.Measure `json:"min"`
	Max    model.Measure `json:"max"`
	StdDev model.Measure `json:"std"`
}

// LowConfidenceRow is a prediction whose confidence fell below the threshold.
type LowConfidenceRow struct {
	Features   map[string]float64 `json:"features"`
	Index      int                `json:"index"`
	Prediction int                `json:"prediction"`
	Confidence float64            `json:"confidence"`
}

// GroupStats is the distribution of one feature within one predicted class.
type GroupStats struct {
	Mean   model.Measure `json:"mean"`
	StdDev model.Measure `json:"std"`
}

// FeatureStats compares one feature across the predicted classes.
type FeatureStats struct {
	Name       string     `json:"name"`
	Optimal    GroupStats `json:"optimal"`
	Suboptimal GroupStats `json:"suboptimal"`
}

// Report is the summary of one batch of predictions.
type Report struct {
	Confidences      []float64          `json:"-"`
	LowConfidence    []LowConfidenceRow `json:"low_confidence_rows"`
	FeatureStats     []FeatureStats     `json:"per_feature_stats"`
	ConfidenceStats  ConfidenceStats    `json:"confidence_stats"`
	PredictionCounts PredictionCounts   `json:"prediction_counts"`
	Total            int                `json:"total"`
}

// Analyze summarizes predictions and probabilities made for the rows of features.
// The label column, when present, is not treated as a feature.
func Analyze(features *model.Table, predictions []int, probabilities [][2]float64) (*Report, error) {
	if err := features.CheckRectangular(); err != nil {
		return nil, err
	}
	n := features.Len()
	if len(predictions) != n || len(probabilities) != n {
		return nil, fmt.Errorf("%w: %d rows, %d predictions, %d probabilities",
			common.ErrLengthMismatch, n, len(predictions), len(probabilities))
	}

	report := &Report{
		Total:       n,
		Confidences: make([]float64, n),
	}
	for i, p := range predictions {
		if p == model.Optimal {
			report.PredictionCounts.Optimal++
		} else {
			report.PredictionCounts.Suboptimal++
		}
		report.Confidences[i] = max(probabilities[i][0], probabilities[i][1])
	}
	report.ConfidenceStats = confidenceStats(report.Confidences)

	columns := features.FeatureColumns()
	indices := make([]int, len(columns))
	for i, name := range columns {
		indices[i] = features.ColumnIndex(name)
	}

	for i, c := range report.Confidences {
		if c >= LowConfidenceThreshold {
			continue
		}
		values := make(map[string]float64, len(columns))
		for j, name := range columns {
			values[name] = features.Rows[i][indices[j]]
		}
		report.LowConfidence = append(report.LowConfidence, LowConfidenceRow{
			Index:      i,
			Confidence: c,
			Prediction: predictions[i],
			Features:   values,
		})
	}

	for j, name := range columns {
		var optimal, suboptimal []float64
		for i, row := range features.Rows {
			if predictions[i] == model.Optimal {
				optimal = append(optimal, row[indices[j]])
			} else {
				suboptimal = append(suboptimal, row[indices[j]])
			}
		}
		report.FeatureStats = append(report.FeatureStats, FeatureStats{
			Name:       name,
			Optimal:    groupStats(optimal),
			Suboptimal: groupStats(suboptimal),
		})
	}
	return report, nil
}

// MeanConfidence returns the mean confidence or zero for an empty batch.
func (r *Report) MeanConfidence() float64 {
	if !r.ConfidenceStats.Mean.Valid {
		return 0
	}
	return r.ConfidenceStats.Mean.Value
}

// Feature returns the stats of the named feature.
func (r *Report) Feature(name string) (FeatureStats, bool) {
	i := slices.IndexFunc(r.FeatureStats, func(f FeatureStats) bool { return f.Name == name })
	if i < 0 {
		return FeatureStats{}, false
	}
	return r.FeatureStats[i], true
}

func confidenceStats(values []float64) ConfidenceStats {
	var cs ConfidenceStats
	if len(values) == 0 {
		return cs
	}
	cs.Mean = model.Defined(stat.Mean(values, nil))
	cs.Min = model.Defined(floats.Min(values))
	cs.Max = model.Defined(floats.Max(values))
	if len(values) > 1 {
		cs.StdDev = model.Defined(stat.StdDev(values, nil))
	}
	return cs
}

func groupStats(values []float64) GroupStats {
	var gs GroupStats
	if len(values) == 0 {
		return gs
	}
	gs.Mean = model.Defined(stat.Mean(values, nil))
	if len(values) > 1 {
		gs.StdDev = model.Defined(stat.StdDev(values, nil))
	}
	return gs
}
