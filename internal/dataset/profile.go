package dataset

import (
	"fmt"
	"slices"

	"github.com/Veraticus/codeadvisor/internal/model"
	"gonum.org/v1/gonum/stat"
)

// ClassStats summarizes one metric within one label class.
type ClassStats struct {
	Mean   model.Measure `json:"mean"`
	Median model.Measure `json:"median"`
	StdDev model.Measure `json:"std"`
}

// MetricProfile compares a metric across the two label classes.
type MetricProfile struct {
	Name        string        `json:"name"`
	Optimal     ClassStats    `json:"optimal"`
	Suboptimal  ClassStats    `json:"suboptimal"`
	Correlation model.Measure `json:"correlation"`
}

// Profile describes the class balance and per-class metric distribution of a
// labeled table.
type Profile struct {
	Ratio      model.Measure   `json:"ratio"`
	Metrics    []MetricProfile `json:"metrics"`
	Total      int             `json:"total"`
	Optimal    int             `json:"optimal"`
	Suboptimal int             `json:"suboptimal"`
}

// OptimalShare returns the fraction of optimal rows.
func (p *Profile) OptimalShare() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Optimal) / float64(p.Total)
}

// NewProfile profiles every numeric feature column of a labeled table.
func NewProfile(table *model.Table) (*Profile, error) {
	if err := table.CheckRectangular(); err != nil {
		return nil, err
	}
	labels, err := table.Labels()
	if err != nil {
		return nil, err
	}

	labelValues := make([]float64, len(labels))
	p := &Profile{Total: len(labels)}
	for i, l := range labels {
		labelValues[i] = float64(l)
		if l == model.Optimal {
			p.Optimal++
		} else {
			p.Suboptimal++
		}
	}
	if p.Optimal > 0 && p.Suboptimal > 0 {
		p.Ratio = model.Defined(float64(p.Optimal) / float64(p.Suboptimal))
	}

	for _, name := range table.FeatureColumns() {
		values, err := table.Column(name)
		if err != nil {
			return nil, fmt.Errorf("profiling %s: %w", name, err)
		}

		var optimal, suboptimal []float64
		for i, v := range values {
			if labels[i] == model.Optimal {
				optimal = append(optimal, v)
			} else {
				suboptimal = append(suboptimal, v)
			}
		}

		p.Metrics = append(p.Metrics, MetricProfile{
			Name:        name,
			Optimal:     classStats(optimal),
			Suboptimal:  classStats(suboptimal),
			Correlation: correlation(values, labelValues),
		})
	}
	return p, nil
}

func classStats(values []float64) ClassStats {
	var cs ClassStats
	if len(values) == 0 {
		return cs
	}
	cs.Mean = model.Defined(stat.Mean(values, nil))
	cs.Median = model.Defined(median(values))
	if len(values) > 1 {
		cs.StdDev = model.Defined(stat.StdDev(values, nil))
	}
	return cs
}

// median averages the middle pair for even-length input.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// correlation is the Pearson correlation; constant inputs make it undefined.
func correlation(x, y []float64) model.Measure {
	if len(x) < 2 {
		return model.Measure{}
	}
	return model.Defined(stat.Correlation(x, y, nil))
}
