package classifier

import (
	"fmt"
	"math"

	"github.com/Veraticus/codeadvisor/internal/common"
	"golang.org/x/sync/errgroup"
)

// DefaultTrees is the ensemble size used when Options.Trees is not set.
const DefaultTrees = 100

// RandomForest is a bagged ensemble of decision trees. Each tree sees a bootstrap
// sample of the rows and considers sqrt(n_features) candidate features per split.
type RandomForest struct {
	onTreeFitted    func()
	Trees           []*DecisionTree `json:"trees"`
	Importances     []float64       `json:"importances"`
	Seed            int64           `json:"seed"`
	NTrees          int             `json:"n_trees"`
	NFeatures       int             `json:"n_features"`
	MaxDepth        int             `json:"max_depth"`
	MinSamplesSplit int             `json:"min_samples_split"`
	MaxFeatures     int             `json:"max_features"`
	Workers         int             `json:"-"`
}

// NewRandomForest creates an unfitted forest.
func NewRandomForest(opts Options) *RandomForest {
	trees := opts.Trees
	if trees <= 0 {
		trees = DefaultTrees
	}
	minSplit := opts.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &RandomForest{
		onTreeFitted:    opts.OnTreeFitted,
		Seed:            opts.Seed,
		NTrees:          trees,
		MaxDepth:        opts.MaxDepth,
		MinSamplesSplit: minSplit,
		MaxFeatures:     opts.MaxFeatures,
		Workers:         workers,
	}
}

// Kind implements Classifier.
func (f *RandomForest) Kind() Kind {
	return KindEnsemble
}

// Params implements Classifier.
func (f *RandomForest) Params() map[string]float64 {
	return map[string]float64{
		"seed":              float64(f.Seed),
		"n_trees":           float64(f.NTrees),
		"max_depth":         float64(f.MaxDepth),
		"min_samples_split": float64(f.MinSamplesSplit),
		"max_features":      float64(f.MaxFeatures),
	}
}

// Fit grows NTrees trees. Seeds and bootstrap samples are drawn from Seed before
// any tree is fitted, so the result does not depend on Workers.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	width, err := checkTraining(X, y)
	if err != nil {
		return err
	}
	f.NFeatures = width

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(width))))
	}

	rng := newRand(f.Seed)
	n := len(X)
	samples := make([][]int, f.NTrees)
	trees := make([]*DecisionTree, f.NTrees)
	for i := range trees {
		trees[i] = &DecisionTree{
			Seed:            rng.Int64(),
			MaxDepth:        f.MaxDepth,
			MinSamplesSplit: f.MinSamplesSplit,
			MaxFeatures:     maxFeatures,
		}
		sample := make([]int, n)
		for j := range sample {
			sample[j] = rng.IntN(n)
		}
		samples[i] = sample
	}

	var g errgroup.Group
	g.SetLimit(max(1, f.Workers))
	for i, tree := range trees {
		g.Go(func() error {
			tree.fit(X, y, samples[i], width)
			if f.onTreeFitted != nil {
				f.onTreeFitted()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fitting forest: %w", err)
	}

	importances := make([]float64, width)
	for _, tree := range trees {
		for j, w := range tree.importances {
			importances[j] += w
		}
	}
	normalize(importances)

	f.Trees = trees
	f.Importances = importances
	return nil
}

// PredictProba averages the leaf probabilities of every tree.
func (f *RandomForest) PredictProba(X [][]float64) ([][2]float64, error) {
	if len(f.Trees) == 0 {
		return nil, common.ErrNotFitted
	}
	if _, err := checkMatrix(X, f.NFeatures); err != nil {
		return nil, err
	}

	out := make([][2]float64, len(X))
	for i, row := range X {
		var sum [2]float64
		for _, tree := range f.Trees {
			v := tree.leaf(row).Value
			sum[0] += v[0]
			sum[1] += v[1]
		}
		k := float64(len(f.Trees))
		out[i] = [2]float64{sum[0] / k, sum[1] / k}
	}
	return out, nil
}

// Predict implements Classifier.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	return predictFromProba(f, X)
}

// Score implements Classifier.
func (f *RandomForest) Score(X [][]float64, y []int) (float64, error) {
	return score(f, X, y)
}

// FeatureImportances implements ImportanceReporter.
func (f *RandomForest) FeatureImportances() []float64 {
	if f.Importances == nil {
		return nil
	}
	out := make([]float64, len(f.Importances))
	copy(out, f.Importances)
	return out
}

func (f *RandomForest) validate() error {
	if len(f.Trees) == 0 || f.NFeatures <= 0 {
		return fmt.Errorf("%w: empty forest", common.ErrCorruptModel)
	}
	for i, tree := range f.Trees {
		if tree == nil {
			return fmt.Errorf("%w: tree %d is missing", common.ErrCorruptModel, i)
		}
		if tree.NFeatures != f.NFeatures {
			return fmt.Errorf("%w: tree %d has %d features, forest has %d", common.ErrCorruptModel, i, tree.NFeatures, f.NFeatures)
		}
		if err := tree.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
