// Package classifier provides the interchangeable model families used to label
// code-metric rows as optimal or suboptimal.
package classifier

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// Kind identifies a classifier family.
type Kind string

const (
	// KindEnsemble is a bagged forest of decision trees.
	KindEnsemble Kind = "ensemble"
	// KindTree is a single decision tree.
	KindTree Kind = "tree"
)

// Kinds lists the recognized classifier families.
func Kinds() []Kind {
	return []Kind{KindEnsemble, KindTree}
}

// ParseKind resolves a kind name. "random_forest" and "decision_tree" are accepted as aliases.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(KindEnsemble), "random_forest", "forest":
		return KindEnsemble, nil
	case string(KindTree), "decision_tree":
		return KindTree, nil
	default:
		return "", fmt.Errorf("%w: %q (valid options: ensemble, tree)", common.ErrInvalidModelKind, name)
	}
}

// Classifier is the capability set every model family offers.
// Probabilities are reported as [P(suboptimal), P(optimal)] pairs.
type Classifier interface {
	Kind() Kind
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
	PredictProba(X [][]float64) ([][2]float64, error)
	Score(X [][]float64, y []int) (float64, error)
	Params() map[string]float64
}

// ImportanceReporter is implemented by classifiers that expose per-feature weights.
// Weights are non-negative, sum to 1 when any split was made, and follow the column
// order used at fit time.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// FeatureImportances returns the classifier's feature weights if it exposes them.
func FeatureImportances(c Classifier) ([]float64, bool) {
	r, ok := c.(ImportanceReporter)
	if !ok {
		return nil, false
	}
	w := r.FeatureImportances()
	return w, w != nil
}

// Options configures a new classifier.
type Options struct {
	// OnTreeFitted is called after each tree of an ensemble finishes fitting.
	// It may be called from several goroutines.
	OnTreeFitted    func()
	Seed            int64
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Workers         int
}

// New creates an unfitted classifier of the given kind.
func New(kind Kind, opts Options) (Classifier, error) {
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}
	switch kind {
	case KindEnsemble:
		return NewRandomForest(opts), nil
	case KindTree:
		return NewDecisionTree(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid options: ensemble, tree)", common.ErrInvalidModelKind, kind)
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// checkTraining validates a training matrix and returns its width.
func checkTraining(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: no training rows", common.ErrInsufficientData)
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", common.ErrLengthMismatch, len(X), len(y))
	}
	width, err := checkMatrix(X, -1)
	if err != nil {
		return 0, err
	}
	for i, label := range y {
		if label != model.Suboptimal && label != model.Optimal {
			return 0, fmt.Errorf("%w: row %d has label %d, expected 0 or 1", common.ErrInvalidLabel, i, label)
		}
	}
	return width, nil
}

// checkMatrix verifies every row has the same width, or exactly want columns when want >= 0.
func checkMatrix(X [][]float64, want int) (int, error) {
	width := want
	for i, row := range X {
		if width < 0 {
			width = len(row)
		}
		if len(row) != width {
			return 0, fmt.Errorf("%w: row %d has %d features, expected %d", common.ErrSchema, i, len(row), width)
		}
	}
	if width == 0 {
		return 0, fmt.Errorf("%w: zero feature columns", common.ErrEmptyFeatureSet)
	}
	return width, nil
}

// argmax picks the predicted label; ties go to the suboptimal class.
func argmax(p [2]float64) int {
	if p[model.Optimal] > p[model.Suboptimal] {
		return model.Optimal
	}
	return model.Suboptimal
}

func predictFromProba(c Classifier, X [][]float64) ([]int, error) {
	proba, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(proba))
	for i, p := range proba {
		labels[i] = argmax(p)
	}
	return labels, nil
}

func score(c Classifier, X [][]float64, y []int) (float64, error) {
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	return model.Accuracy(y, pred)
}
