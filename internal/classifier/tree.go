package classifier

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Veraticus/codeadvisor/internal/common"
)

const leafFeature = -1

// Node is one node of a fitted decision tree, stored in a flat slice.
// Leaves have Feature == -1 and carry class probabilities in Value.
type Node struct {
	Value     [2]float64 `json:"value"`
	Threshold float64    `json:"threshold"`
	Feature   int        `json:"feature"`
	Left      int        `json:"left,omitempty"`
	Right     int        `json:"right,omitempty"`
	Samples   int        `json:"samples"`
}

// DecisionTree is a binary CART classifier splitting on Gini impurity.
type DecisionTree struct {
	rng             *rand.Rand
	importances     []float64
	Nodes           []Node `json:"nodes"`
	Seed            int64  `json:"seed"`
	NFeatures       int    `json:"n_features"`
	MaxDepth        int    `json:"max_depth"`
	MinSamplesSplit int    `json:"min_samples_split"`
	MaxFeatures     int    `json:"max_features"`
}

// NewDecisionTree creates an unfitted tree. MaxFeatures 0 considers every feature at each split.
func NewDecisionTree(opts Options) *DecisionTree {
	minSplit := opts.MinSamplesSplit
	if minSplit < 2 {
		minSplit = 2
	}
	return &DecisionTree{
		Seed:            opts.Seed,
		MaxDepth:        opts.MaxDepth,
		MinSamplesSplit: minSplit,
		MaxFeatures:     opts.MaxFeatures,
	}
}

// Kind implements Classifier.
func (t *DecisionTree) Kind() Kind {
	return KindTree
}

// Params implements Classifier.
func (t *DecisionTree) Params() map[string]float64 {
	return map[string]float64{
		"seed":              float64(t.Seed),
		"max_depth":         float64(t.MaxDepth),
		"min_samples_split": float64(t.MinSamplesSplit),
		"max_features":      float64(t.MaxFeatures),
	}
}

// Fit grows the tree on X and y.
func (t *DecisionTree) Fit(X [][]float64, y []int) error {
	width, err := checkTraining(X, y)
	if err != nil {
		return err
	}
	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	t.fit(X, y, indices, width)
	return nil
}

// fit grows the tree on the rows named by indices; duplicates act as sample weights.
func (t *DecisionTree) fit(X [][]float64, y []int, indices []int, width int) {
	t.NFeatures = width
	t.Nodes = t.Nodes[:0]
	t.importances = make([]float64, width)
	t.rng = newRand(t.Seed)
	t.grow(X, y, indices, 0)
	normalize(t.importances)
	t.rng = nil
}

type split struct {
	feature   int
	threshold float64
	decrease  float64
	left      []int
	right     []int
}

func (t *DecisionTree) grow(X [][]float64, y []int, indices []int, depth int) int {
	counts := classCounts(y, indices)
	n := len(indices)

	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{
		Feature: leafFeature,
		Samples: n,
		Value:   [2]float64{float64(counts[0]) / float64(n), float64(counts[1]) / float64(n)},
	})

	if counts[0] == 0 || counts[1] == 0 || n < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return id
	}

	best, ok := t.bestSplit(X, y, indices, counts)
	if !ok {
		return id
	}

	t.importances[best.feature] += best.decrease
	left := t.grow(X, y, best.left, depth+1)
	right := t.grow(X, y, best.right, depth+1)

	t.Nodes[id].Feature = best.feature
	t.Nodes[id].Threshold = best.threshold
	t.Nodes[id].Left = left
	t.Nodes[id].Right = right
	return id
}

// bestSplit scans features in a seeded random order and stops once MaxFeatures
// non-constant features were evaluated.
func (t *DecisionTree) bestSplit(X [][]float64, y []int, indices []int, counts [2]int) (split, bool) {
	n := len(indices)
	parent := float64(n) * gini(counts[0], counts[1])

	limit := t.MaxFeatures
	if limit <= 0 || limit > t.NFeatures {
		limit = t.NFeatures
	}

	var best split
	found := false
	evaluated := 0
	sorted := make([]int, n)

	for _, f := range t.rng.Perm(t.NFeatures) {
		if evaluated >= limit {
			break
		}
		copy(sorted, indices)
		slices.SortStableFunc(sorted, func(a, b int) int {
			switch {
			case X[a][f] < X[b][f]:
				return -1
			case X[a][f] > X[b][f]:
				return 1
			default:
				return 0
			}
		})
		if X[sorted[0]][f] == X[sorted[n-1]][f] {
			continue
		}
		evaluated++

		var left [2]int
		for i := 0; i < n-1; i++ {
			left[y[sorted[i]]]++
			lo, hi := X[sorted[i]][f], X[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nl := i + 1
			nr := n - nl
			right := [2]int{counts[0] - left[0], counts[1] - left[1]}
			impurity := float64(nl)*gini(left[0], left[1]) + float64(nr)*gini(right[0], right[1])
			decrease := parent - impurity
			if !found || decrease > best.decrease {
				found = true
				best.feature = f
				best.threshold = lo + (hi-lo)/2
				if best.threshold >= hi {
					best.threshold = lo
				}
				best.decrease = decrease
			}
		}
	}

	if !found {
		return best, false
	}

	for _, idx := range indices {
		if X[idx][best.feature] <= best.threshold {
			best.left = append(best.left, idx)
		} else {
			best.right = append(best.right, idx)
		}
	}
	return best, true
}

// PredictProba implements Classifier.
func (t *DecisionTree) PredictProba(X [][]float64) ([][2]float64, error) {
	if len(t.Nodes) == 0 {
		return nil, common.ErrNotFitted
	}
	if _, err := checkMatrix(X, t.NFeatures); err != nil {
		return nil, err
	}
	out := make([][2]float64, len(X))
	for i, row := range X {
		out[i] = t.leaf(row).Value
	}
	return out, nil
}

// Predict implements Classifier.
func (t *DecisionTree) Predict(X [][]float64) ([]int, error) {
	return predictFromProba(t, X)
}

// Score implements Classifier.
func (t *DecisionTree) Score(X [][]float64, y []int) (float64, error) {
	return score(t, X, y)
}

// Depth returns the depth of the fitted tree; a lone leaf has depth 0.
func (t *DecisionTree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(id int) int
	walk = func(id int) int {
		n := t.Nodes[id]
		if n.Feature == leafFeature {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

func (t *DecisionTree) leaf(row []float64) Node {
	n := t.Nodes[0]
	for n.Feature != leafFeature {
		if row[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n
}

func (t *DecisionTree) validate() error {
	if t.NFeatures <= 0 || len(t.Nodes) == 0 {
		return fmt.Errorf("%w: empty decision tree", common.ErrCorruptModel)
	}
	for i, n := range t.Nodes {
		if n.Feature == leafFeature {
			continue
		}
		if n.Feature < 0 || n.Feature >= t.NFeatures ||
			n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("%w: node %d is malformed", common.ErrCorruptModel, i)
		}
	}
	return nil
}

func classCounts(y []int, indices []int) [2]int {
	var counts [2]int
	for _, idx := range indices {
		counts[y[idx]]++
	}
	return counts
}

func gini(a, b int) float64 {
	n := float64(a + b)
	if n == 0 {
		return 0
	}
	pa, pb := float64(a)/n, float64(b)/n
	return 1 - pa*pa - pb*pb
}

func normalize(w []float64) {
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		return
	}
	for i := range w {
		w[i] /= sum
	}
}
