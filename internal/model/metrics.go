package model

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/codeadvisor/internal/common"
)

// ConfusionMatrix counts predictions indexed [true label][predicted label].
type ConfusionMatrix [2][2]int

// ClassMetrics holds precision, recall and F1 for one class or average.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationReport is the per-class evaluation of a set of predictions.
type ClassificationReport struct {
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Accuracy    float64        `json:"accuracy"`
}

// EvaluationMetrics is the immutable record of one training run.
type EvaluationMetrics struct {
	FeatureImportance    map[string]float64   `json:"feature_importance,omitempty"`
	Params               map[string]float64   `json:"params,omitempty"`
	ModelKind            string               `json:"model_kind"`
	ClassificationReport ClassificationReport `json:"classification_report"`
	ConfusionMatrix      ConfusionMatrix      `json:"confusion_matrix"`
	TrainAccuracy        float64              `json:"train_accuracy"`
	TestAccuracy         float64              `json:"test_accuracy"`
	TrainSamples         int                  `json:"train_samples"`
	TestSamples          int                  `json:"test_samples"`
}

// Accuracy returns the fraction of exactly matching labels.
func Accuracy(truth, predicted []int) (float64, error) {
	if err := checkAligned(truth, predicted); err != nil {
		return 0, err
	}
	if len(truth) == 0 {
		return 0, fmt.Errorf("%w: no labels to score", common.ErrInsufficientData)
	}
	correct := 0
	for i := range truth {
		if truth[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth)), nil
}

// NewConfusionMatrix counts truth/prediction pairs over the labels {0,1}.
func NewConfusionMatrix(truth, predicted []int) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	if err := checkAligned(truth, predicted); err != nil {
		return cm, err
	}
	for i := range truth {
		t, p := truth[i], predicted[i]
		if !isLabel(t) || !isLabel(p) {
			return cm, fmt.Errorf("%w: row %d has true=%d predicted=%d", common.ErrInvalidLabel, i, t, p)
		}
		cm[t][p]++
	}
	return cm, nil
}

// Total returns the number of counted predictions.
func (cm ConfusionMatrix) Total() int {
	return cm[0][0] + cm[0][1] + cm[1][0] + cm[1][1]
}

// Report derives precision/recall/F1 per class from the matrix.
// Divisions by zero yield 0.
func (cm ConfusionMatrix) Report() ClassificationReport {
	total := cm.Total()
	report := ClassificationReport{
		Classes: make([]ClassMetrics, 0, 2),
	}

	var macro, weighted ClassMetrics
	for label := Suboptimal; label <= Optimal; label++ {
		tp := cm[label][label]
		predictedAs := cm[0][label] + cm[1][label]
		support := cm[label][0] + cm[label][1]

		m := ClassMetrics{
			Label:     strconv.Itoa(label),
			Precision: ratio(tp, predictedAs),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		report.Classes = append(report.Classes, m)

		macro.Precision += m.Precision / 2
		macro.Recall += m.Recall / 2
		macro.F1Score += m.F1Score / 2
		if total > 0 {
			w := float64(support) / float64(total)
			weighted.Precision += m.Precision * w
			weighted.Recall += m.Recall * w
			weighted.F1Score += m.F1Score * w
		}
	}

	macro.Label, macro.Support = "macro avg", total
	weighted.Label, weighted.Support = "weighted avg", total
	report.MacroAvg = macro
	report.WeightedAvg = weighted
	report.Accuracy = ratio(cm[0][0]+cm[1][1], total)
	return report
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func isLabel(v int) bool {
	return v == Suboptimal || v == Optimal
}

func checkAligned(truth, predicted []int) error {
	if len(truth) != len(predicted) {
		return fmt.Errorf("%w: %d true labels, %d predictions", common.ErrLengthMismatch, len(truth), len(predicted))
	}
	return nil
}
