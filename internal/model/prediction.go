package model

// Evaluation scores predictions against known labels.
type Evaluation struct {
	ClassificationReport ClassificationReport `json:"classification_report"`
	ConfusionMatrix      ConfusionMatrix      `json:"confusion_matrix"`
	Accuracy             float64              `json:"accuracy"`
}

// PredictionResult holds the predicted label and class probabilities of every
// scored row, in row order. Probabilities are [P(suboptimal), P(optimal)].
// Evaluation is set only when true labels were supplied.
type PredictionResult struct {
	Evaluation    *Evaluation  `json:"evaluation,omitempty"`
	Predictions   []int        `json:"predictions"`
	Probabilities [][2]float64 `json:"probabilities"`
}

// Confidence returns the larger class probability of row i.
func (r *PredictionResult) Confidence(i int) float64 {
	return max(r.Probabilities[i][0], r.Probabilities[i][1])
}
