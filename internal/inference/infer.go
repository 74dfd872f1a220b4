// Package inference scores tables with a fitted classifier and holds the active
// model of a session.
package inference

import (
	"fmt"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// Infer predicts a label and class probabilities for every row of table in one
// batch. Columns outside the feature schema, the label included, are ignored.
// When trueLabels is non-nil the predictions are also scored against it.
func Infer(clf classifier.Classifier, table *model.Table, trueLabels []int) (*model.PredictionResult, error) {
	if clf == nil {
		return nil, common.ErrNoModelLoaded
	}
	if err := table.CheckRectangular(); err != nil {
		return nil, err
	}
	if len(table.FeatureColumns()) == 0 {
		return nil, fmt.Errorf("%w: table has no feature columns", common.ErrEmptyFeatureSet)
	}
	features, err := table.Select(model.FeatureNames())
	if err != nil {
		return nil, err
	}
	if trueLabels != nil && len(trueLabels) != table.Len() {
		return nil, fmt.Errorf("%w: %d rows but %d true labels", common.ErrLengthMismatch, table.Len(), len(trueLabels))
	}

	result := &model.PredictionResult{
		Predictions:   []int{},
		Probabilities: [][2]float64{},
	}
	if table.Len() == 0 {
		return result, nil
	}

	if result.Probabilities, err = clf.PredictProba(features.Rows); err != nil {
		return nil, fmt.Errorf("failed to predict probabilities: %w", err)
	}
	if result.Predictions, err = clf.Predict(features.Rows); err != nil {
		return nil, fmt.Errorf("failed to predict: %w", err)
	}

	if trueLabels != nil {
		ev := &model.Evaluation{}
		if ev.Accuracy, err = model.Accuracy(trueLabels, result.Predictions); err != nil {
			return nil, err
		}
		if ev.ConfusionMatrix, err = model.NewConfusionMatrix(trueLabels, result.Predictions); err != nil {
			return nil, err
		}
		ev.ClassificationReport = ev.ConfusionMatrix.Report()
		result.Evaluation = ev
	}
	return result, nil
}
