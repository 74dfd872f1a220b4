package inference

import (
	"log/slog"
	"sync"

	"github.com/Veraticus/codeadvisor/internal/analysis"
	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/modelstore"
	"github.com/Veraticus/codeadvisor/internal/suggest"
	"github.com/Veraticus/codeadvisor/internal/training"
)

// Session holds at most one active classifier together with its evaluation
// metrics. Training or loading replaces the active model. A Session is safe for
// concurrent use; separate sessions share nothing.
type Session struct {
	clf       classifier.Classifier
	metrics   *model.EvaluationMetrics
	trainer   *training.Trainer
	store     *modelstore.Store
	suggester *suggest.Suggester
	logger    *slog.Logger
	source    string
	mu        sync.RWMutex
}

// NewSession creates a session with no active model. store may be nil when the
// session never saves or loads by file name.
func NewSession(store *modelstore.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		trainer:   training.NewTrainer(logger),
		store:     store,
		suggester: suggest.NewSuggester(),
		logger:    logger,
	}
}

// Train fits a classifier on table and makes it the active model.
func (s *Session) Train(table *model.Table, opts training.Options) (*training.Result, error) {
	result, err := s.trainer.Train(table, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clf = result.Classifier
	metrics := result.Metrics
	s.metrics = &metrics
	s.source = ""
	return result, nil
}

// Load reads a stored model and makes it the active model.
func (s *Session) Load(path string) (modelstore.Metadata, error) {
	var (
		clf  classifier.Classifier
		meta modelstore.Metadata
		err  error
	)
	if s.store != nil {
		clf, meta, err = s.store.Load(path)
	} else {
		clf, meta, err = modelstore.Load(path)
	}
	if err != nil {
		return modelstore.Metadata{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clf = clf
	metrics := meta.EvaluationMetrics
	s.metrics = &metrics
	s.source = path
	s.logger.Info("Loaded model", "path", path, "model_kind", clf.Kind(), "model_name", meta.ModelName)
	return meta, nil
}

// Save persists the active model and its metrics under name.
func (s *Session) Save(name string) (string, error) {
	s.mu.RLock()
	clf, metrics := s.clf, s.metrics
	s.mu.RUnlock()

	if clf == nil {
		return "", common.ErrNoModelLoaded
	}
	if s.store == nil {
		return "", common.NewUserError("no model directory configured", nil)
	}

	var m model.EvaluationMetrics
	if metrics != nil {
		m = *metrics
	}
	path, err := s.store.Save(clf, name, m)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.source = path
	s.mu.Unlock()
	return path, nil
}

// Classifier returns the active classifier.
func (s *Session) Classifier() (classifier.Classifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.clf == nil {
		return nil, common.ErrNoModelLoaded
	}
	return s.clf, nil
}

// Source returns the file the active model was loaded from or saved to, if any.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Metrics returns the evaluation metrics of the active model.
func (s *Session) Metrics() (model.EvaluationMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metrics == nil {
		return model.EvaluationMetrics{}, common.ErrNoMetricsAvailable
	}
	return *s.metrics, nil
}

// Predict scores table with the active model.
func (s *Session) Predict(table *model.Table, trueLabels []int) (*model.PredictionResult, error) {
	clf, err := s.Classifier()
	if err != nil {
		return nil, err
	}
	return Infer(clf, table, trueLabels)
}

// Analyze scores table with the active model and summarizes the predictions.
// The label column, when present, is used to evaluate the predictions.
func (s *Session) Analyze(table *model.Table) (*model.PredictionResult, *analysis.Report, error) {
	clf, err := s.Classifier()
	if err != nil {
		return nil, nil, err
	}

	var labels []int
	if table != nil && table.HasColumn(model.LabelColumn) {
		if labels, err = table.Labels(); err != nil {
			return nil, nil, err
		}
	}

	result, err := Infer(clf, table, labels)
	if err != nil {
		return nil, nil, err
	}
	report, err := analysis.Analyze(table, result.Predictions, result.Probabilities)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("Analyzed predictions",
		"rows", report.Total,
		"optimal", report.PredictionCounts.Optimal,
		"suboptimal", report.PredictionCounts.Suboptimal,
		"low_confidence", len(report.LowConfidence))
	return result, report, nil
}

// Suggest produces refactoring advice for the rows of table predicted suboptimal.
// A nil result scores table with the active model first.
func (s *Session) Suggest(table *model.Table, result *model.PredictionResult) ([]suggest.Suggestion, error) {
	if result == nil {
		var err error
		if result, err = s.Predict(table, nil); err != nil {
			return nil, err
		}
	}
	return s.suggester.Suggest(table, result.Predictions)
}
