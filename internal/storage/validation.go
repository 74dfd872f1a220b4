package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/codeadvisor/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRun   = errors.New("invalid run")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

func validateTrainingRun(run *model.TrainingRun) error {
	if run == nil {
		return fmt.Errorf("%w: training run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ModelKind) == "" {
		return fmt.Errorf("%w: model kind is required", ErrInvalidRun)
	}
	if run.Rows < 0 {
		return fmt.Errorf("%w: rows must be non-negative, got %d", ErrInvalidRun, run.Rows)
	}
	if !isFraction(run.TrainAccuracy) || !isFraction(run.TestAccuracy) {
		return fmt.Errorf("%w: accuracy must be in [0,1]", ErrInvalidRun)
	}
	return nil
}

func validateAnalysisRun(run *model.AnalysisRun) error {
	if run == nil {
		return fmt.Errorf("%w: analysis run", ErrNilParameter)
	}
	if run.Rows < 0 || run.Optimal < 0 || run.Suboptimal < 0 || run.LowConfidence < 0 || run.Suggestions < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidRun)
	}
	if run.Optimal+run.Suboptimal != run.Rows {
		return fmt.Errorf("%w: %d optimal + %d suboptimal != %d rows", ErrInvalidRun, run.Optimal, run.Suboptimal, run.Rows)
	}
	if !isFraction(run.MeanConfidence) {
		return fmt.Errorf("%w: mean confidence must be in [0,1]", ErrInvalidRun)
	}
	return nil
}

func isFraction(v float64) bool {
	return v >= 0 && v <= 1
}
