package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/codeadvisor/internal/model"
)

// SaveTrainingRun records a training run, assigning its ID and timestamp when unset.
func (s *SQLiteStorage) SaveTrainingRun(ctx context.Context, run *model.TrainingRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTrainingRun(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_runs (id, model_name, model_path, model_kind, data_path, seed,
			row_count, train_accuracy, test_accuracy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelName, run.ModelPath, run.ModelKind, run.DataPath, run.Seed,
		run.Rows, run.TrainAccuracy, run.TestAccuracy, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}
	return nil
}

// SaveAnalysisRun records a prediction run, assigning its ID and timestamp when unset.
func (s *SQLiteStorage) SaveAnalysisRun(ctx context.Context, run *model.AnalysisRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAnalysisRun(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, model_path, data_path, row_count, optimal, suboptimal,
			mean_confidence, low_confidence, suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelPath, run.DataPath, run.Rows, run.Optimal, run.Suboptimal,
		run.MeanConfidence, run.LowConfidence, run.Suggestions, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// RecentTrainingRuns returns up to limit training runs, newest first.
func (s *SQLiteStorage) RecentTrainingRuns(ctx context.Context, limit int) ([]model.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_name, model_path, model_kind, data_path, seed,
			row_count, train_accuracy, test_accuracy, created_at
		FROM training_runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.TrainingRun
	for rows.Next() {
		var r model.TrainingRun
		if err := rows.Scan(&r.ID, &r.ModelName, &r.ModelPath, &r.ModelKind, &r.DataPath, &r.Seed,
			&r.Rows, &r.TrainAccuracy, &r.TestAccuracy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training runs: %w", err)
	}
	return runs, nil
}

// RecentAnalysisRuns returns up to limit prediction runs, newest first.
func (s *SQLiteStorage) RecentAnalysisRuns(ctx context.Context, limit int) ([]model.AnalysisRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_path, data_path, row_count, optimal, suboptimal,
			mean_confidence, low_confidence, suggestions, created_at
		FROM analysis_runs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.AnalysisRun
	for rows.Next() {
		var r model.AnalysisRun
		if err := rows.Scan(&r.ID, &r.ModelPath, &r.DataPath, &r.Rows, &r.Optimal, &r.Suboptimal,
			&r.MeanConfidence, &r.LowConfidence, &r.Suggestions, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}
	return runs, nil
}
