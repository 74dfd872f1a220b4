package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/codeadvisor/internal/config"
	"github.com/Veraticus/codeadvisor/internal/model"
	"github.com/Veraticus/codeadvisor/internal/storage"
)

// envKeyReplacer maps nested keys such as training.seed to ADVISOR_TRAINING_SEED.
var envKeyReplacer = strings.NewReplacer(".", "_")

// loadSettings resolves the settings from the global viper instance.
func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the history database and applies migrations.
func initStorage(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.HistoryPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// recordTrainingRun appends run to the history. Failures are logged, not returned.
func recordTrainingRun(ctx context.Context, settings *config.Settings, run *model.TrainingRun) {
	if !settings.HistoryEnabled {
		return
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		slog.Warn("Failed to open run history", "path", settings.HistoryPath, "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTrainingRun(ctx, run); err != nil {
		slog.Warn("Failed to record training run", "error", err)
	}
}

// recordAnalysisRun appends run to the history. Failures are logged, not returned.
func recordAnalysisRun(ctx context.Context, settings *config.Settings, run *model.AnalysisRun) {
	if !settings.HistoryEnabled {
		return
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		slog.Warn("Failed to open run history", "path", settings.HistoryPath, "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveAnalysisRun(ctx, run); err != nil {
		slog.Warn("Failed to record analysis run", "error", err)
	}
}
