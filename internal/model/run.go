package model

import "time"

// TrainingRun records one completed training invocation.
type TrainingRun struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	ModelName     string    `json:"model_name"`
	ModelPath     string    `json:"model_path"`
	ModelKind     string    `json:"model_kind"`
	DataPath      string    `json:"data_path"`
	Rows          int       `json:"rows"`
	Seed          int64     `json:"seed"`
	TrainAccuracy float64   `json:"train_accuracy"`
	TestAccuracy  float64   `json:"test_accuracy"`
}

// AnalysisRun records one completed prediction invocation.
type AnalysisRun struct {
	CreatedAt      time.Time `json:"created_at"`
	ID             string    `json:"id"`
	ModelPath      string    `json:"model_path"`
	DataPath       string    `json:"data_path"`
	Rows           int       `json:"rows"`
	Optimal        int       `json:"optimal"`
	Suboptimal     int       `json:"suboptimal"`
	LowConfidence  int       `json:"low_confidence"`
	Suggestions    int       `json:"suggestions"`
	MeanConfidence float64   `json:"mean_confidence"`
}
