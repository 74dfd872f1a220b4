package config

import (
	"fmt"
	"runtime"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultModelsDir    = "~/.local/share/advisor/models"
	DefaultHistoryPath  = "~/.local/share/advisor/history.db"
	DefaultSeed         = 42
	DefaultTestFraction = 0.2
	DefaultTrees        = 100
)

// Settings holds the resolved runtime configuration.
type Settings struct {
	ModelsDir      string
	HistoryPath    string
	LogLevel       string
	LogFormat      string
	Seed           int64
	TestFraction   float64
	Trees          int
	MaxDepth       int
	Workers        int
	HistoryEnabled bool
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("models.dir", DefaultModelsDir)
	v.SetDefault("history.path", DefaultHistoryPath)
	v.SetDefault("history.enabled", true)
	v.SetDefault("training.seed", DefaultSeed)
	v.SetDefault("training.test_fraction", DefaultTestFraction)
	v.SetDefault("training.trees", DefaultTrees)
	v.SetDefault("training.max_depth", 0)
	v.SetDefault("training.workers", runtime.NumCPU())
}

// Load resolves Settings from v, expanding paths and validating values.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		ModelsDir:      ExpandPath(v.GetString("models.dir")),
		HistoryPath:    ExpandPath(v.GetString("history.path")),
		HistoryEnabled: v.GetBool("history.enabled"),
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
		Seed:           v.GetInt64("training.seed"),
		TestFraction:   v.GetFloat64("training.test_fraction"),
		Trees:          v.GetInt("training.trees"),
		MaxDepth:       v.GetInt("training.max_depth"),
		Workers:        v.GetInt("training.workers"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values the pipeline cannot use.
func (s *Settings) Validate() error {
	if s.ModelsDir == "" {
		return fmt.Errorf("%w: models.dir is empty", common.ErrInvalidConfig)
	}
	if s.TestFraction <= 0 || s.TestFraction >= 1 {
		return fmt.Errorf("%w: training.test_fraction must be in (0,1), got %v", common.ErrInvalidConfig, s.TestFraction)
	}
	if s.Trees < 1 {
		return fmt.Errorf("%w: training.trees must be positive, got %d", common.ErrInvalidConfig, s.Trees)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("%w: training.max_depth must not be negative, got %d", common.ErrInvalidConfig, s.MaxDepth)
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return nil
}
