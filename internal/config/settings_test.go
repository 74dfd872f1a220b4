package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/advisor/models"), s.ModelsDir)
	assert.Equal(t, filepath.Join(home, ".local/share/advisor/history.db"), s.HistoryPath)
	assert.True(t, s.HistoryEnabled)
	assert.Equal(t, int64(42), s.Seed)
	assert.InDelta(t, 0.2, s.TestFraction, 1e-12)
	assert.Equal(t, 100, s.Trees)
	assert.Equal(t, 0, s.MaxDepth)
	assert.GreaterOrEqual(t, s.Workers, 1)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "test fraction zero", key: "training.test_fraction", value: 0.0},
		{name: "test fraction one", key: "training.test_fraction", value: 1.0},
		{name: "no trees", key: "training.trees", value: 0},
		{name: "negative depth", key: "training.max_depth", value: -1},
		{name: "empty models dir", key: "models.dir", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ADVISOR_TEST_DIR", "/tmp/advisor")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "models"), ExpandPath("~/models"))
	assert.Equal(t, "/tmp/advisor/models", ExpandPath("$ADVISOR_TEST_DIR/models"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}

func TestSplitModelOutput(t *testing.T) {
	tests := []struct {
		output   string
		wantDir  string
		wantName string
	}{
		{output: "models/quality.model", wantDir: "models", wantName: "quality"},
		{output: "models/quality", wantDir: "models", wantName: "quality"},
		{output: "quality", wantDir: "/var/models", wantName: "quality"},
		{output: "/abs/dir/rf.joblib", wantDir: "/abs/dir", wantName: "rf"},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			dir, name := SplitModelOutput(tt.output, "/var/models")
			assert.Equal(t, tt.wantDir, dir)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
