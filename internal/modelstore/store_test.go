package modelstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/testutil"
	"github.com/Veraticus/codeadvisor/internal/training"
)

var fixedTime = time.Date(2026, 3, 14, 15, 9, 26, 535000000, time.UTC)

func fixedClock() time.Time { return fixedTime }

func trainedModel(t *testing.T, kind classifier.Kind) *training.Result {
	t.Helper()
	return testutil.TrainModel(t, kind, 21, 60)
}

func TestSave_PathAndRoundTrip(t *testing.T) {
	for _, kind := range classifier.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "models", "nested")
			store := NewStore(dir, WithClock(fixedClock))
			result := trainedModel(t, kind)

			path, err := store.Save(result.Classifier, "quality", result.Metrics)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "quality_20260314_150926.model"), path)

			clf, meta, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, kind, clf.Kind())

			x := testutil.FeatureRows(t, 99, 30)
			want, err := result.Classifier.Predict(x)
			require.NoError(t, err)
			got, err := clf.Predict(x)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			wantProba, err := result.Classifier.PredictProba(x)
			require.NoError(t, err)
			gotProba, err := clf.PredictProba(x)
			require.NoError(t, err)
			assert.Equal(t, wantProba, gotProba)

			assert.Equal(t, Metadata{
				Timestamp:         "20260314_150926",
				ModelName:         "quality",
				SavedAt:           "2026-03-14T15:09:26.535Z",
				EvaluationMetrics: result.Metrics,
			}, meta)
		})
	}
}

func TestSave_SameSecondDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, WithClock(fixedClock))
	result := trainedModel(t, classifier.KindTree)

	first, err := store.Save(result.Classifier, "m", result.Metrics)
	require.NoError(t, err)
	second, err := store.Save(result.Classifier, "m", result.Metrics)
	require.NoError(t, err)
	third, err := store.Save(result.Classifier, "m", result.Metrics)
	require.NoError(t, err)

	assert.Equal(t, "m_20260314_150926.model", filepath.Base(first))
	assert.Equal(t, "m_20260314_150926_2.model", filepath.Base(second))
	assert.Equal(t, "m_20260314_150926_3.model", filepath.Base(third))

	entries, skipped, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Len(t, entries, 3)
}

func TestSave_InvalidName(t *testing.T) {
	store := NewStore(t.TempDir())
	result := trainedModel(t, classifier.KindTree)

	for _, name := range []string{"", "  ", "a/b"} {
		_, err := store.Save(result.Classifier, name, result.Metrics)
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr, "name %q", name)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.model"))
	assert.ErrorIs(t, err, common.ErrModelNotFound)
	assert.Contains(t, err.Error(), "nope.model")
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.model")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, err := Load(path)
	assert.ErrorIs(t, err, common.ErrCorruptModel)
}

func TestStore_LoadByFilename(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, WithClock(fixedClock))
	result := trainedModel(t, classifier.KindTree)

	path, err := store.Save(result.Classifier, "byname", result.Metrics)
	require.NoError(t, err)

	_, meta, err := store.Load(filepath.Base(path))
	require.NoError(t, err)
	assert.Equal(t, "byname", meta.ModelName)
}

func TestList_SkipsCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	clock := fixedTime
	store := NewStore(dir, WithClock(func() time.Time { return clock }))
	result := trainedModel(t, classifier.KindTree)

	_, err := store.Save(result.Classifier, "older", result.Metrics)
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	_, err = store.Save(result.Classifier, "newer", result.Metrics)
	require.NoError(t, err)

	bad := filepath.Join(dir, "broken_20260101_000000.model")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	entries, skipped, err := store.List()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Metadata.ModelName)
	assert.Equal(t, "older", entries[1].Metadata.ModelName)

	require.Len(t, skipped, 1)
	assert.Equal(t, bad, skipped[0].Path)
	assert.ErrorIs(t, skipped[0].Err, common.ErrCorruptModel)
}

func TestList_MissingDirectory(t *testing.T) {
	entries, skipped, err := NewStore(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, skipped)
}
