// Package modelstore persists fitted classifiers together with their evaluation
// metadata as versioned files in a directory.
package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/codeadvisor/internal/classifier"
	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// Extension is the file extension of stored models.
const Extension = ".model"

// TimestampLayout formats the second-resolution version stamp in file names.
const TimestampLayout = "20060102_150405"

// maxSuffix bounds the collision suffixes tried for one name and second.
const maxSuffix = 1000

// Metadata is stored alongside a classifier. The evaluation metrics of the
// training run are embedded as top-level fields.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	ModelName string `json:"model_name"`
	SavedAt   string `json:"saved_at"`
	model.EvaluationMetrics
}

func (m Metadata) savedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.SavedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Entry is one stored model found by List.
type Entry struct {
	Filename string
	Path     string
	Metadata Metadata
}

// Skipped is a file in the store directory that could not be read.
type Skipped struct {
	Err  error
	Path string
}

type blob struct {
	Classifier *classifier.Envelope `json:"classifier"`
	Metadata   Metadata             `json:"metadata"`
}

// Store saves and loads models under a single directory.
type Store struct {
	now    func() time.Time
	logger *slog.Logger
	dir    string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock used to stamp saved models.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used to report skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store rooted at dir. The directory is created on first save.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes clf and metrics to {dir}/{name}_{YYYYMMDD_HHMMSS}.model and returns
// the path. An existing file is never replaced: a second save of the same name
// within one second gets a numeric suffix.
func (s *Store) Save(clf classifier.Classifier, name string, metrics model.EvaluationMetrics) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", common.NewUserError(fmt.Sprintf("invalid model name %q", name), nil)
	}

	env, err := classifier.Encode(clf)
	if err != nil {
		return "", err
	}

	now := s.now()
	stamp := now.Format(TimestampLayout)
	b := blob{
		Classifier: env,
		Metadata: Metadata{
			Timestamp:         stamp,
			ModelName:         name,
			SavedAt:           now.Format(time.RFC3339Nano),
			EvaluationMetrics: metrics,
		},
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal model %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create model directory %s: %w", s.dir, err)
	}

	base := fmt.Sprintf("%s_%s", name, stamp)
	for n := 1; n <= maxSuffix; n++ {
		filename := base + Extension
		if n > 1 {
			filename = fmt.Sprintf("%s_%d%s", base, n, Extension)
		}
		path := filepath.Join(s.dir, filename)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create model file %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to write model file %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(path)
			return "", fmt.Errorf("failed to close model file %s: %w", path, err)
		}

		s.logger.Debug("Saved model", "path", path, "model_kind", clf.Kind())
		return path, nil
	}
	return "", fmt.Errorf("no free file name for model %s at %s", name, stamp)
}

// Load reads the classifier and metadata stored at path.
func Load(path string) (classifier.Classifier, Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Metadata{}, fmt.Errorf("%w: %s", common.ErrModelNotFound, path)
		}
		return nil, Metadata{}, fmt.Errorf("failed to read model %s: %w", path, err)
	}

	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, Metadata{}, fmt.Errorf("%w: %s: %v", common.ErrCorruptModel, path, err)
	}
	clf, err := classifier.Decode(b.Classifier)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("%s: %w", path, err)
	}
	return clf, b.Metadata, nil
}

// Load reads a model by path, or by file name relative to the store directory.
func (s *Store) Load(path string) (classifier.Classifier, Metadata, error) {
	if !strings.ContainsRune(path, filepath.Separator) {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = filepath.Join(s.dir, path)
		}
	}
	return Load(path)
}

// List returns every readable model in the store, newest first. Files that fail
// to load are returned in skipped and logged; they do not fail the listing.
// A missing directory lists as empty.
func (s *Store) List() ([]Entry, []Skipped, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read model directory %s: %w", s.dir, err)
	}

	var (
		entries []Entry
		skipped []Skipped
	)
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != Extension {
			continue
		}
		path := filepath.Join(s.dir, f.Name())
		_, meta, err := Load(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable model", "path", path, "error", err)
			skipped = append(skipped, Skipped{Path: path, Err: err})
			continue
		}
		entries = append(entries, Entry{Filename: f.Name(), Path: path, Metadata: meta})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := b.Metadata.savedAt().Compare(a.Metadata.savedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.Filename, b.Filename)
	})
	return entries, skipped, nil
}
