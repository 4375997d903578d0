// Package state persists the per-category match lists and feed snapshots
// between runs.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/javi11/trendarr/internal/trending"
	"github.com/spf13/afero"
)

// Store reads and writes the JSON artifacts under the state directory. The
// match list is the only artifact read back across runs; snapshots exist
// for observability only.
type Store struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// NewStore creates a state store rooted at dir.
func NewStore(fs afero.Fs, dir string, logger *slog.Logger) *Store {
	return &Store{fs: fs, dir: dir, logger: logger}
}

func (s *Store) matchFile(category trending.Category) string {
	if category == trending.CategoryMovies {
		return filepath.Join(s.dir, "matched_movies.json")
	}
	return filepath.Join(s.dir, "matched_tv.json")
}

func (s *Store) snapshotFile(category trending.Category) string {
	if category == trending.CategoryMovies {
		return filepath.Join(s.dir, "movies.json")
	}
	return filepath.Join(s.dir, "tv_shows.json")
}

// Matches returns the match list persisted by the previous run. A missing
// or corrupt file is logged and treated as an empty list; the first run
// starts from nothing.
func (s *Store) Matches(category trending.Category) []trending.Match {
	path := s.matchFile(category)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		s.logger.Debug("no previous match list", "path", path, "err", err)
		return nil
	}

	var matches []trending.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		s.logger.Warn("previous match list is not valid JSON, starting fresh", "path", path, "err", err)
		return nil
	}
	return matches
}

// SaveMatches persists the match list as the durable state for the next run.
func (s *Store) SaveMatches(category trending.Category, matches []trending.Match) error {
	if matches == nil {
		matches = []trending.Match{}
	}
	return s.writeJSON(s.matchFile(category), matches)
}

// SaveSnapshot persists the simplified feed for inspection.
func (s *Store) SaveSnapshot(category trending.Category, entries []trending.Entry) error {
	if entries == nil {
		entries = []trending.Entry{}
	}
	return s.writeJSON(s.snapshotFile(category), entries)
}

func (s *Store) writeJSON(path string, v any) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
