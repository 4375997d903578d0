// Package exclusions loads the user-maintained list of external ids that
// must never appear in the trending collections.
package exclusions

import (
	"encoding/json"
	"log/slog"

	"github.com/javi11/trendarr/internal/trending"
	"github.com/spf13/afero"
)

// List holds excluded external ids per category.
type List map[trending.Category]map[string]struct{}

// Excluded reports whether an external id is excluded for a category.
func (l List) Excluded(category trending.Category, externalID string) bool {
	ids, ok := l[category]
	if !ok {
		return false
	}
	_, ok = ids[externalID]
	return ok
}

type fileFormat struct {
	Movies  []string `json:"movies"`
	TVShows []string `json:"tv_shows"`
}

// EnsureTemplate writes an instructional template file if none exists yet,
// so users discover where to put unwanted ids.
func EnsureTemplate(fs afero.Fs, path string, logger *slog.Logger) {
	if exists, _ := afero.Exists(fs, path); exists {
		return
	}

	template := fileFormat{
		Movies:  []string{"Add TMDB IDs here, e.g., 12345"},
		TVShows: []string{"Add TVDB IDs here, e.g., 67890"},
	}
	data, err := json.MarshalIndent(template, "", "    ")
	if err != nil {
		logger.Error("failed to marshal exclusions template", "err", err)
		return
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		logger.Error("failed to write exclusions template", "path", path, "err", err)
		return
	}
	logger.Info("created exclusions file with instructions", "path", path)
}

// Load reads the exclusion list. A missing or unreadable file yields an
// empty list; the run continues without exclusions.
func Load(fs afero.Fs, path string, logger *slog.Logger) List {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		logger.Warn("exclusions file not readable, continuing without exclusions", "path", path, "err", err)
		return List{}
	}

	var raw fileFormat
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("exclusions file is not valid JSON, continuing without exclusions", "path", path, "err", err)
		return List{}
	}

	list := List{
		trending.CategoryMovies: make(map[string]struct{}, len(raw.Movies)),
		trending.CategoryTV:     make(map[string]struct{}, len(raw.TVShows)),
	}
	for _, id := range raw.Movies {
		list[trending.CategoryMovies][id] = struct{}{}
	}
	for _, id := range raw.TVShows {
		list[trending.CategoryTV][id] = struct{}{}
	}
	return list
}
