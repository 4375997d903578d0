// Package trending implements the matching-and-reconciliation pipeline:
// it turns a ranked list of remote titles into an ordered, deduplicated
// local symlink set and renumbers the matching media-server entries.
package trending

// Category identifies which trending collection is being synchronized.
type Category string

const (
	CategoryMovies Category = "movies"
	CategoryTV     Category = "tv_shows"
)

// IDKind returns the external catalog a category's ids come from.
func (c Category) IDKind() string {
	if c == CategoryMovies {
		return "tmdb"
	}
	return "tvdb"
}

// DisplayName returns a human readable name for notifications.
func (c Category) DisplayName() string {
	if c == CategoryMovies {
		return "Movies"
	}
	return "TV Shows"
}

// Entry is a simplified trending feed record. Entries are regenerated on
// every run and never persisted as state.
type Entry struct {
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"`
	ExternalID string `json:"external_id"`
}

// Match pairs a trending title with the local folder holding it. The
// position in an ordered match list is the 1-based trending rank. The
// persisted per-category match list is the only durable state between runs.
type Match struct {
	Title      string `json:"title"`
	FolderName string `json:"folder_name"`
}
