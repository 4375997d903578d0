package state

import (
	"io"
	"log/slog"
	"testing"

	"github.com/javi11/trendarr/internal/trending"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(afero.NewMemMapFs(), "/state", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveAndLoadMatches(t *testing.T) {
	store := newTestStore()

	matches := []trending.Match{
		{Title: "Dune", FolderName: "Dune [438631]"},
		{Title: "Severance", FolderName: "Severance [371980]"},
	}
	require.NoError(t, store.SaveMatches(trending.CategoryMovies, matches))

	assert.Equal(t, matches, store.Matches(trending.CategoryMovies))
	// Categories are stored independently.
	assert.Empty(t, store.Matches(trending.CategoryTV))
}

func TestMatchesMissingFile(t *testing.T) {
	assert.Empty(t, newTestStore().Matches(trending.CategoryMovies))
}

func TestMatchesCorruptFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/state/matched_movies.json", []byte("[{"), 0644))

	store := NewStore(memFs, "/state", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Empty(t, store.Matches(trending.CategoryMovies))
}

func TestSaveSnapshot(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewStore(memFs, "/state", slog.New(slog.NewTextHandler(io.Discard, nil)))

	entries := []trending.Entry{{Title: "Dune", Year: 2021, ExternalID: "438631"}}
	require.NoError(t, store.SaveSnapshot(trending.CategoryMovies, entries))

	data, err := afero.ReadFile(memFs, "/state/movies.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"external_id": "438631"`)
}

func TestSaveMatchesNilWritesEmptyArray(t *testing.T) {
	memFs := afero.NewMemMapFs()
	store := NewStore(memFs, "/state", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, store.SaveMatches(trending.CategoryTV, nil))

	data, err := afero.ReadFile(memFs, "/state/matched_tv.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
