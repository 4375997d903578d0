package exclusions

import (
	"io"
	"log/slog"
	"testing"

	"github.com/javi11/trendarr/internal/trending"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/unwanted.json",
		[]byte(`{"movies": ["438631"], "tv_shows": ["371980", "111"]}`), 0644))

	list := Load(memFs, "/unwanted.json", testLogger())

	assert.True(t, list.Excluded(trending.CategoryMovies, "438631"))
	assert.False(t, list.Excluded(trending.CategoryTV, "438631"))
	assert.True(t, list.Excluded(trending.CategoryTV, "371980"))
	assert.False(t, list.Excluded(trending.CategoryMovies, "999"))
}

func TestLoadMissingFile(t *testing.T) {
	list := Load(afero.NewMemMapFs(), "/missing.json", testLogger())
	assert.False(t, list.Excluded(trending.CategoryMovies, "1"))
}

func TestLoadCorruptFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/unwanted.json", []byte("{nope"), 0644))

	list := Load(memFs, "/unwanted.json", testLogger())
	assert.False(t, list.Excluded(trending.CategoryMovies, "1"))
}

func TestEnsureTemplate(t *testing.T) {
	memFs := afero.NewMemMapFs()
	EnsureTemplate(memFs, "/unwanted.json", testLogger())

	data, err := afero.ReadFile(memFs, "/unwanted.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "TMDB IDs")

	// A second call leaves the existing file untouched.
	require.NoError(t, afero.WriteFile(memFs, "/unwanted.json", []byte(`{"movies":["1"]}`), 0644))
	EnsureTemplate(memFs, "/unwanted.json", testLogger())
	data, err = afero.ReadFile(memFs, "/unwanted.json")
	require.NoError(t, err)
	assert.Equal(t, `{"movies":["1"]}`, string(data))
}
