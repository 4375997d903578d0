package syncer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/trendarr/internal/state"
	"github.com/javi11/trendarr/internal/trending"
)

func testReconciler(t *testing.T) (*Reconciler, *state.Store) {
	t.Helper()
	store := state.NewStore(afero.NewMemMapFs(), "/state", testLogger())
	return NewReconciler(store, testLogger()), store
}

func TestReconcileCreatesAndPersists(t *testing.T) {
	r, store := testReconciler(t)
	sourceDir := t.TempDir()
	symlinkDir := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(sourceDir, "Dune (2021) [438041]"), 0755))

	matches := []trending.Match{{Title: "Dune", FolderName: "Dune (2021) [438041]"}}
	added, removed, err := r.Reconcile(trending.CategoryMovies, matches, symlinkDir, sourceDir)
	require.NoError(t, err)

	assert.Equal(t, matches, added)
	assert.Empty(t, removed)

	link := filepath.Join(symlinkDir, "Dune (2021) [438041]")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sourceDir, "Dune (2021) [438041]"), target)

	assert.Equal(t, matches, store.Matches(trending.CategoryMovies))
}

func TestReconcileRemovesStaleLinks(t *testing.T) {
	r, store := testReconciler(t)
	sourceDir := t.TempDir()
	symlinkDir := t.TempDir()

	stale := []trending.Match{{Title: "Old Show", FolderName: "Old Show (2019) [111]"}}
	require.NoError(t, store.SaveMatches(trending.CategoryTV, stale))
	require.NoError(t, os.Symlink(filepath.Join(sourceDir, "Old Show (2019) [111]"), filepath.Join(symlinkDir, "Old Show (2019) [111]")))

	matches := []trending.Match{{Title: "Severance", FolderName: "Severance (2022) [888888]"}}
	added, removed, err := r.Reconcile(trending.CategoryTV, matches, symlinkDir, sourceDir)
	require.NoError(t, err)

	assert.Equal(t, matches, added)
	assert.Equal(t, []string{"Old Show (2019) [111]"}, removed)

	_, err = os.Lstat(filepath.Join(symlinkDir, "Old Show (2019) [111]"))
	assert.True(t, os.IsNotExist(err))
}

func TestReconcileLeavesRealDirectoriesAlone(t *testing.T) {
	r, _ := testReconciler(t)
	sourceDir := t.TempDir()
	symlinkDir := t.TempDir()

	// A real directory in the symlink dir is not ours; never remove it.
	require.NoError(t, os.Mkdir(filepath.Join(symlinkDir, "keep-me"), 0755))

	_, removed, err := r.Reconcile(trending.CategoryMovies, nil, symlinkDir, sourceDir)
	require.NoError(t, err)

	assert.Empty(t, removed)
	info, err := os.Stat(filepath.Join(symlinkDir, "keep-me"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestReconcileIdempotent(t *testing.T) {
	r, _ := testReconciler(t)
	sourceDir := t.TempDir()
	symlinkDir := t.TempDir()

	matches := []trending.Match{{Title: "Dune", FolderName: "Dune (2021) [438041]"}}

	added, removed, err := r.Reconcile(trending.CategoryMovies, matches, symlinkDir, sourceDir)
	require.NoError(t, err)
	assert.Equal(t, matches, added)
	assert.Empty(t, removed)

	// Second run: link exists and list is unchanged, nothing to report.
	added, removed, err = r.Reconcile(trending.CategoryMovies, matches, symlinkDir, sourceDir)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestReconcileCreatesSymlinkDir(t *testing.T) {
	r, _ := testReconciler(t)
	sourceDir := t.TempDir()
	symlinkDir := filepath.Join(t.TempDir(), "nested", "links")

	_, _, err := r.Reconcile(trending.CategoryMovies, nil, symlinkDir, sourceDir)
	require.NoError(t, err)

	info, err := os.Stat(symlinkDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
