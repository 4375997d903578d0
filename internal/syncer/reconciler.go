package syncer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/javi11/trendarr/internal/state"
	"github.com/javi11/trendarr/internal/trending"
)

// Reconciler converges a symlink directory onto the current match list and
// persists the list so the next run can diff against it.
type Reconciler struct {
	store  *state.Store
	logger *slog.Logger
}

func NewReconciler(store *state.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile removes symlinks that are no longer matched, creates symlinks
// for newly matched folders, and saves the match list. It returns the
// matches added since the previous run and the names of removed links.
// Per-link failures are logged and skipped; the run continues.
func (r *Reconciler) Reconcile(category trending.Category, matches []trending.Match, symlinkDir, sourceDir string) (added []trending.Match, removed []string, err error) {
	previous := make(map[string]struct{})
	for _, m := range r.store.Matches(category) {
		previous[m.FolderName] = struct{}{}
	}

	current := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		current[m.FolderName] = struct{}{}
	}

	if err := os.MkdirAll(symlinkDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create symlink directory: %w", err)
	}

	entries, err := os.ReadDir(symlinkDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read symlink directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if _, keep := current[name]; keep {
			continue
		}
		linkPath := filepath.Join(symlinkDir, name)
		info, lerr := os.Lstat(linkPath)
		if lerr != nil || info.Mode()&os.ModeSymlink == 0 {
			// Only links this tool created are ours to remove.
			continue
		}
		if rerr := os.Remove(linkPath); rerr != nil {
			r.logger.Error("failed to remove stale symlink", "path", linkPath, "error", rerr)
			continue
		}
		r.logger.Info("removed stale symlink", "category", category, "name", name)
		removed = append(removed, name)
	}

	for _, m := range matches {
		linkPath := filepath.Join(symlinkDir, m.FolderName)
		if _, lerr := os.Lstat(linkPath); lerr == nil {
			// Already present, creation is idempotent.
			continue
		}
		target := filepath.Join(sourceDir, m.FolderName)
		if serr := os.Symlink(target, linkPath); serr != nil {
			r.logger.Error("failed to create symlink", "path", linkPath, "target", target, "error", serr)
			continue
		}
		r.logger.Info("created symlink", "category", category, "name", m.FolderName)
	}

	for _, m := range matches {
		if _, seen := previous[m.FolderName]; !seen {
			added = append(added, m)
		}
	}

	if serr := r.store.SaveMatches(category, matches); serr != nil {
		r.logger.Error("failed to persist match list", "category", category, "error", serr)
	}

	return added, removed, nil
}
