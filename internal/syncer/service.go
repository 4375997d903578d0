// Package syncer runs the trending sync pipeline: fetch the trending
// feeds, match them to local media folders, reconcile symlink
// directories, and renumber the media server's sort titles.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/javi11/trendarr/internal/config"
	"github.com/javi11/trendarr/internal/discord"
	"github.com/javi11/trendarr/internal/exclusions"
	"github.com/javi11/trendarr/internal/library"
	"github.com/javi11/trendarr/internal/slogutil"
	"github.com/javi11/trendarr/internal/state"
	"github.com/javi11/trendarr/internal/trending"
)

// TrendingSource provides ranked trending entries for a category.
type TrendingSource interface {
	Trending(ctx context.Context, category trending.Category) []trending.Entry
}

// ArrRefresher nudges download managers after the symlink dirs change.
type ArrRefresher interface {
	Refresh(ctx context.Context, category trending.Category)
}

// Service wires the pipeline stages together and runs them per category.
type Service struct {
	configGetter config.ConfigGetter
	source       TrendingSource
	client       LibraryClient
	notifier     discord.Notifier
	store        *state.Store
	arrs         ArrRefresher
	fs           afero.Fs
	index        *library.Index
	matcher      *Matcher
	reconciler   *Reconciler
	labeler      *Labeler
	logger       *slog.Logger
}

func NewService(
	configGetter config.ConfigGetter,
	source TrendingSource,
	client LibraryClient,
	notifier discord.Notifier,
	store *state.Store,
	arrs ArrRefresher,
	fs afero.Fs,
	logger *slog.Logger,
) *Service {
	return &Service{
		configGetter: configGetter,
		source:       source,
		client:       client,
		notifier:     notifier,
		store:        store,
		arrs:         arrs,
		fs:           fs,
		index:        library.NewIndex(fs, logger),
		matcher:      NewMatcher(logger),
		reconciler:   NewReconciler(store, logger),
		labeler:      NewLabeler(client, logger),
		logger:       logger,
	}
}

type categoryPaths struct {
	sourceDir   string
	symlinkDir  string
	libraryName string
}

func (s *Service) pathsFor(cfg *config.Config, category trending.Category) categoryPaths {
	if category == trending.CategoryMovies {
		return categoryPaths{
			sourceDir:   cfg.Paths.MovieFolder,
			symlinkDir:  cfg.Paths.MovieSymlink,
			libraryName: cfg.Plex.TrendingMovies,
		}
	}
	return categoryPaths{
		sourceDir:   cfg.Paths.TVFolder,
		symlinkDir:  cfg.Paths.TVSymlink,
		libraryName: cfg.Plex.TrendingTV,
	}
}

// SyncAll runs both categories under a single run id. A category failure
// is logged and does not stop the other category.
func (s *Service) SyncAll(ctx context.Context) error {
	ctx = slogutil.With(ctx, "run_id", uuid.NewString())

	cfg := s.configGetter()
	exclusions.EnsureTemplate(s.fs, cfg.Paths.ExclusionsFile, s.logger)

	var errs []error
	for _, category := range []trending.Category{trending.CategoryMovies, trending.CategoryTV} {
		if err := s.SyncCategory(ctx, category); err != nil {
			s.logger.ErrorContext(ctx, "category sync failed", "category", category, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", category, err))
		}
	}
	return errors.Join(errs...)
}

// SyncCategory runs the full pipeline for one category.
func (s *Service) SyncCategory(ctx context.Context, category trending.Category) error {
	cfg := s.configGetter()
	paths := s.pathsFor(cfg, category)
	logger := s.logger.With("category", category)

	// An empty feed still runs the pipeline: nothing is trending, so the
	// reconcile pass clears the symlink directory.
	entries := s.source.Trending(ctx, category)
	if len(entries) == 0 {
		logger.WarnContext(ctx, "trending feed returned no entries")
	}

	excluded := exclusions.Load(s.fs, cfg.Paths.ExclusionsFile, logger)
	kept := entries[:0:0]
	for _, entry := range entries {
		if excluded.Excluded(category, entry.ExternalID) {
			logger.InfoContext(ctx, "entry excluded by exclusion list", "title", entry.Title, "external_id", entry.ExternalID)
			continue
		}
		kept = append(kept, entry)
	}

	if err := s.store.SaveSnapshot(category, kept); err != nil {
		logger.WarnContext(ctx, "failed to save trending snapshot", "error", err)
	}

	if cfg.GetFixPermissions() {
		library.EnsureReadable(paths.sourceDir, logger)
	}

	folders := s.index.Folders(paths.sourceDir)
	matches := s.matcher.MatchEntries(kept, folders, cfg.Sync.MaxItems)
	logger.InfoContext(ctx, "matched trending entries to local folders",
		"entries", len(kept), "folders", len(folders), "matches", len(matches))

	added, removed, err := s.reconciler.Reconcile(category, matches, paths.symlinkDir, paths.sourceDir)
	if err != nil {
		return fmt.Errorf("reconcile symlinks: %w", err)
	}

	if len(added) > 0 {
		lines := make([]string, 0, len(added))
		for _, m := range added {
			lines = append(lines, m.Title)
		}
		s.notifier.Notify(ctx, category.DisplayName()+" added to trending", lines, discord.ColorAdded)
	}
	if len(removed) > 0 {
		s.notifier.Notify(ctx, category.DisplayName()+" removed from trending", removed, discord.ColorRemoved)
	}

	if len(added) > 0 || len(removed) > 0 {
		if err := s.client.TriggerRescan(ctx, paths.libraryName); err != nil {
			logger.WarnContext(ctx, "library rescan failed", "error", err)
		}
		s.arrs.Refresh(ctx, category)
	}

	if err := s.labeler.Relabel(ctx, paths.libraryName, matches); err != nil {
		logger.ErrorContext(ctx, "sort title renumbering failed", "error", err)
	}

	return nil
}
