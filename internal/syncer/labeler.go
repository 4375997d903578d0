package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/avast/retry-go/v4"

	"github.com/javi11/trendarr/internal/library"
	"github.com/javi11/trendarr/internal/plex"
	"github.com/javi11/trendarr/internal/title"
	"github.com/javi11/trendarr/internal/trending"
)

// LibraryClient is the media server surface the labeler needs.
type LibraryClient interface {
	Entries(ctx context.Context, library string) ([]plex.Entry, error)
	Search(ctx context.Context, library string, criteria plex.SearchCriteria) ([]plex.Entry, error)
	UpdateRank(ctx context.Context, library, ratingKey, title, sortTitle string) error
	TriggerRescan(ctx context.Context, library string) error
}

var errEntryNotFound = errors.New("entry not found in library")

// rankPrefixRegex strips a "#<rank> " prefix left by an earlier run.
var rankPrefixRegex = regexp.MustCompile(`^#\d+\s+`)

// Labeler renumbers media server entries so they display and sort in
// trending rank order.
type Labeler struct {
	client LibraryClient
	scorer title.Scorer
	logger *slog.Logger
}

func NewLabeler(client LibraryClient, logger *slog.Logger) *Labeler {
	return &Labeler{client: client, scorer: title.TokenSortRatio, logger: logger}
}

// Relabel walks the matches in rank order and rewrites each resolved
// entry's display title to "#<rank> <title>" and its sort title to the
// zero-padded rank. Entries that cannot be resolved after three attempts
// are skipped; a failed write is logged and does not undo earlier writes.
func (l *Labeler) Relabel(ctx context.Context, libraryName string, matches []trending.Match) error {
	entries, err := l.client.Entries(ctx, libraryName)
	if err != nil {
		return fmt.Errorf("list library entries: %w", err)
	}

	// Names already present per normalized title, so a rename never
	// produces a display name another entry of the same title holds.
	variants := make(map[string]map[string]string)
	record := func(normalized, name, ratingKey string) {
		if name == "" {
			return
		}
		if variants[normalized] == nil {
			variants[normalized] = make(map[string]string)
		}
		variants[normalized][name] = ratingKey
	}
	for _, e := range entries {
		normalized := title.Normalize(rankPrefixRegex.ReplaceAllString(e.Title, ""))
		record(normalized, e.Title, e.RatingKey)
		record(normalized, e.SortTitle, e.RatingKey)
	}

	for i, m := range matches {
		rank := i + 1
		desiredName := fmt.Sprintf("#%d %s", rank, m.Title)
		desiredSort := fmt.Sprintf("%02d", rank)

		var resolved plex.Entry
		err := retry.Do(
			func() error {
				entry, ok := l.resolve(ctx, libraryName, m, entries)
				if !ok {
					return fmt.Errorf("%w: %s", errEntryNotFound, m.Title)
				}
				resolved = entry
				return nil
			},
			retry.Attempts(3),
			retry.Delay(0),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
			retry.Context(ctx),
		)
		if err != nil {
			l.logger.Warn("giving up on library entry after retries", "title", m.Title, "rank", rank, "error", err)
			continue
		}

		if resolved.Title == desiredName && resolved.SortTitle == desiredSort {
			continue
		}

		normalized := title.Normalize(m.Title)
		if owner, taken := variants[normalized][desiredName]; taken && owner != resolved.RatingKey {
			l.logger.Warn("rank name already held by another entry, skipping",
				"title", m.Title, "desired", desiredName, "rating_key", owner)
			continue
		}

		if err := l.client.UpdateRank(ctx, libraryName, resolved.RatingKey, desiredName, desiredSort); err != nil {
			l.logger.Error("failed to renumber library entry", "title", m.Title, "rank", rank, "error", err)
			continue
		}
		record(normalized, desiredName, resolved.RatingKey)
		record(normalized, desiredSort, resolved.RatingKey)
		l.logger.Info("renumbered library entry", "title", m.Title, "rank", rank)
	}

	return nil
}

// resolve locates a match's library entry, trying progressively looser
// strategies: exact title search, normalized title search, lookup by the
// id embedded in the folder name, known title variants, and finally fuzzy
// similarity against the full entry list.
func (l *Labeler) resolve(ctx context.Context, libraryName string, m trending.Match, entries []plex.Entry) (plex.Entry, bool) {
	if entry, ok := l.searchFirst(ctx, libraryName, plex.SearchCriteria{Title: m.Title}); ok {
		return entry, true
	}

	if normalized := title.Normalize(m.Title); normalized != m.Title {
		if entry, ok := l.searchFirst(ctx, libraryName, plex.SearchCriteria{Title: normalized}); ok {
			return entry, true
		}
	}

	if id, ok := library.ExtractID(m.FolderName); ok {
		if entry, ok := l.searchFirst(ctx, libraryName, plex.SearchCriteria{ExternalID: id}); ok {
			return entry, true
		}
	}

	for _, alt := range title.Alternatives(m.Title) {
		if alt == m.Title {
			continue
		}
		if entry, ok := l.searchFirst(ctx, libraryName, plex.SearchCriteria{Title: alt}); ok {
			return entry, true
		}
	}

	return l.fuzzyResolve(m, entries)
}

func (l *Labeler) searchFirst(ctx context.Context, libraryName string, criteria plex.SearchCriteria) (plex.Entry, bool) {
	results, err := l.client.Search(ctx, libraryName, criteria)
	if err != nil {
		l.logger.Debug("library search failed", "criteria_title", criteria.Title, "criteria_id", criteria.ExternalID, "error", err)
		return plex.Entry{}, false
	}
	if len(results) == 0 {
		return plex.Entry{}, false
	}
	return results[0], true
}

func (l *Labeler) fuzzyResolve(m trending.Match, entries []plex.Entry) (plex.Entry, bool) {
	normalized := title.Normalize(m.Title)
	var best plex.Entry
	bestScore := 0
	for _, e := range entries {
		if score := l.scorer(normalized, title.Normalize(rankPrefixRegex.ReplaceAllString(e.Title, ""))); score > bestScore {
			best = e
			bestScore = score
		}
	}
	if bestScore < title.MatchThreshold {
		return plex.Entry{}, false
	}
	l.logger.Debug("fuzzy resolved library entry", "title", m.Title, "entry", best.Title, "score", bestScore)
	return best, true
}
