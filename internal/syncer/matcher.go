package syncer

import (
	"log/slog"

	"github.com/javi11/trendarr/internal/library"
	"github.com/javi11/trendarr/internal/title"
	"github.com/javi11/trendarr/internal/trending"
)

// Matcher pairs ranked feed entries with local media folders.
type Matcher struct {
	scorer title.Scorer
	logger *slog.Logger
}

// NewMatcher creates a matcher using the token-sort similarity scorer.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{scorer: title.TokenSortRatio, logger: logger}
}

type folderCandidate struct {
	name       string
	externalID string
	normalized string
}

// MatchEntries walks entries in feed rank order and returns the ordered
// matches, at most maxItems of them. Each entry is matched by external id
// first, then by fuzzy title similarity against normalized folder names.
// Entries that match nothing are dropped and later matches shift up; a
// folder is never matched twice. Output order is the trending rank order.
func (m *Matcher) MatchEntries(entries []trending.Entry, folders []string, maxItems int) []trending.Match {
	candidates := make([]folderCandidate, 0, len(folders))
	for _, name := range folders {
		c := folderCandidate{name: name, normalized: title.Normalize(name)}
		if id, ok := library.ExtractID(name); ok {
			c.externalID = id
		}
		candidates = append(candidates, c)
	}

	claimed := make(map[string]struct{}, maxItems)
	matches := make([]trending.Match, 0, maxItems)

	for _, entry := range entries {
		if len(matches) >= maxItems {
			break
		}

		if entry.ExternalID == "" {
			m.logger.Warn("no valid external id for entry, skipping", "title", entry.Title)
			continue
		}

		folder, ok := m.matchOne(entry, candidates, claimed)
		if !ok {
			m.logger.Info("no local folder matched trending entry", "title", entry.Title, "external_id", entry.ExternalID)
			continue
		}

		claimed[folder] = struct{}{}
		matches = append(matches, trending.Match{Title: entry.Title, FolderName: folder})
	}

	return matches
}

func (m *Matcher) matchOne(entry trending.Entry, candidates []folderCandidate, claimed map[string]struct{}) (string, bool) {
	// Exact pass: first folder whose embedded id equals the entry's id.
	for _, c := range candidates {
		if _, taken := claimed[c.name]; taken {
			continue
		}
		if c.externalID != "" && c.externalID == entry.ExternalID {
			return c.name, true
		}
	}

	// Fuzzy pass: single best-scoring folder, first encountered wins ties.
	normalized := title.Normalize(entry.Title)
	best := ""
	bestScore := 0
	for _, c := range candidates {
		if _, taken := claimed[c.name]; taken {
			continue
		}
		if score := m.scorer(normalized, c.normalized); score > bestScore {
			best = c.name
			bestScore = score
		}
	}

	if bestScore < title.MatchThreshold {
		return "", false
	}
	m.logger.Debug("fuzzy matched entry to folder", "title", entry.Title, "folder", best, "score", bestScore)
	return best, true
}
