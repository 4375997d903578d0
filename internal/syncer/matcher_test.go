package syncer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javi11/trendarr/internal/trending"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMatchEntriesExactID(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Completely Different Name", ExternalID: "438631"},
	}
	folders := []string{
		"Dune Part Two (2024) [438631]",
		"Dune (2021) [438041]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	assert.Equal(t, []trending.Match{
		{Title: "Completely Different Name", FolderName: "Dune Part Two (2024) [438631]"},
	}, matches)
}

func TestMatchEntriesFuzzyFallback(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "The Penguin", ExternalID: "999999"},
	}
	folders := []string{
		"Some Other Show (2020) [111111]",
		"The Pengiun (2024) [222222]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	assert.Len(t, matches, 1)
	assert.Equal(t, "The Pengiun (2024) [222222]", matches[0].FolderName)
}

func TestMatchEntriesBelowThresholdDropped(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Foundation", ExternalID: "999999"},
		{Title: "Severance", ExternalID: "888888"},
	}
	folders := []string{
		"Severance (2022) [888888]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	// Foundation matches nothing; Severance shifts up into slot one.
	assert.Equal(t, []trending.Match{
		{Title: "Severance", FolderName: "Severance (2022) [888888]"},
	}, matches)
}

func TestMatchEntriesSkipsMissingExternalID(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Severance", ExternalID: ""},
		{Title: "Slow Horses", ExternalID: "95480"},
	}
	folders := []string{
		"Severance (2022) [888888]",
		"Slow Horses (2022) [95480]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	assert.Equal(t, []trending.Match{
		{Title: "Slow Horses", FolderName: "Slow Horses (2022) [95480]"},
	}, matches)
}

func TestMatchEntriesFolderClaimedOnce(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Dune", ExternalID: "438041"},
		{Title: "Dune", ExternalID: "123456"},
	}
	folders := []string{
		"Dune (2021) [438041]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	// The second entry would fuzzy-match the same folder; it must not.
	assert.Len(t, matches, 1)
	assert.Equal(t, "Dune (2021) [438041]", matches[0].FolderName)
}

func TestMatchEntriesCapCountsSuccessesOnly(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Not Here At All", ExternalID: "111"},
		{Title: "Dune", ExternalID: "438041"},
		{Title: "Severance", ExternalID: "888888"},
	}
	folders := []string{
		"Dune (2021) [438041]",
		"Severance (2022) [888888]",
	}

	matches := m.MatchEntries(entries, folders, 2)

	assert.Len(t, matches, 2)
	assert.Equal(t, "Dune (2021) [438041]", matches[0].FolderName)
	assert.Equal(t, "Severance (2022) [888888]", matches[1].FolderName)
}

func TestMatchEntriesPreservesRankOrder(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "Severance", ExternalID: "888888"},
		{Title: "Dune", ExternalID: "438041"},
	}
	folders := []string{
		"Dune (2021) [438041]",
		"Severance (2022) [888888]",
	}

	matches := m.MatchEntries(entries, folders, 20)

	assert.Equal(t, "Severance", matches[0].Title)
	assert.Equal(t, "Dune", matches[1].Title)
}

func TestMatchEntriesDeterministic(t *testing.T) {
	m := NewMatcher(testLogger())

	entries := []trending.Entry{
		{Title: "The Penguin", ExternalID: "999999"},
	}
	folders := []string{
		"The Penguin Show (2024) [111111]",
		"The Pengiun (2024) [222222]",
	}

	first := m.MatchEntries(entries, folders, 20)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.MatchEntries(entries, folders, 20))
	}
}
