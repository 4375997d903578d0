// Package library enumerates local media folders and extracts the external
// ids embedded in their names.
package library

import (
	"log/slog"
	"regexp"

	"github.com/spf13/afero"
)

// Folders are expected to be named like "Title [12345]".
var folderIDRegex = regexp.MustCompile(`\[(\d+)\]`)

// Index lists media folders for a category from the filesystem.
type Index struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewIndex creates a folder index over the given filesystem.
func NewIndex(fs afero.Fs, logger *slog.Logger) *Index {
	return &Index{fs: fs, logger: logger}
}

// Folders returns the immediate subdirectory names of path in directory
// order. A missing or unreadable path is logged and yields an empty list.
func (i *Index) Folders(path string) []string {
	entries, err := afero.ReadDir(i.fs, path)
	if err != nil {
		i.logger.Error("failed to list media folders", "path", path, "err", err)
		return nil
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	return folders
}

// ExtractID returns the digits inside the first bracketed token of a folder
// name, e.g. "Dune [438631]" yields "438631".
func ExtractID(folderName string) (string, bool) {
	m := folderIDRegex.FindStringSubmatch(folderName)
	if m == nil {
		return "", false
	}
	return m[1], true
}
