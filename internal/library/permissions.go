package library

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// EnsureReadable walks path and makes directories traversable and files
// readable for everyone, so the media server can follow symlinks into them.
// Permission errors are logged per path; the walk continues.
func EnsureReadable(path string, logger *slog.Logger) {
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Error("failed to walk path", "path", p, "err", err)
			return nil
		}

		mode := os.FileMode(0644)
		if d.IsDir() {
			mode = 0755
		}
		if err := os.Chmod(p, mode); err != nil {
			logger.Error("failed to set read permissions", "path", p, "err", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("permission walk aborted", "path", path, "err", err)
	}
}
