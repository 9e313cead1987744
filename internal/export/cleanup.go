package export

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// cleanupExtensions are the generated artifact types eligible for removal.
var cleanupExtensions = map[string]bool{
	".csv": true,
	".log": true,
}

// Cleanup deletes generated artifacts in dir older than maxAge, returning
// how many files were removed. Subdirectories are not descended into.
func Cleanup(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !cleanupExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("cannot stat artifact", slog.String("name", entry.Name()), slog.String("error", err.Error()))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("cannot remove artifact", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		slog.Info("removed expired artifact", slog.String("path", path))
		removed++
	}
	return removed, nil
}
