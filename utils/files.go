package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Media subdirectories, relative to the media root.
const (
	ApplicationDir = "defense_application"
	PanelDir       = "panel_nomination"
	GeneratedDir   = "generated_documents"
	ManuscriptDir  = "manuscripts"
)

const maxReserveAttempts = 1000

// TimestampedFilename builds <purpose>_<YYYYMMDD_HHMMSS>.<ext>.
func TimestampedFilename(purpose, ext string, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", purpose, t.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// ReserveFile creates an empty file named after purpose and t inside dir and
// returns its name. When the name is taken a _2, _3, ... suffix is appended, so
// two callers in the same second never share a file.
func ReserveFile(dir, purpose, ext string, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare directory: %w", err)
	}

	base := strings.TrimSuffix(TimestampedFilename(purpose, ext, t), "."+strings.TrimPrefix(ext, "."))
	ext = "." + strings.TrimPrefix(ext, ".")

	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		name := base + ext
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d%s", base, attempt, ext)
		}

		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			return name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to reserve file: %w", err)
		}
	}
	return "", fmt.Errorf("failed to reserve file: too many files named %s", base)
}

// MediaURL joins the public media prefix and a stored relative path.
func MediaURL(mediaURL, rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimSuffix(mediaURL, "/") + "/" + strings.TrimPrefix(path.Clean(filepath.ToSlash(rel)), "/")
}

// MediaPath resolves a stored relative path against the media root, refusing
// anything that would escape it.
func MediaPath(root, rel string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	full := filepath.Join(root, clean)
	if !strings.HasPrefix(full, filepath.Clean(root)) {
		return "", fmt.Errorf("path %q escapes media root", rel)
	}
	return full, nil
}

// RemoveQuietly deletes the given files, ignoring ones that are already gone.
func RemoveQuietly(paths ...string) []error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errs
}

// MediaDirs lists every directory the service writes under the media root.
var MediaDirs = []string{ApplicationDir, PanelDir, GeneratedDir, ManuscriptDir}

// EnsureMediaDirs creates the media root and its subdirectories. It returns the
// directories that did not exist before.
func EnsureMediaDirs(root string) ([]string, error) {
	var created []string
	for _, dir := range MediaDirs {
		full := filepath.Join(root, dir)
		if info, err := os.Stat(full); err == nil && info.IsDir() {
			continue
		}
		if err := os.MkdirAll(full, 0o755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", full, err)
		}
		created = append(created, dir)
	}
	return created, nil
}
