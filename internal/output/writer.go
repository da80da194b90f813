package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// MarkdownExt is the extension of converted pages.
	MarkdownExt = ".md"

	dirPerm  = 0750
	filePerm = 0600

	// maxCreateAttempts bounds how often WriteUnique re-resolves a name
	// that was taken between the existence check and the create.
	maxCreateAttempts = 100
)

// ErrNoFreeName is returned when WriteUnique keeps losing the race for a name.
var ErrNoFreeName = errors.New("no free file name")

// UniquePath returns the first path in dir among base+ext, base-1+ext,
// base-2+ext, ... that does not exist. Errors other than "not exist"
// (for example permission errors) are returned instead of being treated
// as a free name.
func UniquePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for i := 1; ; i++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
}

// WriteUnique writes data to a new file named after base in dir and returns
// its path. The file is created with O_EXCL, so an existing file is never
// replaced even when another process creates it concurrently.
func WriteUnique(dir, base, ext string, data []byte) (string, error) {
	for range maxCreateAttempts {
		path, err := UniquePath(dir, base, ext)
		if err != nil {
			return "", err
		}

		f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close() //nolint:errcheck // the write error is reported
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w for %s%s in %s", ErrNoFreeName, base, ext, dir)
}

// EnsureDir creates dir and its parents if needed.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FormatLinks returns links sorted lexicographically, one per line, with a
// trailing newline. An empty set yields a single newline.
func FormatLinks(links []string) string {
	sorted := slices.Clone(links)
	slices.Sort(sorted)
	return strings.Join(sorted, "\n") + "\n"
}

// WriteLinks writes the links file at path, replacing any previous content.
// Missing parent directories are created.
func WriteLinks(path string, links []string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(FormatLinks(links)), filePerm); err != nil {
		return fmt.Errorf("failed to write links file: %w", err)
	}
	return nil
}
