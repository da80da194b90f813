package input

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoTargets is returned when the input yields no usable address.
var ErrNoTargets = errors.New("no valid URLs found")

var (
	urlLike   = regexp.MustCompile(`(?i)^https?://`)
	lineBreak = regexp.MustCompile(`\r?\n`)
)

// LooksLikeURL reports whether s starts with http:// or https://,
// ignoring case and surrounding whitespace.
func LooksLikeURL(s string) bool {
	return urlLike.MatchString(strings.TrimSpace(s))
}

// ReadTargets interprets input as a single address or, failing that, as
// the path of a text file with one address per line. Blank lines and
// lines starting with "#" are skipped, as are lines that do not look
// like addresses.
func ReadTargets(input string) ([]string, error) {
	v := strings.TrimSpace(input)
	if v == "" {
		return nil, ErrNoTargets
	}
	if LooksLikeURL(v) {
		return []string{v}, nil
	}

	data, err := os.ReadFile(filepath.Clean(v))
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}

	targets := ParseTargets(string(data))
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTargets, v)
	}
	return targets, nil
}

// ParseTargets extracts addresses from the content of a URL list.
func ParseTargets(content string) []string {
	var targets []string
	for _, line := range lineBreak.Split(content, -1) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !LooksLikeURL(line) {
			continue
		}
		targets = append(targets, line)
	}
	return targets
}
