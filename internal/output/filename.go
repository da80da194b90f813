package output

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxBaseNameLength is the maximum length of a base name in characters.
	MaxBaseNameLength = 120

	// FallbackBaseName is used when a title yields no usable characters.
	FallbackBaseName = "page"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	illegalChars = regexp.MustCompile(`[/\\?%*:|"<>]`)
	spaceRuns    = regexp.MustCompile(`[\s\p{Zs}\x{2028}\x{2029}\x{feff}]+`)
	trailingDots = regexp.MustCompile(`[. ]+$`)
)

// SafeBaseName derives a file name without extension from a page title.
// The result contains no path separators, no characters that are invalid
// on common filesystems, and no trailing dots or spaces.
func SafeBaseName(title string) string {
	s := strings.TrimSpace(norm.NFC.String(title))
	if s == "" {
		return FallbackBaseName
	}

	s = controlChars.ReplaceAllString(s, "")
	s = illegalChars.ReplaceAllString(s, "-")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = trailingDots.ReplaceAllString(s, "")

	if s == "" {
		return FallbackBaseName
	}

	if utf8.RuneCountInString(s) > MaxBaseNameLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxBaseNameLength]))
	}

	return s
}
