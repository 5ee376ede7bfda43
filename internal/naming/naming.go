// Package naming infers media identity from messy release filenames.
//
// A stem is tokenized into tagged tokens (words, numbers, Roman numerals,
// episode markers and known release junk); the release year is chosen among
// 4-digit tokens; the title is rebuilt from the tokens before it with
// normalized casing. Every stage is a pure function over the token slice.
package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	keyPunctRegex  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	multiDotRegex  = regexp.MustCompile(`\.{2,}`)
	illegalRegex   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	spaceRunsRegex = regexp.MustCompile(`\s+`)
)

// MovieName formats "Title (Year)", or just the title without a year.
func MovieName(title string, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}

// EpisodeName formats "Show - S01E02 - Episode Title".
func EpisodeName(show, code, episodeTitle string) string {
	name := show + " - " + code
	if episodeTitle != "" {
		name += " - " + episodeTitle
	}
	return name
}

// SeasonFolder formats the canonical season directory name.
func SeasonFolder(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// LetterBucket returns the library bucket for a title: its first letter
// (accents folded, uppercased), "#" when it starts with a digit, "_" otherwise.
func LetterBucket(title string) string {
	for _, r := range FoldDiacritics(title) {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		if unicode.IsDigit(r) {
			return "#"
		}
	}
	return "_"
}

// CleanExtension lowercases an extension and ensures a single leading dot.
func CleanExtension(ext string) string {
	ext = strings.ToLower(strings.TrimLeft(ext, "."))
	if ext == "" {
		return ""
	}
	return "." + ext
}

// SanitizeName removes characters that are illegal in filenames and
// collapses repeated dots and whitespace.
func SanitizeName(name string) string {
	name = illegalRegex.ReplaceAllString(name, "")
	name = multiDotRegex.ReplaceAllString(name, ".")
	name = spaceRunsRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// SplitExt splits a base name into stem and extension (with its dot).
func SplitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// FoldDiacritics strips combining marks: "Amélie" becomes "Amelie".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey folds a title for grouping: accents removed, lowercase,
// punctuation collapsed to single spaces.
func NormalizeKey(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	s = keyPunctRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
