package library

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const invalidTitleChars = "<>:\"/\\|?*"

// SanitizeTitle makes a catalog title safe to embed in a file name. Runs of
// spaces, control characters and characters that are illegal on common
// filesystems collapse to a single space. The result is NFC normalized so
// composed and decomposed spellings produce the same name.
func SanitizeTitle(title string) (string, error) {
	title = norm.NFC.String(title)

	var b strings.Builder
	b.Grow(len(title))

	lastSpace := false
	for _, r := range title {
		if r <= ' ' || r == 127 || strings.ContainsRune(invalidTitleChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("title %q is empty after sanitization", title)
	}
	return result, nil
}

// NormalizeYearRange rewrites a catalog year so it fits the series grammar:
// every run of characters outside printable ASCII, such as the en dash in
// "2008–2013", becomes a single "-".
func NormalizeYearRange(year string) string {
	var b strings.Builder
	b.Grow(len(year))

	inRun := false
	for _, r := range strings.TrimSpace(year) {
		if r < ' ' || r > '~' {
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// YearSpan builds a series year from air dates ("2008-01-20" or "2008"):
// "2008" for a single season year, "2008-2013" for a finished run and
// "2019-" while the series is still airing.
func YearSpan(firstAired, lastAired string, running bool) string {
	first := leadingYear(firstAired)
	if first == "" {
		return ""
	}
	if running {
		return first + "-"
	}
	last := leadingYear(lastAired)
	if last == "" || last == first {
		return first
	}
	return first + "-" + last
}

// ReleaseYear returns the year of a "2006-01-02" style date.
func ReleaseYear(date string) string {
	return leadingYear(date)
}

func leadingYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return date[:4]
}
