package library

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	identifierRe = regexp.MustCompile(`(?i)imdbid-(?P<id>tt\d+)`)
	partRe       = regexp.MustCompile(`(?i)(?:part|cd|disc)[ \-_]*(?P<part>\d+)`)
	format3DRe   = regexp.MustCompile(`(?i)(?P<format>ftab|hsbs|fsbs)`)
)

// Submatches returns the named groups of the first match of re in s, or
// nil when re does not match. Unmatched optional groups map to "".
func Submatches(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}

// FindIdentifier searches name for an embedded "imdbid-tt..." marker and
// returns the id in its lower-case catalog form, or "" when there is none.
func FindIdentifier(name string) string {
	if g := Submatches(identifierRe, name); g != nil {
		return strings.ToLower(g["id"])
	}
	return ""
}

// FindPart searches name for "part N", "cd N" or "disc N" markers.
func FindPart(name string) int {
	if g := Submatches(partRe, name); g != nil {
		return Number(g["part"])
	}
	return 0
}

// Find3DFormat searches name for a 3D layout marker and returns it upper-cased.
func Find3DFormat(name string) string {
	if g := Submatches(format3DRe, name); g != nil {
		return upperASCII(g["format"])
	}
	return ""
}

// Number parses a digit run captured by a grammar. Empty or malformed input
// yields 0, which the model treats as absent.
func Number(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Extension returns the text after the last dot of name, case preserved.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
