package library

import (
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"
)

// DivergenceThreshold is the Jaro-Winkler similarity below which a local
// title guess and a catalog title are reported as different works.
const DivergenceThreshold = 0.6

var (
	// guessYearRe finds the first year or year range in a raw name.
	guessYearRe = regexp.MustCompile(`(?:^|[^\d])((?:19|20)\d{2})(?:[\s\-–—]+(?:19|20)\d{2})?(?:[^\d]|$)`)

	// guessTagsRe strips release tags that never belong in a title.
	guessTagsRe = regexp.MustCompile(`(?i)\b(?:HD|HDR|DV|x265|x264|H\.?264|H\.?265|HEVC|AVC|AAC|AC3|DTS|WEB-?DL|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|10bit|PROPER|REPACK|EXTENDED|UNRATED|REMUX)\b`)

	// guessBracketsRe drops bracketed annotations such as [imdbid-tt123].
	guessBracketsRe = regexp.MustCompile(`\[[^\]]*\]`)
)

// GuessTitle extracts a human title from an arbitrary folder name. Everything
// from the first year on is discarded along with imdbid markers, brackets
// and separator punctuation.
func GuessTitle(name string) string {
	formatted := guessBracketsRe.ReplaceAllString(name, " ")
	if loc := identifierRe.FindStringIndex(formatted); loc != nil {
		formatted = formatted[:loc[0]] + " " + formatted[loc[1]:]
	}

	for _, m := range guessYearRe.FindAllStringSubmatchIndex(formatted, -1) {
		// A leading year is part of the title, as in "1917 (2019)".
		if m[2] > 0 {
			formatted = strings.TrimRight(formatted[:m[2]], " ([{-_.")
			break
		}
	}

	formatted = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(formatted)
	formatted = guessTagsRe.ReplaceAllString(formatted, "")
	return strings.Join(strings.Fields(formatted), " ")
}

// TitleSimilarity scores two titles between 0 and 1, ignoring case.
func TitleSimilarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(strings.ToLower(a), strings.ToLower(b)))
}

// TitlesDiverge reports whether a guessed local title looks like a different
// work than the catalog title. An empty guess never diverges.
func TitlesDiverge(guess, resolved string) bool {
	if guess == "" || resolved == "" {
		return false
	}
	return TitleSimilarity(guess, resolved) < DivergenceThreshold
}
