package series

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
)

var (
	seasonDirRe     = regexp.MustCompile(`^Season \d{2}$`)
	seasonAnyRe     = regexp.MustCompile(`(?i)^Season (?P<season>\d+)$`)
	rootEpisodeRe   = regexp.MustCompile(`(?i)S(?P<season>\d+)E(?P<from>\d+)(?:-E(?P<to>\d+))?`)
	seasonEpisodeRe = regexp.MustCompile(`(?i)(?:S(?P<season>\d+))?E(?P<from>\d+)(?:-E(?P<to>\d+))?`)
)

type grammar struct {
	dir     *regexp.Regexp
	episode *regexp.Regexp
}

func newGrammar(t library.Tables) grammar {
	return grammar{
		dir: regexp.MustCompile(
			`(?i)^(?P<title>.+) \((?P<year>\d{4}(?:-(?:\d{4})?)?)\) \[(?-i:imdbid-(?P<id>tt\d+))\]$`),
		episode: regexp.MustCompile(
			`(?i)^(?P<title>.+) S(?P<season>\d+)E(?P<from>\d+)(?:-E(?P<to>\d+))?` +
				`(?: Part (?P<part>\d+))?\.(?P<ext>` + t.ExtensionPattern() + `)$`),
	}
}

func (s *Series) decompose(ctx context.Context) error {
	j := s.opts.Journal

	if g := library.Submatches(s.grammar.dir, s.Name); g != nil {
		s.Title, s.Year, s.ID = g["title"], g["year"], g["id"]
	} else {
		s.flagged = true
		s.ID = library.FindIdentifier(s.Name)
	}

	if s.ID == "" {
		j.Warnf("Please include [imdbid-ttXXXXXXX] in the folder name")
		j.LogSkip(s.Path, library.ErrNoIdentifier)
		return nil
	}

	entries, err := s.opts.FS.ScanDirectory(s.Path)
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.Path, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case e.IsFile && s.opts.Tables.IsVideo(e.Name):
			// Episodes always live in a season folder.
			s.flagged = true
			s.Episodes[e.Name] = s.parseEpisode(e.Name, 0)
		case e.IsDir:
			if err := s.scanSeason(e.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Series) scanSeason(dirName string) error {
	g := library.Submatches(seasonAnyRe, dirName)
	if g == nil {
		return nil
	}
	season := library.Number(g["season"])
	padded := seasonDirRe.MatchString(dirName)
	miscased := false
	switch canonical := SeasonDir(season); {
	case padded:
		s.seasonDirs[dirName] = true
	case strings.EqualFold(dirName, canonical):
		// The first spelling found is renamed in place; later ones are
		// emptied like any legacy folder.
		if _, ok := s.miscased[canonical]; !ok {
			s.miscased[canonical] = dirName
			miscased = true
		}
	}

	dirPath := filepath.Join(s.Path, dirName)
	entries, err := s.opts.FS.ScanDirectory(dirPath)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dirPath, err)
	}
	found := 0
	for _, e := range entries {
		if !e.IsFile || !s.opts.Tables.IsVideo(e.Name) {
			continue
		}
		s.Episodes[filepath.Join(dirName, e.Name)] = s.parseEpisode(e.Name, season)
		found++
	}

	// An empty legacy folder is left alone; one holding episodes must be
	// replaced by its padded form.
	switch {
	case found == 0 || padded:
	case miscased:
		s.opts.Journal.Infof("season folder <%s> is not capitalized", dirName)
		s.flagged = true
	default:
		s.opts.Journal.Infof("season folder <%s> is not zero padded", dirName)
		s.flagged = true
	}
	return nil
}

// parseEpisode decomposes an episode file name. folderSeason is the season of
// the enclosing folder, or 0 for files at the series root.
func (s *Series) parseEpisode(name string, folderSeason int) *Episode {
	if g := library.Submatches(s.grammar.episode, name); g != nil {
		return &Episode{
			Title:       g["title"],
			Season:      library.Number(g["season"]),
			EpisodeFrom: library.Number(g["from"]),
			EpisodeTo:   library.Number(g["to"]),
			Part:        library.Number(g["part"]),
			Extension:   g["ext"],
			HasNumbers:  true,
		}
	}

	s.flagged = true
	ep := &Episode{
		Extension: library.Extension(name),
		Part:      library.FindPart(name),
	}

	re := rootEpisodeRe
	if folderSeason > 0 {
		re = seasonEpisodeRe
	}
	if g := library.Submatches(re, name); g != nil {
		ep.Season = library.Number(g["season"])
		if g["season"] == "" {
			ep.Season = folderSeason
		}
		ep.EpisodeFrom = library.Number(g["from"])
		ep.EpisodeTo = library.Number(g["to"])
		ep.HasNumbers = true
	} else {
		s.opts.Journal.Warnf("cannot find season and episode in <%s>", name)
	}
	return ep
}
