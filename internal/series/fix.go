package series

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/provider"
)

// DirName is the canonical folder name of a series. year may be a range.
func DirName(title, year, id string) string {
	return fmt.Sprintf("%s (%s) [imdbid-%s]", title, year, id)
}

// SeasonDir is the canonical season folder name.
func SeasonDir(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

// EpisodePath is the canonical path of an episode relative to the series folder.
func EpisodePath(title string, ep Episode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s S%02dE%02d", title, ep.Season, ep.EpisodeFrom)
	if ep.EpisodeTo > 0 {
		fmt.Fprintf(&b, "-E%02d", ep.EpisodeTo)
	}
	if ep.Part > 0 {
		fmt.Fprintf(&b, " Part %d", ep.Part)
	}
	b.WriteString("." + ep.Extension)
	return filepath.Join(SeasonDir(ep.Season), b.String())
}

// Plan computes every rename needed to give the series the resolved title and
// year, plus the season folders that must exist first. A season folder that
// differs from its canonical name only by case is renamed rather than
// created next to the old one.
func (s *Series) Plan(result provider.Result) (library.Plan, error) {
	p := library.Plan{
		Parent: s.Parent,
		Dir:    library.Rename{From: s.Name, To: DirName(result.Title, result.Year, s.ID)},
	}
	renamed := make(map[string]string)
	for _, season := range s.Seasons() {
		dir := SeasonDir(season)
		if s.seasonDirs[dir] {
			continue
		}
		if old, ok := s.miscased[dir]; ok {
			p.Folders = append(p.Folders, library.Rename{From: old, To: dir})
			renamed[old] = dir
			continue
		}
		p.MakeDirs = append(p.MakeDirs, dir)
	}
	for _, key := range s.Keys() {
		ep := s.Episodes[key]
		if !ep.HasNumbers {
			return library.Plan{}, fmt.Errorf("%w: %s", library.ErrEpisodeUnknown, key)
		}
		p.Units = append(p.Units, library.Rename{From: movedKey(key, renamed), To: EpisodePath(result.Title, *ep)})
	}
	return p, nil
}

// movedKey returns the path of key once its season folder has been renamed.
func movedKey(key string, renamed map[string]string) string {
	dir, name := filepath.Split(key)
	if to, ok := renamed[filepath.Clean(dir)]; ok && dir != "" {
		return filepath.Join(to, name)
	}
	return key
}

// Fix resolves the series id, creates missing season folders and renames
// every episode and the series folder. With dryRun set the plan is only
// reported.
func (s *Series) Fix(ctx context.Context, resolver provider.Resolver, dryRun bool) (library.Outcome, error) {
	j := s.opts.Journal

	if s.ID == "" {
		return library.OutcomeSkipped, nil
	}
	if !s.NeedsFix() {
		j.Notef("no change for compliant series <%s>", s.Name)
		return library.OutcomeCompliant, nil
	}

	for _, key := range s.Keys() {
		if !s.Episodes[key].HasNumbers {
			j.Warnf("<%s> needs manual attention", key)
			return library.OutcomeNone, fmt.Errorf("%w: %s", library.ErrEpisodeUnknown, key)
		}
	}

	if err := ctx.Err(); err != nil {
		return library.OutcomeNone, err
	}
	result, err := resolver.Resolve(ctx, s.ID, provider.KindSeries)
	if err != nil {
		j.Warnf("lookup of %s failed: %v", s.ID, err)
		return library.OutcomeNone, fmt.Errorf("resolve %s: %w", s.ID, err)
	}
	if guess := library.GuessTitle(s.Name); library.TitlesDiverge(guess, result.Title) {
		j.Infof("folder title %q differs from catalog title %q for %s", guess, result.Title, s.ID)
	}

	plan, err := s.Plan(result)
	if err != nil {
		return library.OutcomeNone, err
	}
	if err := plan.Check(); err != nil {
		j.Warnf("%v", err)
		return library.OutcomeNone, err
	}

	exec := library.Executor{FS: s.opts.FS, Journal: j, DryRun: dryRun}
	err = exec.Apply(plan, library.Hooks{
		MovedFolder: func(r library.Rename) {
			delete(s.miscased, r.To)
			s.seasonDirs[r.To] = true
			for _, key := range s.Keys() {
				if moved := movedKey(key, map[string]string{r.From: r.To}); moved != key {
					s.Episodes[moved] = s.Episodes[key]
					delete(s.Episodes, key)
				}
			}
		},
		MadeDir: func(rel string) {
			s.seasonDirs[rel] = true
		},
		Moved: func(r library.Rename) {
			ep := s.Episodes[r.From]
			delete(s.Episodes, r.From)
			ep.Title = result.Title
			s.Episodes[r.To] = ep
		},
		Renamed: func(newPath string) {
			s.Path = newPath
			s.Name = filepath.Base(newPath)
		},
	})
	if err != nil {
		return library.OutcomeNone, err
	}
	if dryRun {
		return library.OutcomePlanned, nil
	}

	s.Title, s.Year = result.Title, result.Year
	for _, ep := range s.Episodes {
		ep.Title = result.Title
	}
	s.flagged = false
	return library.OutcomeFixed, nil
}
