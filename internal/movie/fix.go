package movie

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/provider"
)

// DirName is the canonical folder name of a movie.
func DirName(title, year, id string) string {
	return fmt.Sprintf("%s (%s) [imdbid-%s]", title, year, id)
}

// FileName is the canonical name of one medium of a movie.
func FileName(title, year string, med Medium) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) ", title, year)
	if med.Is3D {
		fmt.Fprintf(&b, "[3D.%s] ", strings.ToUpper(med.Format3D))
	}
	if med.Part > 0 {
		fmt.Fprintf(&b, "[Part %d] ", med.Part)
	}
	fmt.Fprintf(&b, "- [%s].%s", med.Resolution, med.Extension)
	return b.String()
}

// Plan computes every rename needed to give the movie the resolved title
// and year. It fails when a medium has no known resolution.
func (m *Movie) Plan(result provider.Result) (library.Plan, error) {
	p := library.Plan{
		Parent: m.Parent,
		Dir:    library.Rename{From: m.Name, To: DirName(result.Title, result.Year, m.ID)},
	}
	for _, key := range m.Keys() {
		med := m.Media[key]
		if med.ResolutionErr != nil {
			return library.Plan{}, fmt.Errorf("%w: %s: %w", library.ErrResolutionUnknown, key, med.ResolutionErr)
		}
		p.Units = append(p.Units, library.Rename{From: key, To: FileName(result.Title, result.Year, *med)})
	}
	return p, nil
}

// Fix resolves the movie's id and renames its media and folder. With dryRun
// set the plan is only reported.
func (m *Movie) Fix(ctx context.Context, resolver provider.Resolver, dryRun bool) (library.Outcome, error) {
	j := m.opts.Journal

	if m.ID == "" {
		return library.OutcomeSkipped, nil
	}
	if !m.NeedsFix() {
		j.Notef("no change for compliant movie <%s>", m.Name)
		return library.OutcomeCompliant, nil
	}

	for _, key := range m.Keys() {
		if err := m.Media[key].ResolutionErr; err != nil {
			j.Warnf("<%s> needs manual attention", key)
			return library.OutcomeNone, fmt.Errorf("%w: %s: %w", library.ErrResolutionUnknown, key, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return library.OutcomeNone, err
	}
	result, err := resolver.Resolve(ctx, m.ID, provider.KindMovie)
	if err != nil {
		j.Warnf("lookup of %s failed: %v", m.ID, err)
		return library.OutcomeNone, fmt.Errorf("resolve %s: %w", m.ID, err)
	}
	if guess := library.GuessTitle(m.Name); library.TitlesDiverge(guess, result.Title) {
		j.Infof("folder title %q differs from catalog title %q for %s", guess, result.Title, m.ID)
	}

	plan, err := m.Plan(result)
	if err != nil {
		return library.OutcomeNone, err
	}
	if err := plan.Check(); err != nil {
		j.Warnf("%v", err)
		return library.OutcomeNone, err
	}

	exec := library.Executor{FS: m.opts.FS, Journal: j, DryRun: dryRun}
	err = exec.Apply(plan, library.Hooks{
		Moved: func(r library.Rename) {
			med := m.Media[r.From]
			delete(m.Media, r.From)
			med.Title, med.Year = result.Title, result.Year
			m.Media[r.To] = med
		},
		Renamed: func(newPath string) {
			m.Path = newPath
			m.Name = filepath.Base(newPath)
		},
	})
	if err != nil {
		return library.OutcomeNone, err
	}
	if dryRun {
		return library.OutcomePlanned, nil
	}

	m.Title, m.Year = result.Title, result.Year
	for _, med := range m.Media {
		med.Title, med.Year = result.Title, result.Year
	}
	m.flagged = false
	return library.OutcomeFixed, nil
}
